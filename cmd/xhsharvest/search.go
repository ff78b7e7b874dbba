package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"xhsharvest/pkg/auth"
	"xhsharvest/pkg/browser"
	"xhsharvest/pkg/config"
	"xhsharvest/pkg/harvest"
	"xhsharvest/pkg/logger"
	"xhsharvest/pkg/storage"
	"xhsharvest/pkg/ui"
	"xhsharvest/pkg/xhs"
)

var (
	// Search command flags
	maxItems      int
	sortBy        string
	noteType      string
	publishTime   string
	searchScope   string
	location      string
	profileName   string
	headless      bool
	saveArtifacts bool
	artifactDir   string
	jsonOutput    bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Harvest search results for a keyword",
	Long: `Harvest search results for a keyword by driving a browser session.

The harvester navigates to the search result page, optionally applies
filters through the on-page control panel, and collects feed items from
both the intercepted search API traffic and the page's embedded state.

Filter labels are the platform's own Chinese option names, for example
--sort 最新 or --note-type 视频. An unknown label aborts the search before
the browser is touched.`,
	Example: `  # Harvest 50 results with defaults
  xhsharvest search 咖啡

  # Latest video notes, capped at 20
  xhsharvest search 咖啡 --sort 最新 --note-type 视频 --max-items 20

  # Use a stored cookie profile and dump debug artifacts
  xhsharvest search 露营 --profile myaccount --save-artifacts

  # Machine-readable output
  xhsharvest search 键盘 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&maxItems, "max-items", "n", 0, "maximum number of items to collect (default from config)")
	searchCmd.Flags().StringVar(&sortBy, "sort", "", "sort order: 综合|最新|最多点赞|最多评论|最多收藏")
	searchCmd.Flags().StringVar(&noteType, "note-type", "", "note type: 不限|视频|图文")
	searchCmd.Flags().StringVar(&publishTime, "publish-time", "", "publish time window: 不限|一天内|一周内|半年内")
	searchCmd.Flags().StringVar(&searchScope, "scope", "", "search scope: 不限|已看过|未看过|已关注")
	searchCmd.Flags().StringVar(&location, "location", "", "location filter: 不限|同城|附近")
	searchCmd.Flags().StringVarP(&profileName, "profile", "p", "", "cookie profile to load into the session")
	searchCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	searchCmd.Flags().BoolVar(&saveArtifacts, "save-artifacts", false, "dump state blob and feed JSON artifacts")
	searchCmd.Flags().StringVar(&artifactDir, "artifact-dir", "", "directory for artifact dumps")
	searchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
}

func runSearch(args []string) error {
	keyword := strings.TrimSpace(args[0])
	ui.PrintInfo("Keyword", keyword)

	flags := make(map[string]interface{})
	if profileName != "" {
		flags["profile"] = profileName
	}
	if maxItems > 0 {
		flags["max-items"] = maxItems
	}
	if !headless {
		flags["headless"] = false
	}
	if saveArtifacts {
		flags["save-artifacts"] = true
	}
	if artifactDir != "" {
		flags["artifact-dir"] = artifactDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("Harvester starting")

	filters := &xhs.FilterSelection{
		SortBy:      sortBy,
		NoteType:    noteType,
		PublishTime: publishTime,
		SearchScope: searchScope,
		Location:    location,
	}
	if filters.IsZero() {
		filters = nil
	}

	session, err := browser.NewManager(cfg, log)
	if err != nil {
		ui.PrintError("Failed to start browser session", err.Error())
		os.Exit(1)
	}
	defer session.Stop()

	cookieManager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Cookie storage unavailable, session runs anonymous")
	} else if err := session.LoadCookies(cookieManager, cfg.Platform.Profile); err != nil {
		log.WithError(err).Warn("Could not load cookie profile")
	}

	page, err := session.NewPage()
	if err != nil {
		ui.PrintError("Failed to open page", err.Error())
		os.Exit(1)
	}

	var opts []harvest.Option
	if cfg.Harvest.SaveArtifacts {
		sink, err := storage.NewManager(cfg.Output.ArtifactDirectory)
		if err != nil {
			log.WithError(err).Warn("Artifact directory unavailable, dumps disabled")
		} else {
			opts = append(opts, harvest.WithArtifactSink(sink))
		}
	}

	harvester := harvest.NewHarvester(cfg, log, opts...)
	result, err := harvester.Search(context.Background(), page, keyword, cfg.Harvest.MaxItems, filters)
	if err != nil {
		var filterErr *xhs.FilterError
		if errors.As(err, &filterErr) {
			ui.PrintError("Invalid filter selection", filterErr.Error())
			os.Exit(1)
		}
		ui.PrintError("Harvest failed", err.Error())
		os.Exit(1)
	}

	// Persist whatever the session picked up (login state survives restarts)
	if cookieManager != nil {
		if err := session.SaveCookies(cookieManager, cfg.Platform.Profile); err != nil {
			log.WithError(err).Warn("Could not save session cookies")
		}
	}

	printResult(result)
	return nil
}

func printResult(result *harvest.Result) {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			ui.PrintError("Failed to encode result", err.Error())
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	ui.PrintSuccess(fmt.Sprintf("Collected %d items", result.Total))
	if result.Degraded {
		ui.PrintWarning("Result is partial", "one or more steps degraded; re-run with --log-level debug for detail")
	}
	for i, item := range result.Items {
		title := item.NoteCard.DisplayTitle
		if title == "" {
			title = ui.Dim("(untitled)")
		}
		fmt.Printf("%3d. %s  %s  by %s  ♥ %s\n",
			i+1, item.ID, title, item.NoteCard.User.Nickname, item.NoteCard.InteractInfo.LikedCount)
	}
}
