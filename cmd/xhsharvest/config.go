package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"xhsharvest/pkg/config"
	"xhsharvest/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage xhsharvest configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (XHSHARVEST_ prefix)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'xhsharvest.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Timeout and delay sanity`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "xhsharvest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# xhsharvest configuration file
#
# Every option can also be set through environment variables prefixed
# with XHSHARVEST_, for example XHSHARVEST_PROFILE or XHSHARVEST_HEADLESS.

# Platform settings
platform:
  base_url: "https://www.xiaohongshu.com"
  source_tag: "web_explore_feed"

  # User agent sent by the browser context
  user_agent: ""

  # Cookie profile loaded into the session
  profile: "default"

# Browser session settings
browser:
  headless: true

  # Navigation timeout
  navigation_timeout: 30s

# Harvest pipeline settings
harvest:
  # Default item cap per search
  max_items: 50

  # Hard cap on scroll cycles per harvest
  max_scrolls: 50

  # Stop after this many consecutive scrolls that add nothing
  max_stagnant_scrolls: 3

  # Bounded wait for the page state blob
  state_timeout: 5s

  # Bounded wait for the filter control panel
  filter_panel_timeout: 5s

  # Bounded wait for the page to settle after a scroll
  stability_timeout: 8s

  # Randomized pacing band between browser actions
  min_delay: 800ms
  max_delay: 2500ms

  # Skip filter options that are the platform default
  elide_defaults: true

  # Dump state blob and feed JSON artifacts per harvest
  save_artifacts: false

# Rate limiting
rate_limit:
  scrolls_per_minute: 20

# Navigation retry
retry:
  max_attempts: 3
  initial_delay: 2s
  max_delay: 30s
  multiplier: 2.0

# Artifact output
output:
  artifact_directory: "./harvest_artifacts"

# Logging
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional, stdout when empty)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to taste")
	fmt.Println("2. Run 'xhsharvest config validate' to check it")
	fmt.Println("3. Import cookies with 'xhsharvest cookies import' and start harvesting")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to encode configuration", err.Error())
		os.Exit(1)
	}

	fmt.Println(string(data))
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration is invalid", err.Error())
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration is invalid", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration is valid")
}
