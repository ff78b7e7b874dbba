package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xhsharvest/pkg/auth"
	"xhsharvest/pkg/ui"
)

var useEncryptedStore bool

// cookiesCmd represents the cookies command
var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage stored cookie profiles",
	Long: `Manage the cookie profiles the harvester loads into its browser session.

Profiles are stored using:
  - System keychain (when available)
  - Plain JSON files under the config directory
  - An encrypted file with PBKDF2 key derivation (--encrypted)

To capture cookies:
1. Log into the platform in your browser
2. Export cookies with devtools or a cookie-export extension (JSON format)
3. Import the dump with 'xhsharvest cookies import'`,
}

// cookiesImportCmd represents the cookies import command
var cookiesImportCmd = &cobra.Command{
	Use:   "import <profile> <file>",
	Short: "Import a cookie dump into a profile",
	Long: `Import a JSON cookie dump (a devtools or extension export) and store it
under a profile name. The file must contain a JSON array of cookies.`,
	Example: `  # Import into the default profile
  xhsharvest cookies import default ./cookies.json

  # Import into an encrypted file store
  xhsharvest cookies import myaccount ./cookies.json --encrypted`,
	Args: cobra.ExactArgs(2),
	RunE: runCookiesImport,
}

// cookiesExportCmd represents the cookies export command
var cookiesExportCmd = &cobra.Command{
	Use:   "export <profile> [file]",
	Short: "Export a stored profile as JSON",
	Long:  `Export a stored cookie profile as a JSON array, to stdout or a file.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCookiesExport,
}

// cookiesClearCmd represents the cookies clear command
var cookiesClearCmd = &cobra.Command{
	Use:   "clear <profile>",
	Short: "Remove a stored cookie profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runCookiesClear,
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
	cookiesCmd.AddCommand(cookiesImportCmd)
	cookiesCmd.AddCommand(cookiesExportCmd)
	cookiesCmd.AddCommand(cookiesClearCmd)

	cookiesCmd.PersistentFlags().BoolVar(&useEncryptedStore, "encrypted", false, "use the passphrase-encrypted file store")
}

// cookieStore picks the storage backend the subcommands operate on
func cookieStore() (auth.Store, error) {
	if useEncryptedStore {
		passphrase, err := promptPassphrase()
		if err != nil {
			return nil, err
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		return auth.NewEncryptedFileStore(filepath.Join(home, ".xhsharvest", "cookies.enc"), passphrase)
	}
	return auth.NewManager()
}

func promptPassphrase() (string, error) {
	fmt.Print("Passphrase: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	passphrase := strings.TrimSpace(string(raw))
	if passphrase == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	return passphrase, nil
}

func runCookiesImport(cmd *cobra.Command, args []string) error {
	profileName, file := args[0], args[1]

	data, err := os.ReadFile(file)
	if err != nil {
		ui.PrintError("Failed to read cookie dump", err.Error())
		os.Exit(1)
	}

	var cookies []auth.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		ui.PrintError("Cookie dump is not a JSON cookie array", err.Error())
		os.Exit(1)
	}
	if len(cookies) == 0 {
		ui.PrintError("Cookie dump contains no cookies")
		os.Exit(1)
	}

	store, err := cookieStore()
	if err != nil {
		ui.PrintError("Failed to open cookie store", err.Error())
		os.Exit(1)
	}

	if err := store.Store(&auth.Profile{Name: profileName, Cookies: cookies}); err != nil {
		ui.PrintError("Failed to store profile", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Imported %d cookies into profile %q", len(cookies), profileName))
	return nil
}

func runCookiesExport(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	store, err := cookieStore()
	if err != nil {
		ui.PrintError("Failed to open cookie store", err.Error())
		os.Exit(1)
	}

	profile, err := store.Retrieve(profileName)
	if err != nil {
		ui.PrintError("Profile not found", profileName)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(profile.Cookies, "", "  ")
	if err != nil {
		ui.PrintError("Failed to encode cookies", err.Error())
		os.Exit(1)
	}

	if len(args) == 2 {
		if err := os.WriteFile(args[1], data, 0600); err != nil {
			ui.PrintError("Failed to write file", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess(fmt.Sprintf("Exported profile %q to %s", profileName, args[1]))
		return nil
	}

	fmt.Println(string(data))
	return nil
}

func runCookiesClear(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	store, err := cookieStore()
	if err != nil {
		ui.PrintError("Failed to open cookie store", err.Error())
		os.Exit(1)
	}

	if err := store.Delete(profileName); err != nil {
		ui.PrintError("Failed to remove profile", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Removed profile %q", profileName))
	return nil
}
