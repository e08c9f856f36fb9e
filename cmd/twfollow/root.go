package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"twfollow/pkg/auth"
	"twfollow/pkg/config"
	"twfollow/pkg/logger"
	"twfollow/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	username    string
	dbPath      string
	headless    bool
	debuggerURL string
	quiet       bool

	printer = ui.NewPrinter(os.Stdout)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "twfollow",
	Short: "Follow twitter accounts through a real browser session",
	Long: `twfollow follows twitter accounts by driving a Chrome session logged in
with your own cookies.

Features:
  - Per-account follow counters so nobody is followed more than --times times
  - Hourly and daily follow peaks with optional sleep until the next window
  - Randomized delays between follows
  - A CSV pool of every account followed
  - Resume interrupted follow runs
  - Secure cookie storage using the system keychain`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			return
		}
		if cmd.Name() != "version" && cmd.Name() != "help" {
			printer.Logo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.twfollow.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "logged-in twitter account")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "counter database path")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "run Chrome without a window")
	rootCmd.PersistentFlags().StringVar(&debuggerURL, "debugger-url", "", "attach to a running Chrome instead of launching one")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "hide the logo")

	rootCmd.SetVersionTemplate(`twfollow {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandFlags collects the global flags the user actually set
func commandFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}
	set("username", username)
	set("db", dbPath)
	set("headless", headless)
	set("debugger-url", debuggerURL)
	set("log-level", logLevel)
	return flags
}

// loadConfig loads the configuration, starts the logger and fills missing
// session cookies from the credential store
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	flags := commandFlags(cmd)
	for k, v := range extra {
		flags[k] = v
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Account.AuthToken == "" || cfg.Account.CSRFToken == "" {
		if err := applyStoredCredentials(&cfg.Account); err != nil {
			logger.GetLogger().WithError(err).WithField("username", cfg.Account.Username).
				Debug("No stored credentials applied")
		}
	}

	return cfg, nil
}

func applyStoredCredentials(account *config.AccountConfig) error {
	dir, err := auth.DefaultConfigDir()
	if err != nil {
		return err
	}
	manager, err := auth.NewManager(dir)
	if err != nil {
		return err
	}
	return manager.Apply(account)
}
