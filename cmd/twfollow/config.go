package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"twfollow/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twfollow configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWFOLLOW_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'twfollow.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

Cookie values are masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# twfollow configuration file
#
# Every value can also be set with a TWFOLLOW_* environment variable,
# for example TWFOLLOW_USERNAME or TWFOLLOW_AUTH_TOKEN.

# Logged-in account. Prefer 'twfollow auth login' over writing cookies here.
account:
  username: "YOUR_USERNAME"
  auth_token: ""
  csrf_token: ""
  user_agent: ""

twitter:
  base_url: "https://twitter.com"
  cookie_domain: ".twitter.com"

browser:
  # Chrome binary, empty to let the launcher pick one
  bin: ""
  # Attach to a running Chrome (ws://...) instead of launching one
  debugger_url: ""
  headless: true
  viewport_width: 1280
  viewport_height: 900
  navigation_timeout: 30s
  # First and second wait for the follow button
  status_wait: 7s
  status_retry_wait: 14s
  launch_retries: 2

database:
  # Defaults to $XDG_DATA_HOME/twfollow/twfollow.db
  # path: "/home/me/.local/share/twfollow/twfollow.db"

follow:
  # Follow each account at most this many times
  times: 1
  delay: 10s
  # Scale the delay by a random percentage in [min, max]
  randomize: true
  random_min_percent: 70
  random_max_percent: 140
  dialog_pause: 3s
  already_pause: 1s
  # Defaults to $XDG_DATA_HOME/twfollow/logs
  # log_folder: "/home/me/.local/share/twfollow/logs"

quota:
  enabled: true
  # Zero means unlimited
  peaks:
    follows:
      hourly: 48
      daily: 250
    server_calls:
      hourly: 0
      daily: 0
  # Sleep until the next window instead of jumping
  sleep_after: []
  # Stop a follow run after this many jumps in a row
  jump_limit: 7

logging:
  level: "info"
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = "twfollow.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		printer.Error("Configuration file already exists", fmt.Errorf("%s", configPath))
		printer.Plain("\nTo overwrite, first remove the existing file:")
		printer.Plain(fmt.Sprintf("  rm %s", configPath))
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		printer.Error("Failed to create configuration file", err)
		os.Exit(1)
	}

	printer.Success("Configuration file created: " + configPath)
	printer.Plain("\nNext steps:")
	printer.Plain("1. Set account.username and the paths in the configuration file")
	printer.Plain("2. Store your cookies with 'twfollow auth login'")
	printer.Plain("3. Run 'twfollow config validate' to check the configuration")
	printer.Plain("4. Start following with 'twfollow follow <username>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		printer.Error("Failed to load configuration", err)
		os.Exit(1)
	}

	data, err := yaml.Marshal(maskedConfig(cfg))
	if err != nil {
		printer.Error("Failed to format configuration", err)
		os.Exit(1)
	}

	printer.Highlight("Current Configuration")
	printer.Plain("")
	printer.Plain(string(data))

	printer.Plain("Configuration sources (in order of priority):")
	printer.Plain("1. Command line flags")
	printer.Plain("2. Environment variables (TWFOLLOW_*)")
	if configFile != "" {
		printer.Plain(fmt.Sprintf("3. Configuration file: %s", configFile))
	} else {
		printer.Plain("3. Configuration file: (searched in standard locations)")
	}
	printer.Plain("4. Default values")
}

// maskedConfig returns a copy of cfg with the cookie values masked
func maskedConfig(cfg *config.Config) *config.Config {
	masked := *cfg
	masked.Account.AuthToken = maskToken(cfg.Account.AuthToken)
	masked.Account.CSRFToken = maskToken(cfg.Account.CSRFToken)
	return &masked
}

func maskToken(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		printer.Error("Configuration validation failed", err)
		os.Exit(1)
	}

	var warnings []string
	if cfg.Account.AuthToken == "" {
		warnings = append(warnings, "auth_token cookie not configured")
	}
	if cfg.Account.CSRFToken == "" {
		warnings = append(warnings, "csrf_token cookie not configured")
	}
	if !cfg.Quota.Enabled {
		warnings = append(warnings, "quota supervision is disabled")
	}
	if cfg.Follow.Delay == 0 {
		warnings = append(warnings, "follow delay is zero")
	}

	for _, w := range warnings {
		printer.Warning(w)
	}
	printer.Success("Configuration is valid")
}
