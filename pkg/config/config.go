package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFollowButtonXPath locates the follow button on a twitter profile page
const DefaultFollowButtonXPath = `//*[@id="page-container"]/div/div/ul/li/div/div/span/button[@type="button"]/span[text()="Follow"]`

// DefaultUserIDXPath locates the profile nav element carrying data-user-id
const DefaultUserIDXPath = `//div[contains(@class, "ProfileNav")][@data-user-id]`

// DefaultPostAuthorXPath locates the author id of the tweet on a post page
const DefaultPostAuthorXPath = `//div[contains(@class, "permalink-tweet")][@data-user-id]`

// Config holds all configuration options for twfollow
type Config struct {
	// Logged-in account
	Account AccountConfig `yaml:"account" json:"account"`

	// Target site
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Browser automation
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Counter database
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Follow behaviour and pacing
	Follow FollowConfig `yaml:"follow" json:"follow"`

	// Quota supervisor
	Quota QuotaConfig `yaml:"quota" json:"quota"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AccountConfig identifies the logged-in account and its session cookies
type AccountConfig struct {
	Username  string `yaml:"username" json:"username" validate:"required"`
	AuthToken string `yaml:"auth_token" json:"auth_token"`
	CSRFToken string `yaml:"csrf_token" json:"csrf_token"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// TwitterConfig holds site addresses
type TwitterConfig struct {
	BaseURL      string `yaml:"base_url" json:"base_url" validate:"required,url"`
	CookieDomain string `yaml:"cookie_domain" json:"cookie_domain" validate:"required"`
}

// BrowserConfig holds browser automation settings
type BrowserConfig struct {
	Bin               string        `yaml:"bin" json:"bin"`
	DebuggerURL       string        `yaml:"debugger_url" json:"debugger_url"`
	Headless          bool          `yaml:"headless" json:"headless"`
	ViewportWidth     int           `yaml:"viewport_width" json:"viewport_width" validate:"gte=0"`
	ViewportHeight    int           `yaml:"viewport_height" json:"viewport_height" validate:"gte=0"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout" validate:"gt=0"`
	StatusWait        time.Duration `yaml:"status_wait" json:"status_wait" validate:"gt=0"`
	StatusRetryWait   time.Duration `yaml:"status_retry_wait" json:"status_retry_wait" validate:"gt=0"`
	FollowButtonXPath string        `yaml:"follow_button_xpath" json:"follow_button_xpath" validate:"required"`
	UserIDXPath       string        `yaml:"user_id_xpath" json:"user_id_xpath" validate:"required"`
	PostAuthorXPath   string        `yaml:"post_author_xpath" json:"post_author_xpath" validate:"required"`
	LaunchRetries     int           `yaml:"launch_retries" json:"launch_retries" validate:"gte=1,lte=10"`
}

// DatabaseConfig holds the counter store location
type DatabaseConfig struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// FollowConfig holds follow behaviour and pacing
type FollowConfig struct {
	// Times is the per-user follow limit enforced before each follow
	Times            int           `yaml:"times" json:"times" validate:"gte=1"`
	Delay            time.Duration `yaml:"delay" json:"delay" validate:"gte=0"`
	Randomize        bool          `yaml:"randomize" json:"randomize"`
	RandomMinPercent int           `yaml:"random_min_percent" json:"random_min_percent" validate:"gte=0"`
	RandomMaxPercent int           `yaml:"random_max_percent" json:"random_max_percent" validate:"gte=0"`
	DialogPause      time.Duration `yaml:"dialog_pause" json:"dialog_pause" validate:"gte=0"`
	AlreadyPause     time.Duration `yaml:"already_pause" json:"already_pause" validate:"gte=0"`
	LogFolder        string        `yaml:"log_folder" json:"log_folder"`
}

// QuotaConfig holds peak values per action
type QuotaConfig struct {
	Enabled    bool                `yaml:"enabled" json:"enabled"`
	Peaks      map[string]PeakPair `yaml:"peaks" json:"peaks" validate:"dive"`
	SleepAfter []string            `yaml:"sleep_after" json:"sleep_after"`
	// JumpLimit stops a follow list after this many consecutive jumps
	JumpLimit int `yaml:"jump_limit" json:"jump_limit" validate:"gte=1"`
}

// PeakPair holds hourly and daily peaks; zero means unlimited
type PeakPair struct {
	Hourly int `yaml:"hourly" json:"hourly" validate:"gte=0"`
	Daily  int `yaml:"daily" json:"daily" validate:"gte=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Twitter: TwitterConfig{
			BaseURL:      "https://twitter.com",
			CookieDomain: ".twitter.com",
		},
		Browser: BrowserConfig{
			Headless:          true,
			ViewportWidth:     1280,
			ViewportHeight:    900,
			NavigationTimeout: 30 * time.Second,
			StatusWait:        7 * time.Second,
			StatusRetryWait:   14 * time.Second,
			FollowButtonXPath: DefaultFollowButtonXPath,
			UserIDXPath:       DefaultUserIDXPath,
			PostAuthorXPath:   DefaultPostAuthorXPath,
			LaunchRetries:     2,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(defaultDataDir(), "twfollow.db"),
		},
		Follow: FollowConfig{
			Times:            1,
			Delay:            10 * time.Second,
			Randomize:        true,
			RandomMinPercent: 70,
			RandomMaxPercent: 140,
			DialogPause:      3 * time.Second,
			AlreadyPause:     1 * time.Second,
			LogFolder:        filepath.Join(defaultDataDir(), "logs"),
		},
		Quota: QuotaConfig{
			Enabled: true,
			Peaks: map[string]PeakPair{
				"follows":      {Hourly: 48, Daily: 250},
				"server_calls": {Hourly: 0, Daily: 0},
			},
			JumpLimit: 7,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if username := os.Getenv("TWFOLLOW_USERNAME"); username != "" {
		c.Account.Username = username
	}
	if token := os.Getenv("TWFOLLOW_AUTH_TOKEN"); token != "" {
		c.Account.AuthToken = token
	}
	if csrf := os.Getenv("TWFOLLOW_CSRF_TOKEN"); csrf != "" {
		c.Account.CSRFToken = csrf
	}
	if userAgent := os.Getenv("TWFOLLOW_USER_AGENT"); userAgent != "" {
		c.Account.UserAgent = userAgent
	}
	if baseURL := os.Getenv("TWFOLLOW_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if dbPath := os.Getenv("TWFOLLOW_DB_PATH"); dbPath != "" {
		c.Database.Path = dbPath
	}
	if headless := os.Getenv("TWFOLLOW_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if debuggerURL := os.Getenv("TWFOLLOW_DEBUGGER_URL"); debuggerURL != "" {
		c.Browser.DebuggerURL = debuggerURL
	}

	if times := os.Getenv("TWFOLLOW_FOLLOW_TIMES"); times != "" {
		val, err := strconv.Atoi(times)
		if err != nil {
			return fmt.Errorf("invalid TWFOLLOW_FOLLOW_TIMES %q: %w", times, err)
		}
		c.Follow.Times = val
	}
	if delay := os.Getenv("TWFOLLOW_FOLLOW_DELAY"); delay != "" {
		val, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid TWFOLLOW_FOLLOW_DELAY %q: %w", delay, err)
		}
		c.Follow.Delay = val
	}
	if logFolder := os.Getenv("TWFOLLOW_LOG_FOLDER"); logFolder != "" {
		c.Follow.LogFolder = logFolder
	}

	if quota := os.Getenv("TWFOLLOW_QUOTA_ENABLED"); quota != "" {
		c.Quota.Enabled = strings.ToLower(quota) == "true"
	}

	if logLevel := os.Getenv("TWFOLLOW_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".twfollow.yaml",
		".twfollow.yml",
		"twfollow.yaml",
		"twfollow.yml",
		filepath.Join(home, ".config", "twfollow", "config.yaml"),
		filepath.Join(home, ".config", "twfollow", "config.yml"),
		filepath.Join(home, ".twfollow.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s: failed %q check", fieldPath(fe), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if c.Follow.Randomize && c.Follow.RandomMinPercent > c.Follow.RandomMaxPercent {
		errs = append(errs, errors.New("follow random_min_percent cannot exceed random_max_percent"))
	}
	if c.Browser.StatusRetryWait < c.Browser.StatusWait {
		errs = append(errs, errors.New("browser status_retry_wait should not be shorter than status_wait"))
	}
	for _, action := range c.Quota.SleepAfter {
		if _, ok := c.Quota.Peaks[action]; !ok {
			errs = append(errs, fmt.Errorf("quota sleep_after names %q which has no peaks", action))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// fieldPath trims the root struct name from a validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Account.Username = username
	}
	if dbPath, ok := flags["db"].(string); ok && dbPath != "" {
		c.Database.Path = dbPath
	}
	if times, ok := flags["times"].(int); ok && times > 0 {
		c.Follow.Times = times
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if debuggerURL, ok := flags["debugger-url"].(string); ok && debuggerURL != "" {
		c.Browser.DebuggerURL = debuggerURL
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twfollow.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// defaultDataDir returns ~/.local/share/twfollow, honouring XDG_DATA_HOME
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "twfollow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "twfollow-data"
	}
	return filepath.Join(home, ".local", "share", "twfollow")
}
