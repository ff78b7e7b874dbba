package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the harvester
type Config struct {
	// Platform settings (base URL, source tag, cookie profile)
	Platform PlatformConfig `yaml:"platform" json:"platform"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Harvest pipeline settings
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Rate limiting for scroll cycles
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behaviour for navigation
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Diagnostic artifact output
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PlatformConfig holds platform-specific configuration
type PlatformConfig struct {
	BaseURL   string `yaml:"base_url" json:"base_url"`
	SourceTag string `yaml:"source_tag" json:"source_tag"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	Profile   string `yaml:"profile" json:"profile"`
}

// BrowserConfig holds browser session configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
}

// UnmarshalYAML decodes durations from human-readable forms like "30s",
// which yaml does not do for time.Duration on its own. Unset keys keep
// whatever value the struct already holds.
func (b *BrowserConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Headless          *bool  `yaml:"headless"`
		NavigationTimeout string `yaml:"navigation_timeout"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Headless != nil {
		b.Headless = *raw.Headless
	}
	return setDuration(raw.NavigationTimeout, &b.NavigationTimeout)
}

// MarshalYAML emits durations in their string form so saved files
// round-trip through UnmarshalYAML.
func (b BrowserConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Headless          bool   `yaml:"headless"`
		NavigationTimeout string `yaml:"navigation_timeout"`
	}{
		Headless:          b.Headless,
		NavigationTimeout: b.NavigationTimeout.String(),
	}, nil
}

// setDuration parses a duration string into dst, leaving dst untouched when
// the string is empty
func setDuration(raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*dst = d
	return nil
}

// HarvestConfig holds harvest pipeline configuration
type HarvestConfig struct {
	MaxItems           int           `yaml:"max_items" json:"max_items"`
	MaxScrolls         int           `yaml:"max_scrolls" json:"max_scrolls"`
	MaxStagnantScrolls int           `yaml:"max_stagnant_scrolls" json:"max_stagnant_scrolls"`
	StateTimeout       time.Duration `yaml:"state_timeout" json:"state_timeout"`
	FilterPanelTimeout time.Duration `yaml:"filter_panel_timeout" json:"filter_panel_timeout"`
	StabilityTimeout   time.Duration `yaml:"stability_timeout" json:"stability_timeout"`
	MinDelay           time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay           time.Duration `yaml:"max_delay" json:"max_delay"`
	ElideDefaults      bool          `yaml:"elide_defaults" json:"elide_defaults"`
	SaveArtifacts      bool          `yaml:"save_artifacts" json:"save_artifacts"`
}

// UnmarshalYAML decodes the harvest section, accepting human-readable
// duration strings and keeping defaults for unset keys
func (h *HarvestConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxItems           *int   `yaml:"max_items"`
		MaxScrolls         *int   `yaml:"max_scrolls"`
		MaxStagnantScrolls *int   `yaml:"max_stagnant_scrolls"`
		StateTimeout       string `yaml:"state_timeout"`
		FilterPanelTimeout string `yaml:"filter_panel_timeout"`
		StabilityTimeout   string `yaml:"stability_timeout"`
		MinDelay           string `yaml:"min_delay"`
		MaxDelay           string `yaml:"max_delay"`
		ElideDefaults      *bool  `yaml:"elide_defaults"`
		SaveArtifacts      *bool  `yaml:"save_artifacts"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.MaxItems != nil {
		h.MaxItems = *raw.MaxItems
	}
	if raw.MaxScrolls != nil {
		h.MaxScrolls = *raw.MaxScrolls
	}
	if raw.MaxStagnantScrolls != nil {
		h.MaxStagnantScrolls = *raw.MaxStagnantScrolls
	}
	if raw.ElideDefaults != nil {
		h.ElideDefaults = *raw.ElideDefaults
	}
	if raw.SaveArtifacts != nil {
		h.SaveArtifacts = *raw.SaveArtifacts
	}

	for _, pair := range []struct {
		raw string
		dst *time.Duration
	}{
		{raw.StateTimeout, &h.StateTimeout},
		{raw.FilterPanelTimeout, &h.FilterPanelTimeout},
		{raw.StabilityTimeout, &h.StabilityTimeout},
		{raw.MinDelay, &h.MinDelay},
		{raw.MaxDelay, &h.MaxDelay},
	} {
		if err := setDuration(pair.raw, pair.dst); err != nil {
			return err
		}
	}
	return nil
}

func (h HarvestConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxItems           int    `yaml:"max_items"`
		MaxScrolls         int    `yaml:"max_scrolls"`
		MaxStagnantScrolls int    `yaml:"max_stagnant_scrolls"`
		StateTimeout       string `yaml:"state_timeout"`
		FilterPanelTimeout string `yaml:"filter_panel_timeout"`
		StabilityTimeout   string `yaml:"stability_timeout"`
		MinDelay           string `yaml:"min_delay"`
		MaxDelay           string `yaml:"max_delay"`
		ElideDefaults      bool   `yaml:"elide_defaults"`
		SaveArtifacts      bool   `yaml:"save_artifacts"`
	}{
		MaxItems:           h.MaxItems,
		MaxScrolls:         h.MaxScrolls,
		MaxStagnantScrolls: h.MaxStagnantScrolls,
		StateTimeout:       h.StateTimeout.String(),
		FilterPanelTimeout: h.FilterPanelTimeout.String(),
		StabilityTimeout:   h.StabilityTimeout.String(),
		MinDelay:           h.MinDelay.String(),
		MaxDelay:           h.MaxDelay.String(),
		ElideDefaults:      h.ElideDefaults,
		SaveArtifacts:      h.SaveArtifacts,
	}, nil
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	ScrollsPerMinute int `yaml:"scrolls_per_minute" json:"scrolls_per_minute"`
}

// RetryConfig holds retry configuration for navigation
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
}

func (r *RetryConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxAttempts  *int     `yaml:"max_attempts"`
		InitialDelay string   `yaml:"initial_delay"`
		MaxDelay     string   `yaml:"max_delay"`
		Multiplier   *float64 `yaml:"multiplier"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxAttempts != nil {
		r.MaxAttempts = *raw.MaxAttempts
	}
	if raw.Multiplier != nil {
		r.Multiplier = *raw.Multiplier
	}
	if err := setDuration(raw.InitialDelay, &r.InitialDelay); err != nil {
		return err
	}
	return setDuration(raw.MaxDelay, &r.MaxDelay)
}

func (r RetryConfig) MarshalYAML() (interface{}, error) {
	return struct {
		MaxAttempts  int     `yaml:"max_attempts"`
		InitialDelay string  `yaml:"initial_delay"`
		MaxDelay     string  `yaml:"max_delay"`
		Multiplier   float64 `yaml:"multiplier"`
	}{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: r.InitialDelay.String(),
		MaxDelay:     r.MaxDelay.String(),
		Multiplier:   r.Multiplier,
	}, nil
}

// OutputConfig holds artifact output configuration
type OutputConfig struct {
	ArtifactDirectory string `yaml:"artifact_directory" json:"artifact_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Platform: PlatformConfig{
			BaseURL:   "https://www.xiaohongshu.com",
			SourceTag: "web_explore_feed",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Profile:   "default",
		},
		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: 30 * time.Second,
		},
		Harvest: HarvestConfig{
			MaxItems:           50,
			MaxScrolls:         50,
			MaxStagnantScrolls: 3,
			StateTimeout:       5 * time.Second,
			FilterPanelTimeout: 5 * time.Second,
			StabilityTimeout:   8 * time.Second,
			MinDelay:           800 * time.Millisecond,
			MaxDelay:           2500 * time.Millisecond,
			ElideDefaults:      true,
			SaveArtifacts:      false,
		},
		RateLimit: RateLimitConfig{
			ScrollsPerMinute: 20,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
		Output: OutputConfig{
			ArtifactDirectory: "./harvest_artifacts",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if profile := os.Getenv("XHSHARVEST_PROFILE"); profile != "" {
		c.Platform.Profile = profile
	}
	if userAgent := os.Getenv("XHSHARVEST_USER_AGENT"); userAgent != "" {
		c.Platform.UserAgent = userAgent
	}
	if headless := os.Getenv("XHSHARVEST_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if maxItems := os.Getenv("XHSHARVEST_MAX_ITEMS"); maxItems != "" {
		var val int
		fmt.Sscanf(maxItems, "%d", &val)
		if val > 0 {
			c.Harvest.MaxItems = val
		}
	}
	if spm := os.Getenv("XHSHARVEST_SCROLLS_PER_MINUTE"); spm != "" {
		var val int
		fmt.Sscanf(spm, "%d", &val)
		if val > 0 {
			c.RateLimit.ScrollsPerMinute = val
		}
	}
	if artifactDir := os.Getenv("XHSHARVEST_ARTIFACT_DIR"); artifactDir != "" {
		c.Output.ArtifactDirectory = artifactDir
	}
	if saveArtifacts := os.Getenv("XHSHARVEST_SAVE_ARTIFACTS"); saveArtifacts != "" {
		c.Harvest.SaveArtifacts = strings.ToLower(saveArtifacts) == "true"
	}
	if logLevel := os.Getenv("XHSHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
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
	// Check in order of precedence
	locations := []string{
		".xhsharvest.yaml",
		".xhsharvest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xhsharvest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xhsharvest", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xhsharvest.yaml"),
		filepath.Join(os.Getenv("HOME"), ".xhsharvest.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Platform.BaseURL == "" {
		errs = append(errs, errors.New("platform base URL is required"))
	}
	if c.Platform.SourceTag == "" {
		errs = append(errs, errors.New("platform source tag is required"))
	}
	if c.Platform.Profile == "" {
		errs = append(errs, errors.New("cookie profile is required"))
	}

	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}

	if c.Harvest.MaxItems <= 0 {
		errs = append(errs, errors.New("max items must be positive"))
	}
	if c.Harvest.MaxScrolls <= 0 {
		errs = append(errs, errors.New("max scrolls must be positive"))
	}
	if c.Harvest.MaxStagnantScrolls <= 0 {
		errs = append(errs, errors.New("max stagnant scrolls must be positive"))
	}
	if c.Harvest.MinDelay < 0 || c.Harvest.MaxDelay < c.Harvest.MinDelay {
		errs = append(errs, errors.New("delay range is invalid"))
	}

	if c.RateLimit.ScrollsPerMinute <= 0 {
		errs = append(errs, errors.New("scrolls per minute must be positive"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}

	if c.Harvest.SaveArtifacts && c.Output.ArtifactDirectory == "" {
		errs = append(errs, errors.New("artifact directory is required when artifacts are enabled"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
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
	if profile, ok := flags["profile"].(string); ok && profile != "" {
		c.Platform.Profile = profile
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if maxItems, ok := flags["max-items"].(int); ok && maxItems > 0 {
		c.Harvest.MaxItems = maxItems
	}
	if artifactDir, ok := flags["artifact-dir"].(string); ok && artifactDir != "" {
		c.Output.ArtifactDirectory = artifactDir
	}
	if saveArtifacts, ok := flags["save-artifacts"].(bool); ok {
		c.Harvest.SaveArtifacts = saveArtifacts
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xhsharvest.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
