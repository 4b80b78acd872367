package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOutputPath is where the ranked colors land unless overridden
	DefaultOutputPath = "dist/colors.json"

	// DefaultScreenName is the account whose timeline is trawled
	DefaultScreenName = "everycolorbot"

	// MaxPageSize is the largest count the user_timeline endpoint accepts
	MaxPageSize = 200
)

// Config holds all configuration options for the color trawler
type Config struct {
	// Twitter API credentials and transport settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Paging bounds for the timeline walk
	Trawl TrawlConfig `yaml:"trawl" json:"trawl"`

	// Request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds the OAuth 1.0a credentials and API endpoint
type TwitterConfig struct {
	ConsumerKey       string        `yaml:"consumer_key" json:"consumer_key"`
	ConsumerSecret    string        `yaml:"consumer_secret" json:"consumer_secret"`
	AccessToken       string        `yaml:"access_token" json:"access_token"`
	AccessTokenSecret string        `yaml:"access_token_secret" json:"access_token_secret"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
}

// HasCredentials reports whether all four OAuth values are present
func (t TwitterConfig) HasCredentials() bool {
	return t.ConsumerKey != "" && t.ConsumerSecret != "" &&
		t.AccessToken != "" && t.AccessTokenSecret != ""
}

// TrawlConfig holds the timeline walk settings
type TrawlConfig struct {
	ScreenName string `yaml:"screen_name" json:"screen_name"`
	MaxPages   int    `yaml:"max_pages" json:"max_pages"`
	PageSize   int    `yaml:"page_size" json:"page_size"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	Requests int           `yaml:"requests" json:"requests"`
	Window   time.Duration `yaml:"window" json:"window"`
}

// OutputConfig holds the destination of the ranked JSON file
type OutputConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/1.1",
			Timeout: 30 * time.Second,
		},
		Trawl: TrawlConfig{
			ScreenName: DefaultScreenName,
			MaxPages:   100,
			PageSize:   MaxPageSize,
		},
		RateLimit: RateLimitConfig{
			// user_timeline allows 900 requests per 15 minute window
			Requests: 900,
			Window:   15 * time.Minute,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("TWITTER_API_KEY"); v != "" {
		c.Twitter.ConsumerKey = v
	}
	if v := os.Getenv("TWITTER_API_SECRET"); v != "" {
		c.Twitter.ConsumerSecret = v
	}
	if v := os.Getenv("TWITTER_ACCESS_TOKEN"); v != "" {
		c.Twitter.AccessToken = v
	}
	if v := os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"); v != "" {
		c.Twitter.AccessTokenSecret = v
	}

	// Historical name; the value is a file path, not a directory
	if v := os.Getenv("COLOR_OUTPUT_DIR"); v != "" {
		c.Output.Path = v
	}

	if v := os.Getenv("COLORTRAWL_SCREEN_NAME"); v != "" {
		c.Trawl.ScreenName = v
	}
	if v := os.Getenv("COLORTRAWL_MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid COLORTRAWL_MAX_PAGES %q: %w", v, err)
		}
		c.Trawl.MaxPages = n
	}
	if v := os.Getenv("COLORTRAWL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
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
	home := os.Getenv("HOME")
	locations := []string{
		".colortrawl.yaml",
		".colortrawl.yml",
		filepath.Join(home, ".config", "colortrawl", "config.yaml"),
		filepath.Join(home, ".config", "colortrawl", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Missing credentials are not
// an error here: the trawl still runs and writes whatever it collected.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("twitter base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("twitter timeout must be positive"))
	}

	if strings.TrimSpace(c.Trawl.ScreenName) == "" {
		errs = append(errs, errors.New("screen name is required"))
	}
	if c.Trawl.MaxPages <= 0 {
		errs = append(errs, errors.New("max pages must be positive"))
	}
	if c.Trawl.PageSize <= 0 || c.Trawl.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d", MaxPageSize))
	}

	if c.RateLimit.Requests <= 0 {
		errs = append(errs, errors.New("rate limit requests must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	if c.Output.Path == "" {
		errs = append(errs, errors.New("output path is required"))
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

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Path = output
	}
	if screenName, ok := flags["screen-name"].(string); ok && screenName != "" {
		c.Trawl.ScreenName = screenName
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Trawl.MaxPages = maxPages
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Trawl.PageSize = pageSize
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".colortrawl.env"))

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
