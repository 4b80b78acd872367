package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"colortrawl/pkg/config"
	"colortrawl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage colortrawl configuration files.

Configuration is loaded from, highest priority first:
  - Command line flags
  - Environment variables
  - .env files
  - Configuration file
  - Default values`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to '.colortrawl.yaml' unless --config names another path.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration merged from all sources with credentials masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges
  - That the output and log directories can be created`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# colortrawl configuration
#
# Environment variables override this file:
#   TWITTER_API_KEY, TWITTER_API_SECRET,
#   TWITTER_ACCESS_TOKEN, TWITTER_ACCESS_TOKEN_SECRET,
#   COLOR_OUTPUT_DIR, COLORTRAWL_SCREEN_NAME,
#   COLORTRAWL_MAX_PAGES, COLORTRAWL_LOG_LEVEL

# API credentials. Prefer 'colortrawl auth login' over storing them here.
twitter:
  consumer_key: ""
  consumer_secret: ""
  access_token: ""
  access_token_secret: ""
  base_url: "https://api.twitter.com/1.1"
  timeout: 30s

# Timeline walk
trawl:
  screen_name: "everycolorbot"
  # Upper bound on pages fetched per run
  max_pages: 100
  # Tweets per page, at most 200
  page_size: 200

# Client-side pacing of timeline requests
rate_limit:
  requests: 900
  window: 15m

# Output file, replaced on every run
output:
  path: "dist/colors.json"

logging:
  # debug, info, warn, error
  level: "info"
  # Optional log file in addition to stderr
  file: ""
  no_color: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".colortrawl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Run 'colortrawl auth login' to store API credentials")
	fmt.Fprintln(out, "2. Run 'colortrawl config validate' to check the configuration")
	fmt.Fprintln(out, "3. Run 'colortrawl' to collect colors")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, buildFlags())
	if err != nil {
		return err
	}

	ui.PrintHighlight("Current Configuration")
	return writeMaskedConfig(cmd.OutOrStdout(), cfg)
}

// writeMaskedConfig prints cfg as YAML with credentials masked
func writeMaskedConfig(w io.Writer, cfg *config.Config) error {
	display := *cfg
	for _, v := range []*string{
		&display.Twitter.ConsumerKey,
		&display.Twitter.ConsumerSecret,
		&display.Twitter.AccessToken,
		&display.Twitter.AccessTokenSecret,
	} {
		*v = mask(*v)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	_, err = fmt.Fprintf(w, "\n%s", data)
	return err
}

func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) > 8:
		return s[:4] + "..." + s[len(s)-4:]
	default:
		return "***"
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	var problems, warnings []string

	if !cfg.Twitter.HasCredentials() {
		warnings = append(warnings, "API credentials not configured here; stored accounts are used at run time")
	}

	if dir := filepath.Dir(cfg.Output.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
		}
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	out := cmd.OutOrStdout()
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d error(s)", len(problems))
	}

	for _, w := range warnings {
		ui.PrintWarning("Warning", w)
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Timeline:   @%s\n", cfg.Trawl.ScreenName)
	fmt.Fprintf(out, "  Pages:      %d x %d\n", cfg.Trawl.MaxPages, cfg.Trawl.PageSize)
	fmt.Fprintf(out, "  Rate limit: %d requests per %s\n", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	fmt.Fprintf(out, "  Output:     %s\n", cfg.Output.Path)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.Logging.Level)
	return nil
}
