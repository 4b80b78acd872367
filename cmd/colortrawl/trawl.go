package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"colortrawl/pkg/auth"
	"colortrawl/pkg/config"
	"colortrawl/pkg/logger"
	"colortrawl/pkg/ratelimit"
	"colortrawl/pkg/storage"
	"colortrawl/pkg/trawler"
	"colortrawl/pkg/twitter"
	"colortrawl/pkg/ui"
)

var (
	// Trawl command flags
	outputPath  string
	screenName  string
	maxPages    int
	pageSize    int
	accountName string
)

// trawlCmd represents the trawl command
var trawlCmd = &cobra.Command{
	Use:   "trawl",
	Short: "Fetch the timeline and write the ranked colors",
	Long: `Fetch up to --max-pages pages of the bot's timeline, newest first, then
write every distinct color ranked by retweets plus favourites.

Whatever was collected is written even when a page fails, so the output
file always reflects the latest run. The exit status is non-zero only when
the configuration is invalid or the file cannot be written.`,
	Example: `  # Trawl with defaults, writing dist/colors.json
  colortrawl trawl

  # Write somewhere else
  colortrawl trawl --output ./public/colors.json

  # A quick sample using a stored account
  colortrawl trawl --max-pages 2 --account bot`,
	Args: cobra.NoArgs,
	RunE: runTrawl,
}

func init() {
	rootCmd.AddCommand(trawlCmd)

	for _, cmd := range []*cobra.Command{rootCmd, trawlCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: $COLOR_OUTPUT_DIR or dist/colors.json)")
		cmd.Flags().StringVar(&screenName, "screen-name", "", "timeline to trawl (default: everycolorbot)")
		cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to fetch (default: 100)")
		cmd.Flags().IntVar(&pageSize, "page-size", 0, "tweets per page, at most 200 (default: 200)")
		cmd.Flags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	}
}

// buildFlags collects the flags that were set on the command line
func buildFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if outputPath != "" {
		flags["output"] = outputPath
	}
	if screenName != "" {
		flags["screen-name"] = screenName
	}
	if maxPages > 0 {
		flags["max-pages"] = maxPages
	}
	if pageSize > 0 {
		flags["page-size"] = pageSize
	}
	if level := effectiveLogLevel(); level != "" {
		flags["log-level"] = level
	}
	return flags
}

func runTrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, buildFlags())
	if err != nil {
		return err
	}
	if noColor {
		cfg.Logging.NoColor = true
	}

	cfg.Trawl.ScreenName = twitter.SanitizeScreenName(cfg.Trawl.ScreenName)
	if !twitter.IsValidScreenName(cfg.Trawl.ScreenName) {
		return fmt.Errorf("invalid screen name %q", cfg.Trawl.ScreenName)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Debug("colortrawl starting")

	if err := resolveCredentials(cfg, accountName, log); err != nil {
		return err
	}

	if !verbose && ui.IsInteractive() {
		ui.PrintLogo()
	}
	ui.PrintInfo("Timeline", twitter.GetProfileURL(cfg.Trawl.ScreenName))
	ui.PrintInfo("Output", cfg.Output.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := trawl(ctx, cfg, log, ui.NewProgressDisplay(verbose))
	if err != nil {
		return err
	}

	if result.FetchErr != nil {
		ui.PrintWarning("Collection is partial", result.FetchErr)
	}
	return nil
}

// trawl wires the client, limiter and writer and runs one collection
func trawl(ctx context.Context, cfg *config.Config, log logger.Logger, reporter trawler.Reporter) (*trawler.Result, error) {
	client := twitter.NewClient(cfg.Twitter, log)
	limiter := ratelimit.NewSlidingWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	writer := storage.NewWriter(cfg.Output.Path)

	t := trawler.New(client, limiter, writer, cfg.Trawl, log)
	if reporter != nil {
		t.SetReporter(reporter)
	}

	return t.Run(ctx)
}

// credentialSource is the part of auth.Manager used to fill in credentials
type credentialSource interface {
	Retrieve(name string) (*auth.Account, error)
	RetrieveDefault() (*auth.Account, error)
}

var newCredentialSource = func() (credentialSource, error) {
	return auth.NewManager()
}

// resolveCredentials fills cfg.Twitter from a named account, the loaded
// configuration or the default stored account, in that order. Missing
// credentials only warn, the run then fails on its first page and still
// writes an empty collection.
func resolveCredentials(cfg *config.Config, name string, log logger.Logger) error {
	if name == "" && cfg.Twitter.HasCredentials() {
		log.Debug("using credentials from configuration")
		return nil
	}

	source, err := newCredentialSource()
	if err != nil {
		if name != "" {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		log.WithError(err).Warn("credential manager unavailable")
		source = nil
	}

	var account *auth.Account
	switch {
	case name != "":
		account, err = source.Retrieve(name)
		if err != nil {
			return fmt.Errorf("account %q not found, run 'colortrawl auth list' to see stored accounts: %w", name, err)
		}
	case source != nil:
		account, err = source.RetrieveDefault()
		if err != nil && !errors.Is(err, auth.ErrCredentialsNotFound) {
			log.WithError(err).Warn("failed to read stored credentials")
		}
	}

	if account == nil {
		log.Warn("no API credentials found, requests will be rejected")
		ui.PrintWarning("No API credentials found. Run 'colortrawl auth login' or set the TWITTER_* environment variables")
		return nil
	}

	account.Apply(&cfg.Twitter)
	log.WithField("account", account.Name).Info("using stored credentials")
	ui.PrintInfo("Account", account.Name)
	return nil
}
