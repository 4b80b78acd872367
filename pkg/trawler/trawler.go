package trawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"colortrawl/pkg/colors"
	"colortrawl/pkg/config"
	errs "colortrawl/pkg/errors"
	"colortrawl/pkg/logger"
	"colortrawl/pkg/ratelimit"
	"colortrawl/pkg/twitter"
)

// Trawler orchestrates fetch, process and save for one timeline
type Trawler struct {
	client   TimelineClient
	limiter  ratelimit.Limiter
	saver    Saver
	config   config.TrawlConfig
	logger   logger.Logger
	reporter Reporter
}

// Result summarizes one run
type Result struct {
	RunID string
	// Pages is the number of pages fetched successfully
	Pages int
	// Fetched counts records before deduplication
	Fetched int
	// Written counts records in the output file
	Written   int
	Path      string
	Exhausted bool
	Duration  time.Duration
	// FetchErr is the error that aborted the page loop, if any
	FetchErr error
}

// FetchStats describes how the page loop ended
type FetchStats struct {
	Pages     int
	Exhausted bool
}

// New creates a Trawler. limiter may be nil to disable pacing.
func New(client TimelineClient, limiter ratelimit.Limiter, saver Saver, cfg config.TrawlConfig, log logger.Logger) *Trawler {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Trawler{
		client:  client,
		limiter: limiter,
		saver:   saver,
		config:  cfg,
		logger:  log,
	}
}

// SetReporter sets the progress reporter for the trawl
func (t *Trawler) SetReporter(r Reporter) {
	t.reporter = r
}

// Run fetches, processes and saves. The collection is always saved, so the
// returned error is non-nil only when saving fails. A fetch failure is
// reported through Result.FetchErr.
func (t *Trawler) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Path:  t.saver.Path(),
	}

	log := t.logger.WithFields(map[string]interface{}{
		"run_id":      result.RunID,
		"screen_name": t.config.ScreenName,
	})

	log.InfoWithFields("trawling tweets", map[string]interface{}{
		"max_pages": t.config.MaxPages,
		"page_size": t.config.PageSize,
	})
	if t.reporter != nil {
		t.reporter.StartTrawl(t.config.ScreenName, t.config.MaxPages)
	}

	collected, stats, fetchErr := t.fetch(ctx, log)
	result.Pages = stats.Pages
	result.Exhausted = stats.Exhausted
	result.Fetched = len(collected)

	if fetchErr != nil {
		result.FetchErr = fetchErr
		log.WithError(fetchErr).ErrorWithFields("trawl aborted", map[string]interface{}{
			"message":    errs.MessageOf(fetchErr),
			"error_type": string(errs.TypeOf(fetchErr)),
			"pages":      stats.Pages,
			"collected":  len(collected),
		})
		if t.reporter != nil {
			t.reporter.TrawlFailed(fetchErr)
		}
	}

	ranked := colors.Process(collected)
	result.Written = len(ranked)

	log.InfoWithFields("trawling complete", map[string]interface{}{
		"found": len(ranked),
		"pages": stats.Pages,
	})
	log.InfoWithFields("saving colors", map[string]interface{}{
		"path": result.Path,
	})

	if err := t.saver.Save(ranked); err != nil {
		log.WithError(err).Error("failed to save colors")
		return result, fmt.Errorf("failed to save colors: %w", err)
	}

	result.Duration = time.Since(start)
	if t.reporter != nil {
		t.reporter.TrawlComplete(result.Written, result.Path)
	}

	return result, nil
}

// Fetch walks the timeline and returns every record collected in page
// order, duplicates included. On error the records of all pages fetched
// before the failing one are returned along with it.
func (t *Trawler) Fetch(ctx context.Context) ([]colors.Record, FetchStats, error) {
	return t.fetch(ctx, t.logger)
}

func (t *Trawler) fetch(ctx context.Context, log logger.Logger) ([]colors.Record, FetchStats, error) {
	var (
		collection []colors.Record
		stats      FetchStats
		seen       = make(map[string]struct{})
	)

	params := twitter.TimelineParams{
		ScreenName: t.config.ScreenName,
		Count:      t.config.PageSize,
	}

	for page := 1; page <= t.config.MaxPages; page++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return collection, stats, fmt.Errorf("page %d: waiting for rate limiter: %w", page, err)
			}
		}

		tweets, err := t.client.UserTimeline(ctx, params)
		if err != nil {
			return collection, stats, fmt.Errorf("page %d: %w", page, err)
		}

		records := colors.FromTweets(tweets)
		added := 0
		for _, r := range records {
			if _, ok := seen[r.ID]; !ok {
				seen[r.ID] = struct{}{}
				added++
			}
		}

		collection = append(collection, records...)
		stats.Pages = page

		logger.LogPage(log, t.config.ScreenName, page, t.config.MaxPages, len(tweets), len(collection))
		if t.reporter != nil {
			t.reporter.PageFetched(page, added, len(seen))
		}

		// max_id is inclusive, so a page holding only the cursor tweet
		// means the timeline is exhausted
		if added == 0 {
			stats.Exhausted = true
			log.DebugWithFields("timeline exhausted", map[string]interface{}{
				"page": page,
			})
			break
		}

		params.MaxID = collection[len(collection)-1].ID
	}

	return collection, stats, nil
}
