package trawler

import (
	"context"

	"colortrawl/pkg/colors"
	"colortrawl/pkg/twitter"
)

// TimelineClient defines the API operation the page loop needs
type TimelineClient interface {
	UserTimeline(ctx context.Context, params twitter.TimelineParams) ([]twitter.Tweet, error)
}

// Saver persists the final ranked collection
type Saver interface {
	Save(records []colors.Record) error
	Path() string
}

// Reporter receives progress events for terminal output
type Reporter interface {
	StartTrawl(screenName string, maxPages int)
	PageFetched(page, added, total int)
	TrawlFailed(err error)
	TrawlComplete(written int, path string)
}
