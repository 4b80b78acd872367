package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const barWidth = 20

// ProgressDisplay renders page progress for a trawl. On a terminal it
// redraws a single line, otherwise it prints one line per page.
type ProgressDisplay struct {
	mu         sync.Mutex
	screenName string
	maxPages   int
	page       int
	total      int
	startTime  time.Time
	failed     error
	isDebug    bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// StartTrawl resets the display for a new run
func (p *ProgressDisplay) StartTrawl(screenName string, maxPages int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.screenName = screenName
	p.maxPages = maxPages
	p.page = 0
	p.total = 0
	p.failed = nil
	p.startTime = time.Now()

	printf("%s Trawling @%s (up to %d pages)\n", Magenta("→"), p.screenName, maxPages)
}

// PageFetched records a merged page
func (p *ProgressDisplay) PageFetched(page, added, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = page
	p.total = total

	if p.isDebug || !IsInteractive() {
		printf("%s page %d • +%d • %d colors\n", Dim("•"), page, added, total)
		return
	}
	printf("\r%s\r%s", strings.Repeat(" ", 80), p.progressLine())
}

// TrawlFailed shows why the page loop stopped early
func (p *ProgressDisplay) TrawlFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed = err
	if p.page > 0 && IsInteractive() && !p.isDebug {
		printf("\n")
	}
	PrintError("Trawl stopped early", err)
}

// TrawlComplete prints the run summary
func (p *ProgressDisplay) TrawlComplete(written int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failed == nil && p.page > 0 && IsInteractive() && !p.isDebug {
		printf("\n")
	}

	mark := Green("✓")
	if p.failed != nil {
		mark = Yellow("⚠")
	}

	printf("\n%s Wrote %d colors to %s\n", mark, written, path)
	printf("  %s %d pages in %s\n", Dim("•"), p.page, formatDuration(time.Since(p.startTime)))
}

func (p *ProgressDisplay) progressLine() string {
	progress := 0.0
	if p.maxPages > 0 {
		progress = float64(p.page) / float64(p.maxPages)
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	return fmt.Sprintf("%s [%s] page %d/%d • %d colors • %s",
		Cyan("@"+p.screenName),
		bar,
		p.page,
		p.maxPages,
		p.total,
		formatDuration(time.Since(p.startTime)),
	)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
