package trawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colortrawl/pkg/colors"
	"colortrawl/pkg/config"
	errs "colortrawl/pkg/errors"
	"colortrawl/pkg/logger"
	"colortrawl/pkg/ratelimit"
	"colortrawl/pkg/storage"
	"colortrawl/pkg/twitter"
)

// fakeTimeline serves a descending run of ids, honoring max_id inclusively
type fakeTimeline struct {
	mu     sync.Mutex
	newest int64
	oldest int64
	failOn int
	err    error
	calls  []twitter.TimelineParams
}

func (f *fakeTimeline) UserTimeline(ctx context.Context, p twitter.TimelineParams) ([]twitter.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, p)
	if f.failOn > 0 && len(f.calls) == f.failOn {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := f.newest
	if p.MaxID != "" {
		id, err := strconv.ParseInt(p.MaxID, 10, 64)
		if err != nil {
			return nil, err
		}
		start = id
	}

	var tweets []twitter.Tweet
	for id := start; id >= f.oldest && len(tweets) < p.Count; id-- {
		tweets = append(tweets, twitter.Tweet{
			ID:            id,
			IDStr:         strconv.FormatInt(id, 10),
			Text:          fmt.Sprintf("0x%06X color", id),
			RetweetCount:  int(id % 7),
			FavoriteCount: int(id % 5),
		})
	}
	return tweets, nil
}

func (f *fakeTimeline) params() []twitter.TimelineParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]twitter.TimelineParams(nil), f.calls...)
}

type memorySaver struct {
	saved   []colors.Record
	calls   int
	failErr error
}

func (m *memorySaver) Save(records []colors.Record) error {
	m.calls++
	if m.failErr != nil {
		return m.failErr
	}
	m.saved = records
	return nil
}

func (m *memorySaver) Path() string { return "memory" }

type recordingReporter struct {
	started  bool
	pages    []int
	failed   error
	complete int
}

func (r *recordingReporter) StartTrawl(screenName string, maxPages int) { r.started = true }
func (r *recordingReporter) PageFetched(page, added, total int)      { r.pages = append(r.pages, page) }
func (r *recordingReporter) TrawlFailed(err error)                   { r.failed = err }
func (r *recordingReporter) TrawlComplete(written int, path string)  { r.complete = written }

func trawlConfig(maxPages, pageSize int) config.TrawlConfig {
	return config.TrawlConfig{
		ScreenName: "everycolorbot",
		MaxPages:   maxPages,
		PageSize:   pageSize,
	}
}

func TestFetchWalksCursor(t *testing.T) {
	client := &fakeTimeline{newest: 1000, oldest: 1}
	tr := New(client, nil, &memorySaver{}, trawlConfig(3, 10), logger.NewNopLogger())

	records, stats, err := tr.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Pages)
	assert.False(t, stats.Exhausted)
	// the cursor record repeats at the head of every later page
	assert.Len(t, records, 30)

	calls := client.params()
	require.Len(t, calls, 3)
	assert.Empty(t, calls[0].MaxID)
	assert.Equal(t, "991", calls[1].MaxID)
	assert.Equal(t, "982", calls[2].MaxID)
	for _, c := range calls {
		assert.Equal(t, "everycolorbot", c.ScreenName)
		assert.Equal(t, 10, c.Count)
	}
}

func TestFetchStopsWhenExhausted(t *testing.T) {
	client := &fakeTimeline{newest: 25, oldest: 1}
	tr := New(client, nil, &memorySaver{}, trawlConfig(100, 10), logger.NewNopLogger())

	records, stats, err := tr.Fetch(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.Exhausted)
	assert.Less(t, stats.Pages, 100)
	assert.Len(t, colors.Dedupe(records), 25)
}

func TestFetchEmptyTimeline(t *testing.T) {
	client := &fakeTimeline{newest: 0, oldest: 1}
	tr := New(client, nil, &memorySaver{}, trawlConfig(100, 200), logger.NewNopLogger())

	records, stats, err := tr.Fetch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, 1, stats.Pages)
	assert.True(t, stats.Exhausted)
}

func TestRunWritesPartialResultsOnFailure(t *testing.T) {
	client := &fakeTimeline{
		newest: 5000,
		oldest: 1,
		failOn: 5,
		err:    errs.New(errs.ErrorTypeRateLimit, 429, "Rate limit exceeded"),
	}
	saver := &memorySaver{}
	log := logger.NewTestLogger()
	reporter := &recordingReporter{}

	tr := New(client, nil, saver, trawlConfig(100, 200), log)
	tr.SetReporter(reporter)

	result, err := tr.Run(context.Background())
	require.NoError(t, err)

	require.Error(t, result.FetchErr)
	assert.Equal(t, errs.ErrorTypeRateLimit, errs.TypeOf(result.FetchErr))
	assert.Contains(t, result.FetchErr.Error(), "page 5")
	assert.Equal(t, 4, result.Pages)
	assert.Equal(t, 800, result.Fetched)

	// pages two to four each repeat their cursor record
	assert.Equal(t, 797, result.Written)
	assert.Len(t, saver.saved, 797)
	assert.Equal(t, 1, saver.calls)

	msgs := log.GetMessagesByLevel("ERROR")
	require.NotEmpty(t, msgs)
	assert.Equal(t, "trawl aborted", msgs[0].Message)
	assert.Equal(t, "Rate limit exceeded", msgs[0].Fields["message"])
	assert.NotEmpty(t, msgs[0].Fields["run_id"])

	assert.True(t, reporter.started)
	assert.Equal(t, []int{1, 2, 3, 4}, reporter.pages)
	assert.Equal(t, result.FetchErr, reporter.failed)
	assert.Equal(t, 797, reporter.complete)
}

func TestRunFirstPageFailureWritesEmpty(t *testing.T) {
	client := &fakeTimeline{
		newest: 10,
		oldest: 1,
		failOn: 1,
		err:    errs.New(errs.ErrorTypeAuth, 401, "Could not authenticate you."),
	}
	saver := &memorySaver{}

	result, err := New(client, nil, saver, trawlConfig(100, 200), logger.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)

	assert.Error(t, result.FetchErr)
	assert.Equal(t, 0, result.Pages)
	assert.NotNil(t, saver.saved)
	assert.Empty(t, saver.saved)
}

func TestRunOutputProperties(t *testing.T) {
	client := &fakeTimeline{newest: 700, oldest: 1}
	saver := &memorySaver{}

	result, err := New(client, nil, saver, trawlConfig(100, 50), logger.NewNopLogger()).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, result.FetchErr)
	assert.True(t, result.Exhausted)

	require.Len(t, saver.saved, 700)
	seen := make(map[string]bool)
	for i, r := range saver.saved {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
		assert.Equal(t, r.Retweets+r.Favourites, r.Interactions)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, r.Color)
		if i > 0 {
			assert.GreaterOrEqual(t, saver.saved[i-1].Interactions, r.Interactions)
		}
	}
}

func TestRunSaveFailure(t *testing.T) {
	client := &fakeTimeline{newest: 3, oldest: 1}
	saver := &memorySaver{failErr: errors.New("disk full")}

	result, err := New(client, nil, saver, trawlConfig(1, 200), logger.NewNopLogger()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Written)
}

func TestRunCancelledStillSaves(t *testing.T) {
	client := &fakeTimeline{newest: 1000, oldest: 1}
	saver := &memorySaver{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(client, nil, saver, trawlConfig(100, 200), logger.NewNopLogger()).Run(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, result.FetchErr, context.Canceled)
	assert.Equal(t, 1, saver.calls)
	assert.Empty(t, saver.saved)
}

func TestRunLimiterCancellation(t *testing.T) {
	client := &fakeTimeline{newest: 1000, oldest: 1}
	saver := &memorySaver{}
	limiter := ratelimit.NewSlidingWindow(1, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := New(client, limiter, saver, trawlConfig(5, 10), logger.NewNopLogger()).Run(ctx)
	require.NoError(t, err)

	// the first page passes, the second blocks until the deadline
	assert.Equal(t, 1, result.Pages)
	assert.ErrorIs(t, result.FetchErr, context.DeadlineExceeded)
	assert.Len(t, saver.saved, 10)
}

// newMockAPI serves the user timeline endpoint over HTTP
func newMockAPI(t *testing.T, total int64, failAfter int32) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc(twitter.UserTimelineEndpoint, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if failAfter > 0 && n > failAfter {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`)
			return
		}

		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("trim_user"))
		assert.Equal(t, "false", q.Get("include_rts"))
		assert.Equal(t, "true", q.Get("exclude_replies"))

		count, _ := strconv.Atoi(q.Get("count"))
		start := total
		if maxID := q.Get("max_id"); maxID != "" {
			start, _ = strconv.ParseInt(maxID, 10, 64)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, "[")
		written := 0
		for id := start; id >= 1 && written < count; id-- {
			if written > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":%d,"id_str":"%d","text":"0x%06x tweet","retweet_count":%d,"favorite_count":%d}`,
				id, id, id, id%3, id%4)
			written++
		}
		fmt.Fprint(w, "]")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &calls
}

func newHTTPTrawler(t *testing.T, serverURL, outPath string, cfg config.TrawlConfig) *Trawler {
	t.Helper()

	client := twitter.NewClient(config.TwitterConfig{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
		BaseURL:           serverURL,
		Timeout:           5 * time.Second,
	}, logger.NewNopLogger())

	return New(client, ratelimit.NewSlidingWindow(100, time.Minute), storage.NewWriter(outPath), cfg, logger.NewNopLogger())
}

func TestRunEndToEnd(t *testing.T) {
	server, calls := newMockAPI(t, 450, 0)
	out := filepath.Join(t.TempDir(), "dist", "colors.json")

	result, err := newHTTPTrawler(t, server.URL, out, trawlConfig(100, 200)).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, result.FetchErr)

	// 200, 200 (1 repeat), 52 (1 repeat), then a lone cursor page
	assert.Equal(t, int32(4), atomic.LoadInt32(calls))
	assert.Equal(t, 450, result.Written)

	saved, err := storage.NewWriter(out).Load()
	require.NoError(t, err)
	assert.Len(t, saved, 450)
	assert.Equal(t, "#", saved[0].Color[:1])
}

func TestRunEndToEndPartialAndOverwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "colors.json")

	full, _ := newMockAPI(t, 300, 0)
	_, err := newHTTPTrawler(t, full.URL, out, trawlConfig(100, 100)).Run(context.Background())
	require.NoError(t, err)

	saved, err := storage.NewWriter(out).Load()
	require.NoError(t, err)
	assert.Len(t, saved, 300)

	partial, _ := newMockAPI(t, 300, 1)
	result, err := newHTTPTrawler(t, partial.URL, out, trawlConfig(100, 100)).Run(context.Background())
	require.NoError(t, err)
	require.Error(t, result.FetchErr)
	assert.Equal(t, errs.ErrorTypeRateLimit, errs.TypeOf(result.FetchErr))

	saved, err = storage.NewWriter(out).Load()
	require.NoError(t, err)
	assert.Len(t, saved, 100, "second run replaces the first file")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}
