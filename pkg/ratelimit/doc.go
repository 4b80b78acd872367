// Package ratelimit paces API requests.
//
// SlidingWindow tracks request times within a moving window, which matches
// how the Twitter API counts requests (900 user_timeline calls per 15
// minutes). A sequential trawl of 100 pages never reaches that limit, so
// Wait normally returns immediately; it only blocks when the window is
// exhausted, and it gives up as soon as the context is cancelled.
//
// Usage:
//
//	limiter := ratelimit.NewSlidingWindow(900, 15*time.Minute)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//	// Proceed with request
package ratelimit
