// Package trawler runs the color collection pipeline.
//
// A Trawler walks a user's timeline one page at a time, newest first, using
// the id of the last collected record as the inclusive max_id cursor for the
// next page. It stops at the configured page bound, when a page brings no
// unseen ids, or at the first error. Whatever was collected is then
// deduplicated, ranked and saved, even when the walk failed part way.
//
// Usage:
//
//	t := trawler.New(client, limiter, storage.NewWriter(path), cfg.Trawl, log)
//	result, err := t.Run(ctx)
//	if err != nil {
//	    // only a failed save ends up here
//	}
//	if result.FetchErr != nil {
//	    // partial output was written
//	}
package trawler
