// Package twitter provides a minimal client for the Twitter v1.1 REST API.
//
// Only the user_timeline endpoint is wrapped. Requests are signed with
// OAuth 1.0a user context credentials, and non-2xx responses come back as
// *errors.Error values whose Message is the first entry of the API's
// {"errors":[...]} envelope.
//
// Example usage:
//
//	client := twitter.NewClient(cfg.Twitter, log)
//
//	tweets, err := client.UserTimeline(ctx, twitter.TimelineParams{
//	    ScreenName: "everycolorbot",
//	    Count:      200,
//	})
//	if err != nil {
//	    var apiErr *errors.Error
//	    if stderrors.As(err, &apiErr) && apiErr.Type == errors.ErrorTypeRateLimit {
//	        // back off
//	    }
//	}
package twitter
