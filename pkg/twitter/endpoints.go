package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the v1.1 REST API root
	DefaultBaseURL = "https://api.twitter.com/1.1"

	// UserTimelineEndpoint returns the most recent statuses of one user
	UserTimelineEndpoint = "/statuses/user_timeline.json"

	// MaxTimelineCount is the largest page the timeline endpoint serves
	MaxTimelineCount = 200
)

// TimelineParams describes one user_timeline page request
type TimelineParams struct {
	ScreenName string
	Count      int
	// MaxID is inclusive; empty means start from the newest status
	MaxID string
}

// Values encodes the params with the fixed trawl filters: no user objects,
// no retweets, no replies
func (p TimelineParams) Values() url.Values {
	count := p.Count
	if count <= 0 || count > MaxTimelineCount {
		count = MaxTimelineCount
	}

	v := url.Values{}
	v.Set("count", strconv.Itoa(count))
	v.Set("trim_user", "true")
	v.Set("include_rts", "false")
	v.Set("exclude_replies", "true")
	v.Set("screen_name", p.ScreenName)
	if p.MaxID != "" {
		v.Set("max_id", p.MaxID)
	}
	return v
}

// UserTimelineURL builds the full request URL for a timeline page
func UserTimelineURL(baseURL string, p TimelineParams) string {
	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), UserTimelineEndpoint, p.Values().Encode())
}

// GetProfileURL returns the public profile URL for a screen name
func GetProfileURL(screenName string) string {
	if screenName == "" {
		return ""
	}
	return "https://twitter.com/" + screenName
}

// IsValidScreenName checks the 1-15 character [A-Za-z0-9_] rule
func IsValidScreenName(name string) bool {
	if name == "" || len(name) > 15 {
		return false
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeScreenName strips a leading @ and trailing slashes or spaces
func SanitizeScreenName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "@")
	return strings.TrimRight(name, "/ ")
}
