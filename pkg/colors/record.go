package colors

import (
	"strings"

	"colortrawl/pkg/twitter"
)

// hexPrefix is how the source account writes colors; hexMarker is how they
// are stored
const (
	hexPrefix = "0x"
	hexMarker = "#"
)

// Record is the flattened color and engagement data of one post
type Record struct {
	ID           string `json:"id"`
	Color        string `json:"color"`
	Retweets     int    `json:"retweets"`
	Favourites   int    `json:"favourites"`
	Interactions int    `json:"interactions"`
}

// NewRecord builds a Record, deriving Interactions from the two counters
func NewRecord(id, color string, retweets, favourites int) Record {
	return Record{
		ID:           id,
		Color:        color,
		Retweets:     retweets,
		Favourites:   favourites,
		Interactions: retweets + favourites,
	}
}

// ParseColor takes the first whitespace-delimited token of text and swaps
// its first "0x" for "#". The token is not validated.
func ParseColor(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return strings.Replace(fields[0], hexPrefix, hexMarker, 1)
}

// FromTweet maps one timeline status to a Record
func FromTweet(t twitter.Tweet) Record {
	return NewRecord(t.IDStr, ParseColor(t.Text), t.RetweetCount, t.FavoriteCount)
}

// FromTweets maps a page of statuses, preserving order
func FromTweets(tweets []twitter.Tweet) []Record {
	records := make([]Record, 0, len(tweets))
	for _, t := range tweets {
		records = append(records, FromTweet(t))
	}
	return records
}
