package twitter

// Tweet is the subset of a v1.1 status object the trawler reads.
// Requests are made with trim_user=true, so no user object is decoded.
type Tweet struct {
	ID            int64  `json:"id"`
	IDStr         string `json:"id_str"`
	Text          string `json:"text"`
	RetweetCount  int    `json:"retweet_count"`
	FavoriteCount int    `json:"favorite_count"`
	CreatedAt     string `json:"created_at"`
}

// ErrorResponse is the error envelope returned with non-2xx statuses
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

// APIError is a single entry of ErrorResponse
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error codes that change how a failure is classified
const (
	CodeCouldNotAuthenticate = 32
	CodeInvalidToken         = 89
	CodeRateLimitExceeded    = 88
)
