package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"

	"colortrawl/pkg/config"
	errs "colortrawl/pkg/errors"
	"colortrawl/pkg/logger"
)

// Client is a thin OAuth 1.0a client for the v1.1 REST API
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a client signing every request with the configured
// consumer and access credentials
func NewClient(cfg config.TwitterConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)

	httpClient := oauthConfig.Client(context.Background(), token)
	httpClient.Timeout = cfg.Timeout

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "colortrawl/1.0",
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		// Cancellation keeps its identity so callers can errors.Is it
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctxErr)
		}
		return nil, errs.New(errs.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response into target
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.New(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := c.checkResponseStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errs.New(errs.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// checkResponseStatus turns a non-2xx response into a typed error carrying
// the first message of the API's error envelope
func (c *Client) checkResponseStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	errType := errs.TypeForStatus(statusCode)
	message := http.StatusText(statusCode)

	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		message = first.Message
		switch first.Code {
		case CodeRateLimitExceeded:
			errType = errs.ErrorTypeRateLimit
		case CodeCouldNotAuthenticate, CodeInvalidToken:
			errType = errs.ErrorTypeAuth
		}
	}

	return &errs.Error{Type: errType, Message: message, Code: statusCode}
}

// UserTimeline fetches one page of a user's timeline
func (c *Client) UserTimeline(ctx context.Context, params TimelineParams) ([]Tweet, error) {
	url := UserTimelineURL(c.baseURL, params)

	c.logger.DebugWithFields("fetching user timeline", map[string]interface{}{
		"screen_name": params.ScreenName,
		"max_id":      params.MaxID,
		"count":       params.Count,
	})

	var tweets []Tweet
	if err := c.GetJSON(ctx, url, &tweets); err != nil {
		return nil, err
	}

	return tweets, nil
}
