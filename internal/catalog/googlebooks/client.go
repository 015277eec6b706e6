// Package googlebooks is a catalog.Lookup backed by the Google Books v1 API.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"booksync/internal/catalog"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	defaultRateLimit    = 5
	rateBurst           = 10
	defaultMaxRetries   = 3
	defaultInitialDelay = 500 * time.Millisecond
	maxDelay            = 8 * time.Second
	maxErrorBody        = 4 << 10
)

// Options configures a Client. Zero values fall back to defaults; a zero
// MaxRetries disables retries and a negative one selects the default.
type Options struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RateLimit    int
	InitialDelay time.Duration
	Logger       *slog.Logger
}

// Client handles API requests with rate limiting and retry logic.
type Client struct {
	baseURL      string
	apiKey       string
	maxRetries   int
	initialDelay time.Duration
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	logger       *slog.Logger
}

var _ catalog.Lookup = (*Client)(nil)

// StatusError is a non-retryable, non-200 answer from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("google books: HTTP %d: %s", e.StatusCode, e.Message)
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		maxRetries:   opts.MaxRetries,
		initialDelay: opts.InitialDelay,
		rateLimiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), rateBurst),
		logger:       opts.Logger,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// LookupByID fetches one volume. A 4xx answer is reported as catalog.ErrNotFound.
func (c *Client) LookupByID(ctx context.Context, id string) (*catalog.Volume, error) {
	if strings.TrimSpace(id) == "" {
		return nil, catalog.ErrNotFound
	}

	body, err := c.doRequest(ctx, "/volumes/"+url.PathEscape(id), url.Values{})
	if err != nil {
		// Only a definitive 4xx means the volume does not exist; an exhausted 429 stays unavailable.
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !shouldRetry(statusErr.StatusCode) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
		}
		return nil, err
	}

	var resp VolumeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse volume: %w", catalog.ErrUnavailable, err)
	}
	return toVolume(id, &resp), nil
}

// Search proxies a free-text query and returns the raw response body.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := c.doRequest(ctx, "/volumes", params)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
		}
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: search returned invalid JSON", catalog.ErrUnavailable)
	}
	return json.RawMessage(body), nil
}

func toVolume(id string, resp *VolumeResponse) *catalog.Volume {
	v := &catalog.Volume{
		ID:      resp.ID,
		Title:   resp.VolumeInfo.Title,
		Authors: resp.VolumeInfo.Authors,
	}
	if v.ID == "" {
		v.ID = id
	}
	if links := resp.VolumeInfo.ImageLinks; links != nil {
		v.ImageURL = links.Thumbnail
		if v.ImageURL == "" {
			v.ImageURL = links.SmallThumbnail
		}
	}
	return v
}

// doRequest performs a GET with rate limiting and retry logic.
// Network errors, 429 and 5xx are retried; exhausting retries yields catalog.ErrUnavailable.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", catalog.ErrUnavailable, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "booksync/1.0")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			if attempt < c.maxRetries {
				c.logger.Warn("google_books_request_failed",
					"endpoint", endpoint, "attempt", attempt+1, "retry_in", delay, "error", err)
				if !sleep(ctx, delay) {
					break
				}
				delay = minDuration(delay*2, maxDelay)
				continue
			}
			break
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			if readErr != nil {
				return nil, fmt.Errorf("%w: read body: %w", catalog.ErrUnavailable, readErr)
			}
			return body, nil
		}

		message := errorMessage(body)
		if !shouldRetry(resp.StatusCode) {
			return nil, &StatusError{StatusCode: resp.StatusCode, Message: message}
		}

		lastErr = &StatusError{StatusCode: resp.StatusCode, Message: message}
		if attempt >= c.maxRetries {
			break
		}
		if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter > 0 {
			delay = minDuration(retryAfter, maxDelay)
		}
		c.logger.Warn("google_books_retry",
			"endpoint", endpoint, "status", resp.StatusCode, "attempt", attempt+1, "retry_in", delay)
		if !sleep(ctx, delay) {
			break
		}
		delay = minDuration(delay*2, maxDelay)
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUnavailable, ctx.Err())
	}
	return nil, fmt.Errorf("%w: request failed after %d attempts: %w", catalog.ErrUnavailable, c.maxRetries+1, lastErr)
}

// errorMessage extracts Google's error message, falling back to a truncated body.
func errorMessage(body []byte) string {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}

// shouldRetry determines if an HTTP status code warrants a retry
func shouldRetry(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// sleep waits for d or until ctx is done, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
