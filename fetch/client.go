// Package fetch performs the HTTP GETs of a crawl. Every request waits on a
// per-host minimum-interval limiter and carries the caller's context.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pevans/archetyper/logger"
)

// ErrStatus marks a response with a non-2xx status.
var ErrStatus = errors.New("unexpected HTTP status")

// FetchError describes a failed GET. StatusCode is zero when no response
// arrived (network error, timeout, cancellation).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Getter fetches the body of a URL.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// Options configures a Client.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	MinInterval time.Duration
}

// DefaultOptions returns a 10 second timeout and no politeness delay.
func DefaultOptions() Options {
	return Options{
		Timeout:   10 * time.Second,
		UserAgent: "archetyper/1.0 (character wiki scraper)",
	}
}

// Client is a rate-limited HTTP client.
type Client struct {
	http    *resty.Client
	limiter *HostLimiter
}

// New creates a client. Requests to the same host are spaced at least
// opts.MinInterval apart.
func New(opts Options, log logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions().UserAgent
	}

	limiter := NewHostLimiter(opts.MinInterval)

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("User-Agent", opts.UserAgent)
	httpClient.SetLogger(restyLogger{log: log})
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return limiter.Wait(req.Context(), req.URL)
	})

	return &Client{http: httpClient, limiter: limiter}
}

// Get fetches rawURL and returns the body. Any non-2xx status is an error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode(), Err: ErrStatus}
	}

	return resp.Body(), nil
}

// restyLogger routes resty's internal messages into our logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...))
}
