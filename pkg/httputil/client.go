package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// ErrRateLimited is returned after the provider answers HTTP 429 and
// the cooldown window has elapsed. The client never retries on its own;
// callers own the retry budget so per-ticker limits stay enforceable.
var ErrRateLimited = errors.New("provider rate limited")

// TransportError wraps a failure that produced no HTTP response at all
// (connection refused, DNS failure, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a non-200, non-429 status from the provider.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d", e.Status)
}

// Client is the shared HTTP transport for all provider clients. It
// paces requests with a token-bucket limiter and maps transport and
// status outcomes to the error taxonomy above.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger

	// cooldown is the blocking wait applied after a 429 before the
	// call returns ErrRateLimited. It blocks only the calling
	// goroutine, never the rest of the worker pool.
	cooldown time.Duration
}

// New creates a Client. requestsPerSecond bounds the sustained request
// rate; cooldown is the post-429 wait.
func New(log *logger.Logger, requestsPerSecond float64, cooldown time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:     log.WithField("module", "httputil"),
		cooldown:   cooldown,
	}
}

// WithTimeout overrides the per-request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// GetJSON performs a paced GET and returns the raw body on HTTP 200.
// Outcomes map onto the taxonomy: *TransportError when no response was
// received, ErrRateLimited after a 429 (post cooldown), *UpstreamError
// for any other non-200 status.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		return body, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WithField("cooldown", c.cooldown.String()).Warn("Rate limited by provider, cooling down")
		if err := c.sleep(ctx); err != nil {
			return nil, &TransportError{Err: err}
		}
		return nil, ErrRateLimited

	default:
		return nil, &UpstreamError{Status: resp.StatusCode}
	}
}

// sleep waits out the cooldown unless the context is cancelled first.
func (c *Client) sleep(ctx context.Context) error {
	if c.cooldown <= 0 {
		return nil
	}
	timer := time.NewTimer(c.cooldown)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
