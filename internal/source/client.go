package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps upstream payload reads. Transparency APIs page their
// answers well below this.
const maxResponseBytes = 8 << 20

// Client is the paced HTTP client adapter variants share. One Client per
// adapter: the connection pool is reused across requests and released on
// shutdown, and the rate.Limiter spreads outbound calls so a burst of user
// queries cannot hammer one upstream.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a paced client. rps <= 0 disables pacing.
func NewClient(httpClient *http.Client, rps float64) *Client {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, limiter: limiter}
}

// GetJSON performs a paced GET and returns the response body, translating
// transport and status failures into the adapter error taxonomy.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyCtxErr(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := classifyCtxErr(err); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", ErrUpstreamRateLimited, resp.Status)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %s", ErrMalformedResponse, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstreamUnavailable, err)
	}
	return body, nil
}

// CloseIdleConnections releases pooled connections. Called from the
// composition root on shutdown.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// classifyCtxErr maps context cancellation/deadline errors onto ErrTimeout,
// returning nil for non-context errors.
func classifyCtxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	// http.Client wraps the context error inside an url.Error.
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return nil
}
