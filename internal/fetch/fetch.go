// Package fetch provides the outbound HTTP capability the readers and the
// content extractor consume. Everything network-facing goes through a
// Fetcher so tests can substitute canned responses, and so pacing and retry
// live in exactly one place.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"readingroundup/internal/logger"
	"readingroundup/internal/ratelimit"
	"readingroundup/internal/retry"
)

// Response is the raw outcome of a fetch. Body is fully read; callers decide
// how to decode it.
type Response struct {
	StatusCode int
	Body       []byte
}

// Fetcher is the abstract fetch capability. Implementations return an error
// for transport failures; non-200 statuses are returned in the Response so
// callers can distinguish "blocked" from "unreachable".
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*Response, error)
}

// Rotating desktop User-Agent headers reduce the chance of being served a
// bot-detection page. This is best effort, not evasion.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
}

// Client is the production Fetcher: paced, retried, with header rotation.
type Client struct {
	httpClient *http.Client
	pacer      ratelimit.Pacer
	retry      retry.Policy
	maxBody    int64
}

// NewClient builds a Client. A nil pacer disables pacing.
func NewClient(pacer ratelimit.Pacer, retryPolicy retry.Policy) *Client {
	if pacer == nil {
		pacer = &ratelimit.NopPacer{}
	}
	return &Client{
		httpClient: &http.Client{},
		pacer:      pacer,
		retry:      retryPolicy,
		maxBody:    10 << 20, // 10 MiB cap; sitemaps and article pages are far smaller
	}
}

func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *Response
	err := retry.Do(ctx, c.retry, func() error {
		var fErr error
		resp, fErr = c.fetchOnce(ctx, url, timeout)
		return fErr
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		logger.Debug("non-200 response", "url", url, "status", resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body %s: %w", url, err)
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
}
