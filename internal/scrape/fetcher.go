// Package scrape fetches competitor pages for change detection.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/internal/resilience"
)

// maxBodyBytes bounds how much of a page is read. Changelog pages are
// small; anything past this is noise.
const maxBodyBytes = 2 << 20

// FetchResult is the outcome of fetching one competitor's page. OK is
// false when the page could not be retrieved; Content is then empty.
type FetchResult struct {
	Content string
	OK      bool
	URLUsed string
}

// Fetcher retrieves the raw HTML of a competitor's preferred page. Any
// transport or HTTP error is logged and degraded to FetchResult.OK ==
// false; a single unreachable site must never abort a batch, so Fetch
// has no error return.
type Fetcher struct {
	client *http.Client
	retry  resilience.RetryConfig
}

// NewFetcher creates a Fetcher with default timeouts.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		retry: resilience.RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: time.Second,
			OnRetry:        resilience.RetryLogger("fetcher", "get"),
		},
	}
}

// Fetch GETs the competitor's changelog URL when set, else the website.
func (f *Fetcher) Fetch(ctx context.Context, competitor model.Competitor) FetchResult {
	url := competitor.PreferredURL()

	content, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (string, error) {
		return f.get(ctx, url)
	})
	if err != nil {
		zap.L().Warn("fetcher: fetch failed",
			zap.String("competitor", competitor.Name),
			zap.String("url", url),
			zap.Error(err),
		)
		return FetchResult{URLUsed: url}
	}

	return FetchResult{Content: content, OK: true, URLUsed: url}
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SpySageBot/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: get")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read body")
	}

	if resp.StatusCode >= 400 {
		err := eris.Errorf("fetcher: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	return string(body), nil
}
