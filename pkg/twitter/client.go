// Package twitter counts recent mentions of a keyword via the Twitter
// recent-search API, feeding the competitor buzz score.
package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.twitter.com/2"

// Client looks up recent mention counts.
type Client interface {
	CountMentions(ctx context.Context, keyword string) (int, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	bearerToken string
	baseURL     string
	http        *http.Client
}

// NewClient creates a Twitter API client with the given bearer token.
func NewClient(bearerToken string, opts ...Option) Client {
	c := &httpClient{
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// CountMentions returns how many tweets from the recent-search window
// mention the keyword, capped at the API page size of 100.
func (c *httpClient) CountMentions(ctx context.Context, keyword string) (int, error) {
	endpoint := c.baseURL + "/tweets/search/recent?query=" + url.QueryEscape(keyword) + "&max_results=100"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, eris.Wrap(err, "twitter: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "twitter: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, eris.Wrap(err, "twitter: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("twitter: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, eris.Wrap(err, "twitter: unmarshal response")
	}

	return result.Meta.ResultCount, nil
}
