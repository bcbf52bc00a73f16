// Package slack posts messages to a channel via the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://slack.com/api"

// Client posts messages to Slack.
type Client interface {
	PostMessage(ctx context.Context, channelID, text string) error
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Slack Web API client with the given bot token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	Mrkdwn  bool   `json:"mrkdwn"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PostMessage sends a mrkdwn-formatted message to the channel.
func (c *httpClient) PostMessage(ctx context.Context, channelID, text string) error {
	body, err := json.Marshal(postMessageRequest{
		Channel: channelID,
		Text:    text,
		Mrkdwn:  true,
	})
	if err != nil {
		return eris.Wrap(err, "slack: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "slack: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "slack: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "slack: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("slack: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	// Slack reports API-level failures inside a 200 response.
	var result postMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return eris.Wrap(err, "slack: unmarshal response")
	}
	if !result.OK {
		return eris.Errorf("slack: api error: %s", result.Error)
	}
	return nil
}
