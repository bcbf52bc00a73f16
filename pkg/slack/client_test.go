package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))

		var req postMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "C123", req.Channel)
		assert.Equal(t, "*Competitor:* Acme", req.Text)
		assert.True(t, req.Mrkdwn)

		_ = json.NewEncoder(w).Encode(postMessageResponse{OK: true})
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", WithBaseURL(srv.URL))
	err := c.PostMessage(context.Background(), "C123", "*Competitor:* Acme")
	assert.NoError(t, err)
}

func TestPostMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(postMessageResponse{OK: false, Error: "channel_not_found"})
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", WithBaseURL(srv.URL))
	err := c.PostMessage(context.Background(), "C404", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestPostMessage_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", WithBaseURL(srv.URL))
	err := c.PostMessage(context.Background(), "C123", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
