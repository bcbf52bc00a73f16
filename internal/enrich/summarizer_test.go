package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/pkg/anthropic"
	"github.com/spysage/monitor-cli/pkg/openrouter"
)

type fakeAnthropicClient struct {
	gotReq anthropic.MessageRequest
	resp   *anthropic.MessageResponse
	err    error
}

func (f *fakeAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.gotReq = req
	return f.resp, f.err
}

func TestAnthropicSummarizer_Success(t *testing.T) {
	fake := &fakeAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Summary here."}},
	}}
	s := NewAnthropicSummarizer(fake, "claude-haiku-4-5-20251001")

	got, err := s.Summarize(context.Background(), "changelog content")
	require.NoError(t, err)
	assert.Equal(t, "Summary here.", got)
	assert.Equal(t, "claude-haiku-4-5-20251001", fake.gotReq.Model)
	assert.Contains(t, fake.gotReq.System, "1-2 sentences")
	require.Len(t, fake.gotReq.Messages, 1)
	assert.Equal(t, "changelog content", fake.gotReq.Messages[0].Content)
}

func TestAnthropicSummarizer_TruncatesLongInput(t *testing.T) {
	fake := &fakeAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Short."}},
	}}
	s := NewAnthropicSummarizer(fake, "m")

	long := strings.Repeat("x", maxSummarizeInput+500)
	_, err := s.Summarize(context.Background(), long)
	require.NoError(t, err)
	assert.Len(t, fake.gotReq.Messages[0].Content, maxSummarizeInput)
}

func TestAnthropicSummarizer_TruncatesOnRuneBoundary(t *testing.T) {
	fake := &fakeAnthropicClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "Short."}},
	}}
	s := NewAnthropicSummarizer(fake, "m")

	// Multibyte runes straddle the byte limit; the cut must back up to
	// a rune start instead of sending a mangled tail.
	long := strings.Repeat("é", maxSummarizeInput)
	_, err := s.Summarize(context.Background(), long)
	require.NoError(t, err)

	sent := fake.gotReq.Messages[0].Content
	assert.LessOrEqual(t, len(sent), maxSummarizeInput)
	assert.True(t, utf8.ValidString(sent))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than max", "abc", 10, "abc"},
		{"exact length", "abc", 3, "abc"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"rune straddles cut", "aaé", 3, "aa"},
		{"multibyte only", "ééé", 5, "éé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.max))
		})
	}
}

func TestAnthropicSummarizer_Error(t *testing.T) {
	fake := &fakeAnthropicClient{err: eris.New("api down")}
	s := NewAnthropicSummarizer(fake, "m")

	_, err := s.Summarize(context.Background(), "content")
	assert.Error(t, err)
}

func TestAnthropicSummarizer_EmptyResponse(t *testing.T) {
	fake := &fakeAnthropicClient{resp: &anthropic.MessageResponse{}}
	s := NewAnthropicSummarizer(fake, "m")

	_, err := s.Summarize(context.Background(), "content")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty summary")
}

func TestOpenRouterCategorizer_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openrouter.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "UI, pricing, feature, performance")

		_ = json.NewEncoder(w).Encode(openrouter.ChatCompletionResponse{
			Choices: []openrouter.Choice{
				{Message: openrouter.Message{Content: " Feature\n"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenRouterCategorizer(openrouter.NewClient("k", openrouter.WithBaseURL(srv.URL)))
	got, err := c.Categorize(context.Background(), "Added a new export button")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFeature, got)
}

func TestOpenRouterCategorizer_UnknownLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openrouter.ChatCompletionResponse{
			Choices: []openrouter.Choice{
				{Message: openrouter.Message{Content: "security"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenRouterCategorizer(openrouter.NewClient("k", openrouter.WithBaseURL(srv.URL)))
	got, err := c.Categorize(context.Background(), "Patched a vulnerability")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, got)
}
