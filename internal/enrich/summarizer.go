// Package enrich turns raw detected changes into a human-readable
// summary and a category via external AI services, with fixed fallback
// values when either call fails.
package enrich

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/spysage/monitor-cli/pkg/anthropic"
)

// maxSummarizeInput bounds the content sent for summarization so long
// pages stay inside upstream token limits.
const maxSummarizeInput = 8000

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

const summarizeSystem = "You are an expert product manager assistant. " +
	"Summarize the following product changelog or update in 1-2 sentences, " +
	"focusing on what changed and its impact."

// Summarizer produces a short summary of page content.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// AnthropicSummarizer implements Summarizer on the Anthropic messages API.
type AnthropicSummarizer struct {
	client anthropic.Client
	model  string
}

// NewAnthropicSummarizer creates a summarizer using the given model.
func NewAnthropicSummarizer(client anthropic.Client, model string) *AnthropicSummarizer {
	return &AnthropicSummarizer{client: client, model: model}
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = truncate(text, maxSummarizeInput)

	temp := 0.3
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   256,
		System:      summarizeSystem,
		Messages:    []anthropic.Message{{Role: "user", Content: text}},
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: summarize")
	}

	summary := resp.Text()
	if summary == "" {
		return "", eris.New("enrich: empty summary response")
	}
	return summary, nil
}
