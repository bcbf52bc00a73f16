package enrich

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/pkg/openrouter"
)

// Categorizer places a change summary into the closed category set.
type Categorizer interface {
	Categorize(ctx context.Context, summary string) (model.Category, error)
}

// OpenRouterCategorizer implements Categorizer via chat completions.
type OpenRouterCategorizer struct {
	client openrouter.Client
}

// NewOpenRouterCategorizer creates a categorizer on the given client.
func NewOpenRouterCategorizer(client openrouter.Client) *OpenRouterCategorizer {
	return &OpenRouterCategorizer{client: client}
}

func (c *OpenRouterCategorizer) Categorize(ctx context.Context, summary string) (model.Category, error) {
	prompt := fmt.Sprintf(
		"Categorize the following product update as one of: UI, pricing, feature, performance.\n\nUpdate: %s\n\nCategory:",
		summary,
	)

	temp := 0.0
	maxTokens := 10
	resp, err := c.client.ChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Messages: []openrouter.Message{
			{Role: "system", Content: "You are an expert product manager."},
			{Role: "user", Content: prompt},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return model.CategoryOther, eris.Wrap(err, "enrich: categorize")
	}

	return model.ParseCategory(resp.FirstContent()), nil
}
