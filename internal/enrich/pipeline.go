package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/internal/resilience"
)

// Result is the outcome of enriching one detected change. Both fields
// are always usable: failures degrade to the fallback summary and the
// "other" category rather than propagating.
type Result struct {
	Summary  string
	Category model.Category
}

// Pipeline runs summarization then categorization. The two calls are
// independent: a failed summarization does not skip categorization,
// which runs on whatever summary value resulted, fallback included.
type Pipeline struct {
	summarizer  Summarizer
	categorizer Categorizer
	retry       resilience.RetryConfig
}

// NewPipeline creates an enrichment pipeline with default retry.
func NewPipeline(s Summarizer, c Categorizer) *Pipeline {
	return &Pipeline{
		summarizer:  s,
		categorizer: c,
		retry:       resilience.DefaultRetryConfig(),
	}
}

// Enrich summarizes and categorizes the fetched content.
func (p *Pipeline) Enrich(ctx context.Context, content string) Result {
	summary, err := resilience.DoVal(ctx, p.withLogger("summarize"), func(ctx context.Context) (string, error) {
		return p.summarizer.Summarize(ctx, content)
	})
	if err != nil || summary == "" {
		if err != nil {
			zap.L().Warn("enrich: summarization failed, using fallback", zap.Error(err))
		}
		summary = model.FallbackSummary
	}

	category, err := resilience.DoVal(ctx, p.withLogger("categorize"), func(ctx context.Context) (model.Category, error) {
		return p.categorizer.Categorize(ctx, summary)
	})
	if err != nil {
		zap.L().Warn("enrich: categorization failed, using fallback", zap.Error(err))
		category = model.CategoryOther
	}

	return Result{Summary: summary, Category: category}
}

func (p *Pipeline) withLogger(operation string) resilience.RetryConfig {
	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger("enrich", operation)
	return cfg
}
