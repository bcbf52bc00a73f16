// Package runner drives the scrape, detect, enrich, notify pipeline
// across every tracked competitor.
package runner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/diff"
	"github.com/spysage/monitor-cli/internal/enrich"
	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/internal/notify"
	"github.com/spysage/monitor-cli/internal/screenshot"
	"github.com/spysage/monitor-cli/internal/scrape"
	"github.com/spysage/monitor-cli/internal/store"
	"github.com/rotisserie/eris"
)

// ContentFetcher retrieves the current page content for a competitor.
type ContentFetcher interface {
	Fetch(ctx context.Context, c model.Competitor) scrape.FetchResult
}

// Enricher produces a summary and category for changed content.
type Enricher interface {
	Enrich(ctx context.Context, content string) enrich.Result
}

// Dispatcher fans a change event out to notification channels.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev notify.Event) []notify.Delivery
}

// MentionCounter reports recent social mention volume for a keyword.
type MentionCounter interface {
	CountMentions(ctx context.Context, keyword string) (int, error)
}

// Runner executes monitoring passes over all competitors. Competitors
// are processed sequentially so one slow site never starves the rest
// of the run, and a failure on one is recorded and skipped past.
type Runner struct {
	store      store.Store
	fetcher    ContentFetcher
	capturer   screenshot.Capturer
	enricher   Enricher
	dispatcher Dispatcher
	mentions   MentionCounter
}

func New(st store.Store, fetcher ContentFetcher, capturer screenshot.Capturer, enricher Enricher, dispatcher Dispatcher, mentions MentionCounter) *Runner {
	return &Runner{
		store:      st,
		fetcher:    fetcher,
		capturer:   capturer,
		enricher:   enricher,
		dispatcher: dispatcher,
		mentions:   mentions,
	}
}

// RunAll performs one monitoring pass over every competitor and
// reports the per-competitor outcomes.
func (r *Runner) RunAll(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{StartedAt: time.Now().UTC()}

	competitors, err := r.store.ListCompetitors(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "runner: list competitors")
	}

	for _, c := range competitors {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "runner: run cancelled")
		}
		item := r.runOne(ctx, c)
		summary.Items = append(summary.Items, item)
	}

	summary.FinishedAt = time.Now().UTC()
	zap.L().Info("monitoring pass complete",
		zap.Int("competitors", len(summary.Items)),
		zap.Int("changed", summary.Count(model.ItemChanged)),
		zap.Int("failed", summary.Count(model.ItemFailed)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

func (r *Runner) runOne(ctx context.Context, c model.Competitor) model.ItemResult {
	item := model.ItemResult{CompetitorID: c.ID, Name: c.Name}

	if c.PreferredURL() == "" {
		item.Status = model.ItemSkipped
		zap.L().Warn("competitor has no URL to monitor", zap.String("name", c.Name))
		return item
	}

	res := r.fetcher.Fetch(ctx, c)
	if !res.OK {
		item.Status = model.ItemFailed
		item.Error = "fetch failed"
		return item
	}

	last, err := r.store.LatestSnapshot(ctx, c.ID)
	if err != nil {
		item.Status = model.ItemFailed
		item.Error = err.Error()
		return item
	}

	if last != nil && !diff.Changed(last.Content, res.Content) {
		item.Status = model.ItemUnchanged
		return item
	}

	if err := r.recordChange(ctx, c, last, res); err != nil {
		item.Status = model.ItemFailed
		item.Error = err.Error()
		return item
	}

	item.Status = model.ItemChanged
	zap.L().Info("change detected", zap.String("competitor", c.Name), zap.String("url", res.URLUsed))
	return item
}

// recordChange persists a snapshot and an enriched change record, then
// notifies the configured channels. Screenshot failures degrade to
// empty paths rather than failing the competitor.
func (r *Runner) recordChange(ctx context.Context, c model.Competitor, last *model.Snapshot, res scrape.FetchResult) error {
	before := ""
	if last != nil {
		before = r.capture(ctx, res.URLUsed, screenshot.Filename(c.ID, "before"))
	}

	if _, err := r.store.CreateSnapshot(ctx, model.Snapshot{
		CompetitorID: c.ID,
		URL:          res.URLUsed,
		Content:      res.Content,
	}); err != nil {
		return eris.Wrap(err, "runner: save snapshot")
	}

	enriched := r.enricher.Enrich(ctx, res.Content)

	after := r.capture(ctx, res.URLUsed, screenshot.Filename(c.ID, "after"))

	diffText := ""
	if last != nil {
		diffText = diff.Positional(last.Content, res.Content)
	}

	change, err := r.store.CreateChange(ctx, model.Change{
		CompetitorID:     c.ID,
		UserID:           c.UserID,
		Type:             "changelog",
		Summary:          enriched.Summary,
		Details:          "Content changed",
		URL:              res.URLUsed,
		DetectedAt:       time.Now().UTC(),
		Diff:             diffText,
		Impact:           "Unknown",
		Tags:             []string{},
		Category:         enriched.Category,
		BeforeScreenshot: before,
		AfterScreenshot:  after,
	})
	if err != nil {
		return eris.Wrap(err, "runner: save change")
	}

	if r.dispatcher != nil {
		r.dispatcher.Dispatch(ctx, notify.Event{Change: *change, CompetitorName: c.Name})
	}
	return nil
}

func (r *Runner) capture(ctx context.Context, url, filename string) string {
	if r.capturer == nil {
		return ""
	}
	path, err := r.capturer.Capture(ctx, url, filename)
	if err != nil {
		zap.L().Warn("screenshot failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return path
}

// UpdateAllBuzz refreshes the social mention count for every
// competitor using its name as the search keyword.
func (r *Runner) UpdateAllBuzz(ctx context.Context) error {
	if r.mentions == nil {
		return eris.New("runner: no mention counter configured")
	}

	competitors, err := r.store.ListCompetitors(ctx)
	if err != nil {
		return eris.Wrap(err, "runner: list competitors")
	}

	for _, c := range competitors {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "runner: buzz update cancelled")
		}
		buzz, err := r.mentions.CountMentions(ctx, c.Name)
		if err != nil {
			zap.L().Warn("buzz lookup failed", zap.String("competitor", c.Name), zap.Error(err))
			continue
		}
		if err := r.store.UpdateCompetitorBuzz(ctx, c.ID, buzz); err != nil {
			zap.L().Warn("buzz update failed", zap.String("competitor", c.Name), zap.Error(err))
		}
	}
	return nil
}
