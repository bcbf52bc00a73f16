// Package store persists competitors, snapshots, and changes behind a
// backend-neutral interface with SQLite and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/spysage/monitor-cli/internal/model"
)

// Store defines the persistence operations used by the monitoring
// pipeline. Snapshots are append-only; deduplication against the
// previous snapshot is the change detector's job, not the store's.
type Store interface {
	// Competitors
	CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error)
	GetCompetitor(ctx context.Context, id string) (*model.Competitor, error)
	ListCompetitors(ctx context.Context) ([]model.Competitor, error)
	UpdateCompetitorBuzz(ctx context.Context, id string, buzz int) error
	// DeleteCompetitor cascades to the competitor's snapshots and changes.
	DeleteCompetitor(ctx context.Context, id string) error

	// Snapshots
	CreateSnapshot(ctx context.Context, s model.Snapshot) (*model.Snapshot, error)
	// LatestSnapshot returns the most recent snapshot for the competitor,
	// or nil when none exists.
	LatestSnapshot(ctx context.Context, competitorID string) (*model.Snapshot, error)

	// Changes
	CreateChange(ctx context.Context, c model.Change) (*model.Change, error)
	ListChangesSince(ctx context.Context, since time.Time) ([]model.Change, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
