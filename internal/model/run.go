package model

import "time"

// ItemStatus is the per-competitor outcome of one orchestrator pass.
type ItemStatus string

const (
	ItemChanged   ItemStatus = "changed"   // new Change and Snapshot created
	ItemUnchanged ItemStatus = "unchanged" // content identical to last snapshot
	ItemSkipped   ItemStatus = "skipped"   // fetch returned nothing usable
	ItemFailed    ItemStatus = "failed"    // pipeline error, loop continued
)

// ItemResult records what happened to a single competitor during a run.
// The continue-on-failure policy of the orchestrator is visible here as
// data instead of being buried in control flow.
type ItemResult struct {
	CompetitorID string     `json:"competitor_id"`
	Name         string     `json:"name"`
	Status       ItemStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
}

// RunSummary aggregates one full orchestrator pass over all competitors.
type RunSummary struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Items      []ItemResult `json:"items"`
}

// Count returns the number of items with the given status.
func (s *RunSummary) Count(status ItemStatus) int {
	n := 0
	for _, it := range s.Items {
		if it.Status == status {
			n++
		}
	}
	return n
}
