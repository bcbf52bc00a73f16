// Package model defines the core entities of the monitoring pipeline.
package model

import "time"

// Competitor represents a tracked external entity whose web presence is
// polled for changes. The buzz field counts recent external mentions and
// is refreshed by its own scheduled job.
type Competitor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Website      string    `json:"website"`
	ChangelogURL string    `json:"changelog_url,omitempty"`
	SocialLinks  []string  `json:"social_links,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Buzz         int       `json:"buzz"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// PreferredURL returns the changelog URL when set, otherwise the website.
// The changelog page usually carries the signal the pipeline cares about.
func (c Competitor) PreferredURL() string {
	if c.ChangelogURL != "" {
		return c.ChangelogURL
	}
	return c.Website
}

// Snapshot is an immutable copy of fetched content at a point in time.
// One snapshot is created per detected change, not per poll, so within a
// competitor's history each entry differs from its predecessor.
type Snapshot struct {
	ID           string    `json:"id"`
	CompetitorID string    `json:"competitor_id"`
	URL          string    `json:"url"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}
