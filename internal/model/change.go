package model

import (
	"strings"
	"time"
)

// Category classifies a detected change. The set is closed; anything the
// classifier cannot place lands in CategoryOther.
type Category string

const (
	CategoryUI          Category = "UI"
	CategoryPricing     Category = "pricing"
	CategoryFeature     Category = "feature"
	CategoryPerformance Category = "performance"
	CategoryOther       Category = "other"
)

// knownCategories is the match order for ParseCategory.
var knownCategories = []Category{CategoryUI, CategoryPricing, CategoryFeature, CategoryPerformance}

// ParseCategory maps free-form model output onto the closed category set
// by case-insensitive substring match. Unmatched input yields CategoryOther.
func ParseCategory(s string) Category {
	lower := strings.ToLower(s)
	for _, c := range knownCategories {
		if strings.Contains(lower, strings.ToLower(string(c))) {
			return c
		}
	}
	return CategoryOther
}

// FallbackSummary is stored on a Change when summarization fails.
const FallbackSummary = "Summary not available."

// Change is an enriched record describing a detected difference between
// two snapshots of a competitor's page. Created once, never edited.
type Change struct {
	ID               string    `json:"id"`
	CompetitorID     string    `json:"competitor_id"`
	UserID           string    `json:"user_id"`
	Type             string    `json:"type"`
	Summary          string    `json:"summary"`
	Details          string    `json:"details"`
	URL              string    `json:"url"`
	DetectedAt       time.Time `json:"detected_at"`
	Diff             string    `json:"diff"`
	Impact           string    `json:"impact"`
	Tags             []string  `json:"tags,omitempty"`
	Category         Category  `json:"category"`
	BeforeScreenshot string    `json:"before_screenshot"`
	AfterScreenshot  string    `json:"after_screenshot"`
}
