package notion

import (
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPageRequest(t *testing.T) {
	detected := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	req := BuildPageRequest("db-1", ChangePage{
		Summary:        "Pricing page restructured",
		CompetitorName: "Acme",
		Details:        "Content changed",
		URL:            "https://acme.com/pricing",
		DetectedAt:     detected,
	})

	assert.Equal(t, notionapi.DatabaseID("db-1"), req.Parent.DatabaseID)

	title, ok := req.Properties["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	require.Len(t, title.Title, 1)
	assert.Equal(t, "Pricing page restructured", title.Title[0].Text.Content)

	comp, ok := req.Properties["Competitor"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "Acme", comp.RichText[0].Text.Content)

	url, ok := req.Properties["URL"].(notionapi.URLProperty)
	require.True(t, ok)
	assert.Equal(t, "https://acme.com/pricing", url.URL)

	date, ok := req.Properties["Detected"].(notionapi.DateProperty)
	require.True(t, ok)
	assert.Equal(t, detected, time.Time(*date.Date.Start))
}

func TestBuildPageRequest_Defaults(t *testing.T) {
	req := BuildPageRequest("db-1", ChangePage{})

	title := req.Properties["Name"].(notionapi.TitleProperty)
	assert.Equal(t, "Change Detected", title.Title[0].Text.Content)

	date := req.Properties["Detected"].(notionapi.DateProperty)
	assert.WithinDuration(t, time.Now().UTC(), time.Time(*date.Date.Start), time.Minute)
}
