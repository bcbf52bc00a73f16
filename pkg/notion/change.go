package notion

import (
	"time"

	"github.com/jomei/notionapi"
)

// ChangePage holds the fields published to the change-log Notion database.
type ChangePage struct {
	Summary        string
	CompetitorName string
	Details        string
	URL            string
	DetectedAt     time.Time
}

// BuildPageRequest maps a detected change onto the Notion database schema:
// Name (title), Competitor, Details, URL, Detected.
func BuildPageRequest(databaseID string, cp ChangePage) *notionapi.PageCreateRequest {
	title := cp.Summary
	if title == "" {
		title = "Change Detected"
	}
	detected := cp.DetectedAt
	if detected.IsZero() {
		detected = time.Now().UTC()
	}
	start := notionapi.Date(detected)

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: []notionapi.RichText{
					{Text: &notionapi.Text{Content: title}},
				},
			},
			"Competitor": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{
					{Text: &notionapi.Text{Content: cp.CompetitorName}},
				},
			},
			"Details": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{
					{Text: &notionapi.Text{Content: cp.Details}},
				},
			},
			"URL": notionapi.URLProperty{
				URL: cp.URL,
			},
			"Detected": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &start},
			},
		},
	}
}
