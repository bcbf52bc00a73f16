package notify

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/spysage/monitor-cli/pkg/notion"
)

// NotionNotifier appends each change as a page in a Notion database.
type NotionNotifier struct {
	client     notion.Client
	databaseID string
}

func NewNotionNotifier(client notion.Client, databaseID string) *NotionNotifier {
	return &NotionNotifier{client: client, databaseID: databaseID}
}

func (n *NotionNotifier) Name() string { return "notion" }

func (n *NotionNotifier) Notify(ctx context.Context, ev Event) error {
	req := notion.BuildPageRequest(n.databaseID, notion.ChangePage{
		Summary:        ev.Change.Summary,
		CompetitorName: ev.CompetitorName,
		Details:        ev.Change.Details,
		URL:            ev.Change.URL,
		DetectedAt:     ev.Change.DetectedAt,
	})
	if _, err := n.client.CreatePage(ctx, req); err != nil {
		return eris.Wrap(err, "notify: notion create page")
	}
	return nil
}
