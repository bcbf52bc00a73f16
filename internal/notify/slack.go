package notify

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/spysage/monitor-cli/pkg/slack"
)

// SlackNotifier posts a mrkdwn summary of each change to a channel.
type SlackNotifier struct {
	client    slack.Client
	channelID string
}

func NewSlackNotifier(client slack.Client, channelID string) *SlackNotifier {
	return &SlackNotifier{client: client, channelID: channelID}
}

func (n *SlackNotifier) Name() string { return "slack" }

func (n *SlackNotifier) Notify(ctx context.Context, ev Event) error {
	detected := ""
	if !ev.Change.DetectedAt.IsZero() {
		detected = ev.Change.DetectedAt.Format("2006-01-02 15:04:05 MST")
	}
	text := fmt.Sprintf("*Competitor:* %s\n*Summary:* %s\n*Details:* %s\n*URL:* %s\n*Detected:* %s",
		ev.CompetitorName, ev.Change.Summary, ev.Change.Details, ev.Change.URL, detected)

	if err := n.client.PostMessage(ctx, n.channelID, text); err != nil {
		return eris.Wrap(err, "notify: slack post message")
	}
	return nil
}
