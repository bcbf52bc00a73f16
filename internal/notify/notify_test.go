package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/pkg/slack"
)

type fakeNotifier struct {
	name   string
	err    error
	events []Event
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Notify(_ context.Context, ev Event) error {
	f.events = append(f.events, ev)
	return f.err
}

func TestDispatch_AllChannels(t *testing.T) {
	a := &fakeNotifier{name: "a"}
	b := &fakeNotifier{name: "b"}
	d := NewDispatcher(a, b)

	ev := Event{CompetitorName: "Acme", Change: model.Change{Summary: "New pricing tier."}}
	deliveries := d.Dispatch(context.Background(), ev)

	require.Len(t, deliveries, 2)
	assert.NoError(t, deliveries[0].Err)
	assert.NoError(t, deliveries[1].Err)
	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, "Acme", b.events[0].CompetitorName)
}

func TestDispatch_FailureIsolated(t *testing.T) {
	failing := &fakeNotifier{name: "notion", err: eris.New("rate limited")}
	ok := &fakeNotifier{name: "slack"}
	d := NewDispatcher(failing, ok)

	deliveries := d.Dispatch(context.Background(), Event{CompetitorName: "Acme"})

	require.Len(t, deliveries, 2)
	assert.Error(t, deliveries[0].Err)
	assert.NoError(t, deliveries[1].Err)
	require.Len(t, ok.events, 1, "second channel still receives the event")
}

func TestDispatch_NoNotifiers(t *testing.T) {
	d := NewDispatcher()
	deliveries := d.Dispatch(context.Background(), Event{})
	assert.Empty(t, deliveries)
}

func TestSlackNotifier_MessageFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewSlackNotifier(slack.NewClient("xoxb-test", slack.WithBaseURL(srv.URL)), "C123")
	detected := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	err := n.Notify(context.Background(), Event{
		CompetitorName: "Acme",
		Change: model.Change{
			Summary:    "Added SSO support.",
			Details:    "Content changed",
			URL:        "https://acme.io/changelog",
			DetectedAt: detected,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "C123", got["channel"])
	assert.Equal(t, true, got["mrkdwn"])
	text, _ := got["text"].(string)
	assert.Contains(t, text, "*Competitor:* Acme")
	assert.Contains(t, text, "*Summary:* Added SSO support.")
	assert.Contains(t, text, "*URL:* https://acme.io/changelog")
	assert.Contains(t, text, "2026-08-30 08:00:00 UTC")
}
