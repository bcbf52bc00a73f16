// Package digest renders and emails periodic summaries of detected
// competitor changes.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/model"
	"github.com/spysage/monitor-cli/internal/store"
)

const weeklyWindow = 7 * 24 * time.Hour

// Entry is one change with its competitor name resolved for display.
type Entry struct {
	CompetitorName string
	Summary        string
	URL            string
	DetectedAt     time.Time
}

// Build renders the plain text body of a digest email.
func Build(entries []Entry) string {
	var b strings.Builder
	b.WriteString("Here are the competitor changes from the past week:\n\n")
	if len(entries) == 0 {
		b.WriteString("No changes detected.")
		return b.String()
	}
	for i, e := range entries {
		detected := ""
		if !e.DetectedAt.IsZero() {
			detected = e.DetectedAt.Format("2006-01-02 15:04:05 MST")
		}
		fmt.Fprintf(&b, "%d. Competitor: %s\n   Summary: %s\n   URL: %s\n   Detected: %s\n\n",
			i+1, e.CompetitorName, e.Summary, e.URL, detected)
	}
	return b.String()
}

// Mailer delivers a plain text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Sender assembles and emails the weekly digest.
type Sender struct {
	store     store.Store
	mailer    Mailer
	recipient string
}

func NewSender(st store.Store, mailer Mailer, recipient string) *Sender {
	return &Sender{store: st, mailer: mailer, recipient: recipient}
}

// SendWeekly emails every change detected in the past week to the
// configured recipient.
func (s *Sender) SendWeekly(ctx context.Context) error {
	if s.recipient == "" {
		return eris.New("digest: no recipient configured")
	}

	since := time.Now().UTC().Add(-weeklyWindow)
	changes, err := s.store.ListChangesSince(ctx, since)
	if err != nil {
		return eris.Wrap(err, "digest: list changes")
	}

	body := Build(s.resolve(ctx, changes))
	if err := s.mailer.Send(ctx, s.recipient, "Weekly Competitor Change Digest", body); err != nil {
		return eris.Wrap(err, "digest: send email")
	}
	zap.L().Info("weekly digest sent", zap.String("to", s.recipient), zap.Int("changes", len(changes)))
	return nil
}

// resolve attaches competitor names, caching lookups within one send.
// A failed lookup degrades to an empty name rather than erroring.
func (s *Sender) resolve(ctx context.Context, changes []model.Change) []Entry {
	names := make(map[string]string)
	entries := make([]Entry, 0, len(changes))
	for _, c := range changes {
		name, ok := names[c.CompetitorID]
		if !ok {
			comp, err := s.store.GetCompetitor(ctx, c.CompetitorID)
			if err != nil {
				zap.L().Warn("digest: competitor lookup failed", zap.String("id", c.CompetitorID), zap.Error(err))
				name = ""
			} else {
				name = comp.Name
			}
			names[c.CompetitorID] = name
		}
		entries = append(entries, Entry{
			CompetitorName: name,
			Summary:        c.Summary,
			URL:            c.URL,
			DetectedAt:     c.DetectedAt,
		})
	}
	return entries
}

// AdminNotifier emails operational notices to the admin address. A
// missing address disables notices rather than erroring.
type AdminNotifier struct {
	mailer Mailer
	admin  string
}

func NewAdminNotifier(mailer Mailer, admin string) *AdminNotifier {
	return &AdminNotifier{mailer: mailer, admin: admin}
}

func (a *AdminNotifier) Notify(ctx context.Context, subject, text string) {
	if a.admin == "" {
		return
	}
	if err := a.mailer.Send(ctx, a.admin, subject, text); err != nil {
		zap.L().Warn("admin notification failed", zap.String("subject", subject), zap.Error(err))
	}
}
