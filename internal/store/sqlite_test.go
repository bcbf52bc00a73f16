package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spysage/monitor-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "spysage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func seedCompetitor(t *testing.T, s *SQLiteStore, name string) *model.Competitor {
	t.Helper()
	c, err := s.CreateCompetitor(context.Background(), model.Competitor{
		Name:         name,
		Website:      "https://" + name + ".example.com",
		ChangelogURL: "https://" + name + ".example.com/changelog",
		Tags:         []string{"saas"},
		UserID:       "user-1",
	})
	require.NoError(t, err)
	return c
}

func TestSQLiteCompetitorRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created := seedCompetitor(t, s, "acme")
	require.NotEmpty(t, created.ID)

	got, err := s.GetCompetitor(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "acme", got.Name)
	require.Equal(t, []string{"saas"}, got.Tags)
	require.Equal(t, "user-1", got.UserID)

	all, err := s.ListCompetitors(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSQLiteGetCompetitorNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.GetCompetitor(context.Background(), "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestSQLiteUpdateCompetitorBuzz(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	c := seedCompetitor(t, s, "acme")
	require.NoError(t, s.UpdateCompetitorBuzz(ctx, c.ID, 17))

	got, err := s.GetCompetitor(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 17, got.Buzz)

	err = s.UpdateCompetitorBuzz(ctx, "missing", 1)
	require.Error(t, err)
}

func TestSQLiteLatestSnapshot(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s, "acme")

	snap, err := s.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	require.Nil(t, snap, "no snapshots yet")

	_, err = s.CreateSnapshot(ctx, model.Snapshot{
		CompetitorID: c.ID,
		URL:          c.ChangelogURL,
		Content:      "first",
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)
	_, err = s.CreateSnapshot(ctx, model.Snapshot{
		CompetitorID: c.ID,
		URL:          c.ChangelogURL,
		Content:      "second",
	})
	require.NoError(t, err)

	snap, err = s.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, "second", snap.Content)
}

func TestSQLiteChangesRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s, "acme")

	created, err := s.CreateChange(ctx, model.Change{
		CompetitorID:    c.ID,
		UserID:          c.UserID,
		Type:            "changelog",
		Summary:         "Added SSO support.",
		Details:         "Content changed",
		URL:             c.ChangelogURL,
		Diff:            "+ SSO",
		Impact:          "Unknown",
		Category:        model.CategoryFeature,
		AfterScreenshot: c.ID + "_after.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	since := time.Now().UTC().Add(-time.Minute)
	got, err := s.ListChangesSince(ctx, since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Added SSO support.", got[0].Summary)
	require.Equal(t, model.CategoryFeature, got[0].Category)

	future := time.Now().UTC().Add(time.Hour)
	got, err = s.ListChangesSince(ctx, future)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSQLiteDeleteCompetitorCascades(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	c := seedCompetitor(t, s, "acme")

	_, err := s.CreateSnapshot(ctx, model.Snapshot{CompetitorID: c.ID, URL: c.Website, Content: "x"})
	require.NoError(t, err)
	_, err = s.CreateChange(ctx, model.Change{CompetitorID: c.ID, UserID: c.UserID, Summary: "y"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompetitor(ctx, c.ID))

	snap, err := s.LatestSnapshot(ctx, c.ID)
	require.NoError(t, err)
	require.Nil(t, snap)

	changes, err := s.ListChangesSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Empty(t, changes)

	require.Error(t, s.DeleteCompetitor(ctx, c.ID))
}
