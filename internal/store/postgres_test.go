package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/spysage/monitor-cli/internal/model"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresCreateCompetitor(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO competitors`).
		WithArgs(pgxmock.AnyArg(), "Acme", "https://acme.io", "https://acme.io/changelog",
			[]string{}, []string{"saas"}, 0, "user-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreateCompetitor(context.Background(), model.Competitor{
		Name:         "Acme",
		Website:      "https://acme.io",
		ChangelogURL: "https://acme.io/changelog",
		Tags:         []string{"saas"},
		UserID:       "user-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCompetitorNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM competitors WHERE id`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetCompetitor(context.Background(), "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCompetitors(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "website", "changelog_url", "social_links", "tags", "buzz", "user_id", "created_at"}).
		AddRow("c1", "Acme", "https://acme.io", "", []string{}, []string{}, 3, "user-1", now).
		AddRow("c2", "Globex", "https://globex.io", "https://globex.io/news", []string{"https://x.com/globex"}, []string{"enterprise"}, 0, "user-1", now)

	mock.ExpectQuery(`SELECT .+ FROM competitors ORDER BY created_at`).
		WillReturnRows(rows)

	got, err := s.ListCompetitors(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Globex", got[1].Name)
	require.Equal(t, 3, got[0].Buzz)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateCompetitorBuzz(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE competitors SET buzz`).
		WithArgs(42, "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateCompetitorBuzz(context.Background(), "c1", 42))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateCompetitorBuzzNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE competitors SET buzz`).
		WithArgs(1, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateCompetitorBuzz(context.Background(), "missing", 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteCompetitor(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM competitors WHERE id`).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteCompetitor(context.Background(), "c1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestSnapshotNone(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM snapshots`).
		WithArgs("c1").
		WillReturnError(pgx.ErrNoRows)

	snap, err := s.LatestSnapshot(context.Background(), "c1")
	require.NoError(t, err)
	require.Nil(t, snap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestSnapshot(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM snapshots`).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "competitor_id", "url", "content", "created_at"}).
			AddRow("s1", "c1", "https://acme.io/changelog", "v2 released", now))

	snap, err := s.LatestSnapshot(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "v2 released", snap.Content)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateChange(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO changes`).
		WithArgs(pgxmock.AnyArg(), "c1", "user-1", "changelog", "Added SSO support.", "Content changed",
			"https://acme.io/changelog", pgxmock.AnyArg(), "+ SSO", "Unknown", []string{},
			"feature", "", "c1_after.png").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.CreateChange(context.Background(), model.Change{
		CompetitorID:    "c1",
		UserID:          "user-1",
		Type:            "changelog",
		Summary:         "Added SSO support.",
		Details:         "Content changed",
		URL:             "https://acme.io/changelog",
		Diff:            "+ SSO",
		Impact:          "Unknown",
		Category:        model.CategoryFeature,
		AfterScreenshot: "c1_after.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.DetectedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListChangesSince(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	since := now.Add(-7 * 24 * time.Hour)
	rows := pgxmock.NewRows([]string{"id", "competitor_id", "user_id", "type", "summary", "details", "url",
		"detected_at", "diff", "impact", "tags", "category", "before_screenshot", "after_screenshot"}).
		AddRow("ch1", "c1", "user-1", "changelog", "Pricing page updated.", "Content changed",
			"https://acme.io/pricing", now, "- $10\n+ $12", "Unknown", []string{}, "pricing", "", "")

	mock.ExpectQuery(`SELECT .+ FROM changes WHERE detected_at`).
		WithArgs(since).
		WillReturnRows(rows)

	got, err := s.ListChangesSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.CategoryPricing, got[0].Category)
	require.NoError(t, mock.ExpectationsWereMet())
}
