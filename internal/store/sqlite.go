package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/spysage/monitor-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	website       TEXT NOT NULL,
	changelog_url TEXT NOT NULL DEFAULT '',
	social_links  TEXT NOT NULL DEFAULT '[]',
	tags          TEXT NOT NULL DEFAULT '[]',
	buzz          INTEGER NOT NULL DEFAULT 0,
	user_id       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id),
	url           TEXT NOT NULL,
	content       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS changes (
	id                TEXT PRIMARY KEY,
	competitor_id     TEXT NOT NULL REFERENCES competitors(id),
	user_id           TEXT NOT NULL,
	type              TEXT NOT NULL DEFAULT '',
	summary           TEXT NOT NULL DEFAULT '',
	details           TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	detected_at       DATETIME NOT NULL,
	diff              TEXT NOT NULL DEFAULT '',
	impact            TEXT NOT NULL DEFAULT '',
	tags              TEXT NOT NULL DEFAULT '[]',
	category          TEXT NOT NULL DEFAULT '',
	before_screenshot TEXT NOT NULL DEFAULT '',
	after_screenshot  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_snapshots_competitor ON snapshots(competitor_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_changes_competitor ON changes(competitor_id);
CREATE INDEX IF NOT EXISTS idx_changes_detected_at ON changes(detected_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	links, err := json.Marshal(sliceOrEmpty(c.SocialLinks))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal social links")
	}
	tags, err := json.Marshal(sliceOrEmpty(c.Tags))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal tags")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Website, c.ChangelogURL, string(links), string(tags), c.Buzz, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert competitor")
	}
	return &c, nil
}

func (s *SQLiteStore) GetCompetitor(ctx context.Context, id string) (*model.Competitor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at
		 FROM competitors WHERE id = ?`, id)
	return scanCompetitor(row)
}

func (s *SQLiteStore) ListCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at
		 FROM competitors ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		c, err := scanCompetitor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list competitors iterate")
}

func (s *SQLiteStore) UpdateCompetitorBuzz(ctx context.Context, id string, buzz int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE competitors SET buzz = ? WHERE id = ?`, buzz, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update buzz %s", id)
	}
	return checkRowsAffected(res, "competitor", id)
}

func (s *SQLiteStore) DeleteCompetitor(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin delete")
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM changes WHERE competitor_id = ?`,
		`DELETE FROM snapshots WHERE competitor_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return eris.Wrapf(err, "sqlite: cascade delete %s", id)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM competitors WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete competitor %s", id)
	}
	if err := checkRowsAffected(res, "competitor", id); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit delete")
}

func (s *SQLiteStore) CreateSnapshot(ctx context.Context, snap model.Snapshot) (*model.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, competitor_id, url, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.CompetitorID, snap.URL, snap.Content, snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, competitorID string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, competitor_id, url, content, created_at FROM snapshots
		 WHERE competitor_id = ? ORDER BY created_at DESC LIMIT 1`, competitorID)

	var snap model.Snapshot
	err := row.Scan(&snap.ID, &snap.CompetitorID, &snap.URL, &snap.Content, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshot")
	}
	return &snap, nil
}

func (s *SQLiteStore) CreateChange(ctx context.Context, c model.Change) (*model.Change, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.DetectedAt.IsZero() {
		c.DetectedAt = time.Now().UTC()
	}

	tags, err := json.Marshal(sliceOrEmpty(c.Tags))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal change tags")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO changes (id, competitor_id, user_id, type, summary, details, url, detected_at,
		                      diff, impact, tags, category, before_screenshot, after_screenshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CompetitorID, c.UserID, c.Type, c.Summary, c.Details, c.URL, c.DetectedAt,
		c.Diff, c.Impact, string(tags), string(c.Category), c.BeforeScreenshot, c.AfterScreenshot,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert change")
	}
	return &c, nil
}

func (s *SQLiteStore) ListChangesSince(ctx context.Context, since time.Time) ([]model.Change, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, competitor_id, user_id, type, summary, details, url, detected_at,
		        diff, impact, tags, category, before_screenshot, after_screenshot
		 FROM changes WHERE detected_at >= ? ORDER BY detected_at DESC`, since)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list changes")
	}
	defer rows.Close()

	var out []model.Change
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list changes iterate")
}

// helpers

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCompetitor(row scannable) (*model.Competitor, error) {
	var c model.Competitor
	var linksJSON, tagsJSON string

	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.ChangelogURL, &linksJSON, &tagsJSON, &c.Buzz, &c.UserID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("competitor not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan competitor")
	}

	if err := json.Unmarshal([]byte(linksJSON), &c.SocialLinks); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal social links")
	}
	if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal tags")
	}
	return &c, nil
}

func scanChange(row scannable) (*model.Change, error) {
	var c model.Change
	var tagsJSON, category string

	err := row.Scan(&c.ID, &c.CompetitorID, &c.UserID, &c.Type, &c.Summary, &c.Details, &c.URL, &c.DetectedAt,
		&c.Diff, &c.Impact, &tagsJSON, &category, &c.BeforeScreenshot, &c.AfterScreenshot)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan change")
	}

	if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal change tags")
	}
	c.Category = model.Category(category)
	return &c, nil
}
