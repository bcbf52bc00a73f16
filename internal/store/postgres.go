package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/spysage/monitor-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore, narrow
// enough for pgxmock to stand in during tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hot path of the scrape loop.
var preparedStatements = map[string]string{
	"latest_snapshot": `SELECT id, competitor_id, url, content, created_at FROM snapshots WHERE competitor_id = $1 ORDER BY created_at DESC LIMIT 1`,
	"insert_snapshot": `INSERT INTO snapshots (id, competitor_id, url, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_buzz":     `UPDATE competitors SET buzz = $1 WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name          TEXT NOT NULL,
	website       TEXT NOT NULL,
	changelog_url TEXT NOT NULL DEFAULT '',
	social_links  TEXT[] NOT NULL DEFAULT '{}',
	tags          TEXT[] NOT NULL DEFAULT '{}',
	buzz          INTEGER NOT NULL DEFAULT 0,
	user_id       TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS snapshots (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	competitor_id TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	url           TEXT NOT NULL,
	content       TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS changes (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	competitor_id     TEXT NOT NULL REFERENCES competitors(id) ON DELETE CASCADE,
	user_id           TEXT NOT NULL,
	type              TEXT NOT NULL DEFAULT '',
	summary           TEXT NOT NULL DEFAULT '',
	details           TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	detected_at       TIMESTAMPTZ NOT NULL,
	diff              TEXT NOT NULL DEFAULT '',
	impact            TEXT NOT NULL DEFAULT '',
	tags              TEXT[] NOT NULL DEFAULT '{}',
	category          TEXT NOT NULL DEFAULT '',
	before_screenshot TEXT NOT NULL DEFAULT '',
	after_screenshot  TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_snapshots_competitor ON snapshots(competitor_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_changes_competitor ON changes(competitor_id);
CREATE INDEX IF NOT EXISTS idx_changes_detected_at ON changes(detected_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateCompetitor(ctx context.Context, c model.Competitor) (*model.Competitor, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO competitors (id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Name, c.Website, c.ChangelogURL, sliceOrEmpty(c.SocialLinks), sliceOrEmpty(c.Tags), c.Buzz, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert competitor")
	}
	return &c, nil
}

func (s *PostgresStore) GetCompetitor(ctx context.Context, id string) (*model.Competitor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at
		 FROM competitors WHERE id = $1`, id)

	var c model.Competitor
	err := row.Scan(&c.ID, &c.Name, &c.Website, &c.ChangelogURL, &c.SocialLinks, &c.Tags, &c.Buzz, &c.UserID, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, eris.Errorf("competitor not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get competitor")
	}
	return &c, nil
}

func (s *PostgresStore) ListCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, website, changelog_url, social_links, tags, buzz, user_id, created_at
		 FROM competitors ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.ChangelogURL, &c.SocialLinks, &c.Tags, &c.Buzz, &c.UserID, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list competitors iterate")
}

func (s *PostgresStore) UpdateCompetitorBuzz(ctx context.Context, id string, buzz int) error {
	tag, err := s.pool.Exec(ctx, `UPDATE competitors SET buzz = $1 WHERE id = $2`, buzz, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: update buzz %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("competitor not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteCompetitor(ctx context.Context, id string) error {
	// snapshots and changes cascade via FK.
	tag, err := s.pool.Exec(ctx, `DELETE FROM competitors WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete competitor %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("competitor not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CreateSnapshot(ctx context.Context, snap model.Snapshot) (*model.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO snapshots (id, competitor_id, url, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		snap.ID, snap.CompetitorID, snap.URL, snap.Content, snap.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, competitorID string) (*model.Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, competitor_id, url, content, created_at FROM snapshots
		 WHERE competitor_id = $1 ORDER BY created_at DESC LIMIT 1`, competitorID)

	var snap model.Snapshot
	err := row.Scan(&snap.ID, &snap.CompetitorID, &snap.URL, &snap.Content, &snap.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshot")
	}
	return &snap, nil
}

func (s *PostgresStore) CreateChange(ctx context.Context, c model.Change) (*model.Change, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.DetectedAt.IsZero() {
		c.DetectedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO changes (id, competitor_id, user_id, type, summary, details, url, detected_at,
		                      diff, impact, tags, category, before_screenshot, after_screenshot)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		c.ID, c.CompetitorID, c.UserID, c.Type, c.Summary, c.Details, c.URL, c.DetectedAt,
		c.Diff, c.Impact, sliceOrEmpty(c.Tags), string(c.Category), c.BeforeScreenshot, c.AfterScreenshot,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert change")
	}
	return &c, nil
}

func (s *PostgresStore) ListChangesSince(ctx context.Context, since time.Time) ([]model.Change, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, competitor_id, user_id, type, summary, details, url, detected_at,
		        diff, impact, tags, category, before_screenshot, after_screenshot
		 FROM changes WHERE detected_at >= $1 ORDER BY detected_at DESC`, since)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list changes")
	}
	defer rows.Close()

	var out []model.Change
	for rows.Next() {
		var c model.Change
		var category string
		if err := rows.Scan(&c.ID, &c.CompetitorID, &c.UserID, &c.Type, &c.Summary, &c.Details, &c.URL, &c.DetectedAt,
			&c.Diff, &c.Impact, &c.Tags, &category, &c.BeforeScreenshot, &c.AfterScreenshot); err != nil {
			return nil, eris.Wrap(err, "postgres: scan change")
		}
		c.Category = model.Category(category)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list changes iterate")
}
