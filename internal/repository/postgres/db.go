package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walink/internal/domain"
	"walink/internal/metrics"
	"walink/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique index collision
const uniqueViolation = "23505"

// schema is idempotent so Migrate can run on every start
const schema = `
CREATE TABLE IF NOT EXISTS short_links (
	id              UUID PRIMARY KEY,
	slug            TEXT NOT NULL UNIQUE,
	destination_uri TEXT NOT NULL,
	phone_number    TEXT NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	click_count     BIGINT NOT NULL DEFAULT 0 CHECK (click_count >= 0),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS click_events (
	id         BIGSERIAL PRIMARY KEY,
	link_id    UUID NOT NULL REFERENCES short_links(id) ON DELETE CASCADE,
	clicked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	referer    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_click_events_link ON click_events (link_id, clicked_at DESC);

CREATE TABLE IF NOT EXISTS articles (
	id               UUID PRIMARY KEY,
	title            TEXT NOT NULL,
	slug             TEXT NOT NULL UNIQUE,
	content          TEXT NOT NULL,
	excerpt          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
	language         TEXT NOT NULL DEFAULT 'ar' CHECK (language IN ('ar', 'en')),
	reading_time     INTEGER NOT NULL DEFAULT 0,
	view_count       BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
	meta_title       TEXT NOT NULL DEFAULT '',
	meta_description TEXT NOT NULL DEFAULT '',
	meta_keywords    TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	published_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_articles_listing ON articles (status, language, created_at DESC);
`

var (
	_ repository.LinkRepository    = (*LinkRepository)(nil)
	_ repository.ClickRepository   = (*ClickRepository)(nil)
	_ repository.ArticleRepository = (*ArticleRepository)(nil)
	_ repository.Migrator          = (*Store)(nil)
)

// InitDB initializes the database connection pool
// This is called once at application startup
func InitDB(ctx context.Context, dsn string, maxConns, minConns int, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnLifetime = maxLifetime
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Store bundles the Postgres repositories around one pool
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an initialized pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates tables and indexes that do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run postgres migrations: %w", err)
	}
	return nil
}

// Links returns the link repository
func (s *Store) Links() *LinkRepository { return NewLinkRepository(s.pool) }

// Clicks returns the click event repository
func (s *Store) Clicks() *ClickRepository { return NewClickRepository(s.pool) }

// Articles returns the article repository
func (s *Store) Articles() *ArticleRepository { return NewArticleRepository(s.pool) }

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// classify maps driver errors onto the domain taxonomy and records metrics
func classify(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFoundf("%s", subject)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.Conflictf("%s already exists", subject)
	}

	metrics.RecordDatabaseError(op)
	return domain.NewStorageError(op, err)
}

// validID rejects strings Postgres would refuse to cast to UUID
// A malformed id can never match a row, so callers treat it as not found
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
