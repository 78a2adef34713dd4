package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"walink/internal/domain"
	"walink/internal/metrics"
	"walink/internal/repository"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"
)

var (
	_ repository.LinkRepository    = (*LinkRepository)(nil)
	_ repository.ClickRepository   = (*ClickRepository)(nil)
	_ repository.ArticleRepository = (*ArticleRepository)(nil)
	_ repository.Migrator          = (*Store)(nil)
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS short_links (
		id              TEXT PRIMARY KEY,
		slug            TEXT NOT NULL UNIQUE,
		destination_uri TEXT NOT NULL,
		phone_number    TEXT NOT NULL,
		message         TEXT NOT NULL DEFAULT '',
		click_count     INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0),
		created_at      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS click_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id    TEXT NOT NULL REFERENCES short_links(id) ON DELETE CASCADE,
		clicked_at TEXT NOT NULL,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		referer    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_click_events_link ON click_events (link_id, clicked_at)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		slug             TEXT NOT NULL UNIQUE,
		content          TEXT NOT NULL,
		excerpt          TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL DEFAULT 'draft',
		language         TEXT NOT NULL DEFAULT 'ar',
		reading_time     INTEGER NOT NULL DEFAULT 0,
		view_count       INTEGER NOT NULL DEFAULT 0 CHECK (view_count >= 0),
		meta_title       TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		meta_keywords    TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		published_at     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_listing ON articles (status, language, created_at)`,
}

// Open connects to a local SQLite file or a remote libsql (Turso) database
// Remote URLs use the libsql driver, everything else goes through modernc.org/sqlite.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	driverName, source := resolveDSN(dsn)

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	// SQLite has a single writer; one connection also keeps in-memory databases alive
	if driverName == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	return db, nil
}

func resolveDSN(dsn string) (driver, source string) {
	switch {
	case strings.HasPrefix(dsn, "libsql://"), strings.HasPrefix(dsn, "wss://"), strings.HasPrefix(dsn, "https://"):
		return "libsql", dsn
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return "sqlite", dsn
	default:
		return "sqlite", formatDBPath(dsn)
	}
}

// formatDBPath adds the pragmas used for on-disk databases
func formatDBPath(path string) string {
	params := url.Values{}
	params.Set("mode", "rwc")
	params.Set("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Add("_pragma", "busy_timeout(5000)")

	return "file:" + path + "?" + params.Encode()
}

// Store bundles the SQLite repositories around one *sql.DB
type Store struct {
	db   *sql.DB
	goqu *goqu.Database
}

// NewStore wraps an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, goqu: goqu.New("sqlite3", db)}
}

// Migrate creates tables and indexes that do not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run sqlite migrations: %w", err)
		}
	}
	return nil
}

// Links returns the link repository
func (s *Store) Links() *LinkRepository { return &LinkRepository{db: s.goqu} }

// Clicks returns the click event repository
func (s *Store) Clicks() *ClickRepository { return &ClickRepository{db: s.goqu} }

// Articles returns the article repository
func (s *Store) Articles() *ArticleRepository { return &ArticleRepository{db: s.goqu} }

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// classify maps driver errors onto the domain taxonomy
func classify(op, subject string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.Conflictf("%s already exists", subject)
	}
	metrics.RecordDatabaseError(op)
	return domain.NewStorageError(op, err)
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func affected(res sql.Result) int64 {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}
