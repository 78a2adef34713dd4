// Package storage opens the repository backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"walink/internal/config"
	"walink/internal/repository"
	"walink/internal/repository/postgres"
	"walink/internal/repository/sqlite"
)

// Backend is an open set of repositories sharing one connection pool
type Backend struct {
	Driver   string
	Links    repository.LinkRepository
	Clicks   repository.ClickRepository
	Articles repository.ArticleRepository

	migrator repository.Migrator
	close    func() error
}

// Open connects to the configured driver; the caller must Close the backend
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.InitDB(ctx, cfg.DatabaseDSN(), cfg.MaxConns, cfg.MinConns, cfg.ConnMaxLifetime)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool)
		return &Backend{
			Driver:   cfg.Driver,
			Links:    store.Links(),
			Clicks:   store.Clicks(),
			Articles: store.Articles(),
			migrator: store,
			close:    store.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store := sqlite.NewStore(db)
		return &Backend{
			Driver:   cfg.Driver,
			Links:    store.Links(),
			Clicks:   store.Clicks(),
			Articles: store.Articles(),
			migrator: store,
			close:    store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate brings the schema up to date; it is safe to run repeatedly
func (b *Backend) Migrate(ctx context.Context) error {
	return b.migrator.Migrate(ctx)
}

// Close releases the underlying connections
func (b *Backend) Close() error {
	return b.close()
}
