package repository

import (
	"context"

	"walink/internal/domain"
)

// Every implementation maps a missing row to domain.ErrNotFound, a unique
// violation to domain.ErrConflict, and any other failure to domain.ErrStorage.

// LinkRepository stores short links
type LinkRepository interface {
	// Create inserts a new link; a taken slug yields domain.ErrConflict
	Create(ctx context.Context, link *domain.ShortLink) error

	// GetBySlug retrieves a link by its public slug
	GetBySlug(ctx context.Context, slug string) (*domain.ShortLink, error)

	// GetByID retrieves a link by its UUID
	GetByID(ctx context.Context, id string) (*domain.ShortLink, error)

	// List returns links, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.ShortLink, error)

	// IncrementClicks runs click_count = click_count + 1 in a single statement
	IncrementClicks(ctx context.Context, id string) error

	// ExistsSlug checks if a slug is already taken
	ExistsSlug(ctx context.Context, slug string) (bool, error)

	// Delete removes a link and its click events
	Delete(ctx context.Context, id string) error
}

// ClickRepository stores per-click analytics events
type ClickRepository interface {
	Create(ctx context.Context, click *domain.ClickEvent) error

	// ListByLink returns the most recent clicks of a link
	ListByLink(ctx context.Context, linkID string, limit int) ([]*domain.ClickEvent, error)
}

// ArticleFilter narrows article listings
type ArticleFilter struct {
	Status   domain.ArticleStatus // empty means any status
	Language domain.Language      // empty means any language
	Limit    int
	Offset   int
}

// ArticleRepository stores blog posts
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error)

	// Update overwrites the editable fields; view_count is never written here
	Update(ctx context.Context, article *domain.Article) error

	// IncrementViews runs view_count = view_count + 1 in a single statement
	IncrementViews(ctx context.Context, id string) error

	ExistsSlug(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Migrator is implemented by backends that can create their own schema
type Migrator interface {
	Migrate(ctx context.Context) error
}
