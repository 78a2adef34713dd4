package postgres

import (
	"context"
	"time"

	"walink/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LinkRepository is the PostgreSQL implementation of repository.LinkRepository
type LinkRepository struct {
	db *pgxpool.Pool
}

// NewLinkRepository creates a new PostgreSQL link repository
func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, slug, destination_uri, phone_number, message, click_count, created_at`

// Create inserts a new link; the unique index on slug turns races into ErrConflict
func (r *LinkRepository) Create(ctx context.Context, link *domain.ShortLink) error {
	defer observe("link_create", time.Now())

	query := `
		INSERT INTO short_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		link.ID,
		link.Slug,
		link.DestinationURI,
		link.PhoneNumber,
		link.Message,
		link.ClickCount,
		link.CreatedAt,
	)
	return classify("link_create", "slug "+link.Slug, err)
}

// GetBySlug retrieves a link by its slug
func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*domain.ShortLink, error) {
	defer observe("link_get", time.Now())

	query := `SELECT ` + linkColumns + ` FROM short_links WHERE slug = $1`

	link, err := scanLink(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, classify("link_get", "link "+slug, err)
	}
	return link, nil
}

// GetByID retrieves a link by its UUID
func (r *LinkRepository) GetByID(ctx context.Context, id string) (*domain.ShortLink, error) {
	if !validID(id) {
		return nil, domain.NotFoundf("link %s", id)
	}
	defer observe("link_get", time.Now())

	query := `SELECT ` + linkColumns + ` FROM short_links WHERE id = $1`

	link, err := scanLink(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classify("link_get", "link "+id, err)
	}
	return link, nil
}

// List returns links, newest first
func (r *LinkRepository) List(ctx context.Context, limit, offset int) ([]*domain.ShortLink, error) {
	defer observe("link_list", time.Now())

	query := `
		SELECT ` + linkColumns + `
		FROM short_links
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, classify("link_list", "links", err)
	}
	defer rows.Close()

	links := make([]*domain.ShortLink, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, classify("link_list", "links", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("link_list", "links", err)
	}

	return links, nil
}

// IncrementClicks atomically increases the click counter
// The read and the write happen inside one statement, so concurrent clicks are never lost
func (r *LinkRepository) IncrementClicks(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NotFoundf("link %s", id)
	}
	defer observe("link_increment", time.Now())

	result, err := r.db.Exec(ctx, `UPDATE short_links SET click_count = click_count + 1 WHERE id = $1`, id)
	if err != nil {
		return classify("link_increment", "link "+id, err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFoundf("link %s", id)
	}
	return nil
}

// ExistsSlug checks if a slug is already taken
func (r *LinkRepository) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	defer observe("link_exists", time.Now())

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM short_links WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, classify("link_exists", "slug "+slug, err)
	}
	return exists, nil
}

// Delete removes a link; click events go with it through ON DELETE CASCADE
func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NotFoundf("link %s", id)
	}
	defer observe("link_delete", time.Now())

	result, err := r.db.Exec(ctx, `DELETE FROM short_links WHERE id = $1`, id)
	if err != nil {
		return classify("link_delete", "link "+id, err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFoundf("link %s", id)
	}
	return nil
}

func scanLink(row scanner) (*domain.ShortLink, error) {
	link := &domain.ShortLink{}
	err := row.Scan(
		&link.ID,
		&link.Slug,
		&link.DestinationURI,
		&link.PhoneNumber,
		&link.Message,
		&link.ClickCount,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}
