package postgres

import (
	"context"
	"time"

	"walink/internal/domain"
	"walink/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleRepository is the PostgreSQL implementation of repository.ArticleRepository
type ArticleRepository struct {
	db *pgxpool.Pool
}

// NewArticleRepository creates a new PostgreSQL article repository
func NewArticleRepository(db *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = `id, title, slug, content, excerpt, status, language, reading_time,
	view_count, meta_title, meta_description, meta_keywords, created_at, updated_at, published_at`

// Create inserts a new article
func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	defer observe("article_create", time.Now())

	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		a.ID,
		a.Title,
		a.Slug,
		a.Content,
		a.Excerpt,
		string(a.Status),
		string(a.Language),
		a.ReadingTime,
		a.ViewCount,
		a.MetaTitle,
		a.MetaDescription,
		a.MetaKeywords,
		a.CreatedAt,
		a.UpdatedAt,
		a.PublishedAt,
	)
	return classify("article_create", "article slug "+a.Slug, err)
}

// GetByID retrieves an article by its UUID
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	if !validID(id) {
		return nil, domain.NotFoundf("article %s", id)
	}
	defer observe("article_get", time.Now())

	a, err := scanArticle(r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err != nil {
		return nil, classify("article_get", "article "+id, err)
	}
	return a, nil
}

// GetBySlug retrieves an article by its slug
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	defer observe("article_get", time.Now())

	a, err := scanArticle(r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug))
	if err != nil {
		return nil, classify("article_get", "article "+slug, err)
	}
	return a, nil
}

// List returns articles matching the filter, newest first
// Empty filter fields match everything
func (r *ArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]*domain.Article, error) {
	defer observe("article_list", time.Now())

	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR language = $2)
		ORDER BY COALESCE(published_at, created_at) DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, string(filter.Status), string(filter.Language), filter.Limit, filter.Offset)
	if err != nil {
		return nil, classify("article_list", "articles", err)
	}
	defer rows.Close()

	articles := make([]*domain.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, classify("article_list", "articles", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("article_list", "articles", err)
	}

	return articles, nil
}

// Update writes every editable column; view_count is left alone
func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	if !validID(a.ID) {
		return domain.NotFoundf("article %s", a.ID)
	}
	defer observe("article_update", time.Now())

	query := `
		UPDATE articles
		SET title = $1, slug = $2, content = $3, excerpt = $4, status = $5, language = $6,
		    reading_time = $7, meta_title = $8, meta_description = $9, meta_keywords = $10,
		    updated_at = $11, published_at = $12
		WHERE id = $13
	`

	result, err := r.db.Exec(
		ctx,
		query,
		a.Title,
		a.Slug,
		a.Content,
		a.Excerpt,
		string(a.Status),
		string(a.Language),
		a.ReadingTime,
		a.MetaTitle,
		a.MetaDescription,
		a.MetaKeywords,
		a.UpdatedAt,
		a.PublishedAt,
		a.ID,
	)
	if err != nil {
		return classify("article_update", "article slug "+a.Slug, err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFoundf("article %s", a.ID)
	}
	return nil
}

// IncrementViews atomically increases the view counter
func (r *ArticleRepository) IncrementViews(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NotFoundf("article %s", id)
	}
	defer observe("article_increment", time.Now())

	result, err := r.db.Exec(ctx, `UPDATE articles SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return classify("article_increment", "article "+id, err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFoundf("article %s", id)
	}
	return nil
}

// ExistsSlug checks if an article slug is taken
func (r *ArticleRepository) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	defer observe("article_exists", time.Now())

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, classify("article_exists", "article slug "+slug, err)
	}
	return exists, nil
}

// Delete removes an article
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NotFoundf("article %s", id)
	}
	defer observe("article_delete", time.Now())

	result, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return classify("article_delete", "article "+id, err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFoundf("article %s", id)
	}
	return nil
}

func scanArticle(row scanner) (*domain.Article, error) {
	a := &domain.Article{}
	var status, language string
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Slug,
		&a.Content,
		&a.Excerpt,
		&status,
		&language,
		&a.ReadingTime,
		&a.ViewCount,
		&a.MetaTitle,
		&a.MetaDescription,
		&a.MetaKeywords,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ArticleStatus(status)
	a.Language = domain.Language(language)
	return a, nil
}
