package sqlite

import (
	"context"
	"time"

	"walink/internal/domain"
	"walink/internal/repository"

	"github.com/doug-martin/goqu/v9"
)

const articlesTable = "articles"

type articleRow struct {
	ID              string `db:"id"`
	Title           string `db:"title"`
	Slug            string `db:"slug"`
	Content         string `db:"content"`
	Excerpt         string `db:"excerpt"`
	Status          string `db:"status"`
	Language        string `db:"language"`
	ReadingTime     int    `db:"reading_time"`
	ViewCount       int64  `db:"view_count"`
	MetaTitle       string `db:"meta_title"`
	MetaDescription string `db:"meta_description"`
	MetaKeywords    string `db:"meta_keywords"`
	CreatedAt       Date   `db:"created_at"`
	UpdatedAt       Date   `db:"updated_at"`
	PublishedAt     *Date  `db:"published_at"`
}

func (r articleRow) toDomain() *domain.Article {
	return &domain.Article{
		ID:              r.ID,
		Title:           r.Title,
		Slug:            r.Slug,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		Status:          domain.ArticleStatus(r.Status),
		Language:        domain.Language(r.Language),
		ReadingTime:     r.ReadingTime,
		ViewCount:       r.ViewCount,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		MetaKeywords:    r.MetaKeywords,
		CreatedAt:       r.CreatedAt.Time(),
		UpdatedAt:       r.UpdatedAt.Time(),
		PublishedAt:     r.PublishedAt.timePtr(),
	}
}

// editableColumns are written by both Create and Update
func editableColumns(a *domain.Article) goqu.Record {
	return goqu.Record{
		"title":            a.Title,
		"slug":             a.Slug,
		"content":          a.Content,
		"excerpt":          a.Excerpt,
		"status":           string(a.Status),
		"language":         string(a.Language),
		"reading_time":     a.ReadingTime,
		"meta_title":       a.MetaTitle,
		"meta_description": a.MetaDescription,
		"meta_keywords":    a.MetaKeywords,
		"updated_at":       Date(a.UpdatedAt),
		"published_at":     nullableDate(a.PublishedAt),
	}
}

// ArticleRepository is the SQLite implementation of repository.ArticleRepository
type ArticleRepository struct {
	db *goqu.Database
}

func (r *ArticleRepository) Create(ctx context.Context, a *domain.Article) error {
	defer observe("article_create", time.Now())

	record := editableColumns(a)
	record["id"] = a.ID
	record["view_count"] = a.ViewCount
	record["created_at"] = Date(a.CreatedAt)

	_, err := r.db.Insert(articlesTable).Rows(record).Executor().ExecContext(ctx)
	return classify("article_create", "article slug "+a.Slug, err)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return r.getOne(ctx, goqu.C("id").Eq(id), "article "+id)
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.getOne(ctx, goqu.C("slug").Eq(slug), "article "+slug)
}

func (r *ArticleRepository) getOne(ctx context.Context, where goqu.Expression, subject string) (*domain.Article, error) {
	defer observe("article_get", time.Now())

	var row articleRow
	found, err := r.db.From(articlesTable).Where(where).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, classify("article_get", subject, err)
	}
	if !found {
		return nil, domain.NotFoundf("%s", subject)
	}
	return row.toDomain(), nil
}

func (r *ArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]*domain.Article, error) {
	defer observe("article_list", time.Now())

	ds := r.db.From(articlesTable)
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.Language != "" {
		ds = ds.Where(goqu.C("language").Eq(string(filter.Language)))
	}

	var rows []articleRow
	err := ds.
		Order(goqu.L("COALESCE(published_at, created_at)").Desc()).
		Limit(uint(filter.Limit)).
		Offset(uint(filter.Offset)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, classify("article_list", "articles", err)
	}

	articles := make([]*domain.Article, len(rows))
	for i, row := range rows {
		articles[i] = row.toDomain()
	}
	return articles, nil
}

func (r *ArticleRepository) Update(ctx context.Context, a *domain.Article) error {
	defer observe("article_update", time.Now())

	res, err := r.db.Update(articlesTable).
		Set(editableColumns(a)).
		Where(goqu.C("id").Eq(a.ID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return classify("article_update", "article slug "+a.Slug, err)
	}
	if affected(res) == 0 {
		return domain.NotFoundf("article %s", a.ID)
	}
	return nil
}

func (r *ArticleRepository) IncrementViews(ctx context.Context, id string) error {
	defer observe("article_increment", time.Now())

	res, err := r.db.Update(articlesTable).
		Set(goqu.Record{"view_count": goqu.L("view_count + 1")}).
		Where(goqu.C("id").Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return classify("article_increment", "article "+id, err)
	}
	if affected(res) == 0 {
		return domain.NotFoundf("article %s", id)
	}
	return nil
}

func (r *ArticleRepository) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	defer observe("article_exists", time.Now())

	count, err := r.db.From(articlesTable).Where(goqu.C("slug").Eq(slug)).CountContext(ctx)
	if err != nil {
		return false, classify("article_exists", "article slug "+slug, err)
	}
	return count > 0, nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	defer observe("article_delete", time.Now())

	res, err := r.db.Delete(articlesTable).Where(goqu.C("id").Eq(id)).Executor().ExecContext(ctx)
	if err != nil {
		return classify("article_delete", "article "+id, err)
	}
	if affected(res) == 0 {
		return domain.NotFoundf("article %s", id)
	}
	return nil
}
