package sqlite

import (
	"context"
	"time"

	"walink/internal/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	linksTable  = "short_links"
	clicksTable = "click_events"
)

type linkRow struct {
	ID             string `db:"id"`
	Slug           string `db:"slug"`
	DestinationURI string `db:"destination_uri"`
	PhoneNumber    string `db:"phone_number"`
	Message        string `db:"message"`
	ClickCount     int64  `db:"click_count"`
	CreatedAt      Date   `db:"created_at"`
}

func (r linkRow) toDomain() *domain.ShortLink {
	return &domain.ShortLink{
		ID:             r.ID,
		Slug:           r.Slug,
		DestinationURI: r.DestinationURI,
		PhoneNumber:    r.PhoneNumber,
		Message:        r.Message,
		ClickCount:     r.ClickCount,
		CreatedAt:      r.CreatedAt.Time(),
	}
}

// LinkRepository is the SQLite implementation of repository.LinkRepository
type LinkRepository struct {
	db *goqu.Database
}

func (r *LinkRepository) Create(ctx context.Context, link *domain.ShortLink) error {
	defer observe("link_create", time.Now())

	_, err := r.db.Insert(linksTable).Rows(goqu.Record{
		"id":              link.ID,
		"slug":            link.Slug,
		"destination_uri": link.DestinationURI,
		"phone_number":    link.PhoneNumber,
		"message":         link.Message,
		"click_count":     link.ClickCount,
		"created_at":      Date(link.CreatedAt),
	}).Executor().ExecContext(ctx)

	return classify("link_create", "slug "+link.Slug, err)
}

func (r *LinkRepository) GetBySlug(ctx context.Context, slug string) (*domain.ShortLink, error) {
	return r.getOne(ctx, goqu.C("slug").Eq(slug), "link "+slug)
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*domain.ShortLink, error) {
	return r.getOne(ctx, goqu.C("id").Eq(id), "link "+id)
}

func (r *LinkRepository) getOne(ctx context.Context, where goqu.Expression, subject string) (*domain.ShortLink, error) {
	defer observe("link_get", time.Now())

	var row linkRow
	found, err := r.db.From(linksTable).Where(where).ScanStructContext(ctx, &row)
	if err != nil {
		return nil, classify("link_get", subject, err)
	}
	if !found {
		return nil, domain.NotFoundf("%s", subject)
	}
	return row.toDomain(), nil
}

func (r *LinkRepository) List(ctx context.Context, limit, offset int) ([]*domain.ShortLink, error) {
	defer observe("link_list", time.Now())

	var rows []linkRow
	err := r.db.From(linksTable).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, classify("link_list", "links", err)
	}

	links := make([]*domain.ShortLink, len(rows))
	for i, row := range rows {
		links[i] = row.toDomain()
	}
	return links, nil
}

// IncrementClicks is a single UPDATE, so concurrent clicks serialize inside SQLite
func (r *LinkRepository) IncrementClicks(ctx context.Context, id string) error {
	defer observe("link_increment", time.Now())

	res, err := r.db.Update(linksTable).
		Set(goqu.Record{"click_count": goqu.L("click_count + 1")}).
		Where(goqu.C("id").Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return classify("link_increment", "link "+id, err)
	}
	if affected(res) == 0 {
		return domain.NotFoundf("link %s", id)
	}
	return nil
}

func (r *LinkRepository) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	defer observe("link_exists", time.Now())

	count, err := r.db.From(linksTable).Where(goqu.C("slug").Eq(slug)).CountContext(ctx)
	if err != nil {
		return false, classify("link_exists", "slug "+slug, err)
	}
	return count > 0, nil
}

// Delete removes click events explicitly since foreign keys may be off for remote databases
func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	defer observe("link_delete", time.Now())

	if _, err := r.db.Delete(clicksTable).Where(goqu.C("link_id").Eq(id)).Executor().ExecContext(ctx); err != nil {
		return classify("link_delete", "link "+id, err)
	}

	res, err := r.db.Delete(linksTable).Where(goqu.C("id").Eq(id)).Executor().ExecContext(ctx)
	if err != nil {
		return classify("link_delete", "link "+id, err)
	}
	if affected(res) == 0 {
		return domain.NotFoundf("link %s", id)
	}
	return nil
}

type clickRow struct {
	ID        int64  `db:"id"`
	LinkID    string `db:"link_id"`
	ClickedAt Date   `db:"clicked_at"`
	IPAddress string `db:"ip_address"`
	UserAgent string `db:"user_agent"`
	Referer   string `db:"referer"`
}

// ClickRepository is the SQLite implementation of repository.ClickRepository
type ClickRepository struct {
	db *goqu.Database
}

func (r *ClickRepository) Create(ctx context.Context, click *domain.ClickEvent) error {
	defer observe("click_create", time.Now())

	res, err := r.db.Insert(clicksTable).Rows(goqu.Record{
		"link_id":    click.LinkID,
		"clicked_at": Date(click.ClickedAt),
		"ip_address": click.IPAddress,
		"user_agent": click.UserAgent,
		"referer":    click.Referer,
	}).Executor().ExecContext(ctx)
	if err != nil {
		return classify("click_create", "click", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		click.ID = id
	}
	return nil
}

func (r *ClickRepository) ListByLink(ctx context.Context, linkID string, limit int) ([]*domain.ClickEvent, error) {
	defer observe("click_list", time.Now())

	var rows []clickRow
	err := r.db.From(clicksTable).
		Where(goqu.C("link_id").Eq(linkID)).
		Order(goqu.C("clicked_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, classify("click_list", "clicks", err)
	}

	clicks := make([]*domain.ClickEvent, len(rows))
	for i, row := range rows {
		clicks[i] = &domain.ClickEvent{
			ID:        row.ID,
			LinkID:    row.LinkID,
			ClickedAt: row.ClickedAt.Time(),
			IPAddress: row.IPAddress,
			UserAgent: row.UserAgent,
			Referer:   row.Referer,
		}
	}
	return clicks, nil
}
