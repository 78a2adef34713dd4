package postgres

import (
	"context"
	"time"

	"walink/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClickRepository is the PostgreSQL implementation for click analytics
type ClickRepository struct {
	db *pgxpool.Pool
}

// NewClickRepository creates a new PostgreSQL click repository
func NewClickRepository(db *pgxpool.Pool) *ClickRepository {
	return &ClickRepository{db: db}
}

// Create inserts a new click event
func (r *ClickRepository) Create(ctx context.Context, click *domain.ClickEvent) error {
	defer observe("click_create", time.Now())

	query := `
		INSERT INTO click_events (link_id, clicked_at, ip_address, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		click.LinkID,
		click.ClickedAt,
		click.IPAddress,
		click.UserAgent,
		click.Referer,
	).Scan(&click.ID)

	return classify("click_create", "click", err)
}

// ListByLink returns the newest clicks of one link
func (r *ClickRepository) ListByLink(ctx context.Context, linkID string, limit int) ([]*domain.ClickEvent, error) {
	if !validID(linkID) {
		return []*domain.ClickEvent{}, nil
	}
	defer observe("click_list", time.Now())

	query := `
		SELECT id, link_id, clicked_at, ip_address, user_agent, referer
		FROM click_events
		WHERE link_id = $1
		ORDER BY clicked_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, classify("click_list", "clicks", err)
	}
	defer rows.Close()

	clicks := make([]*domain.ClickEvent, 0)
	for rows.Next() {
		click := &domain.ClickEvent{}
		if err := rows.Scan(
			&click.ID,
			&click.LinkID,
			&click.ClickedAt,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referer,
		); err != nil {
			return nil, classify("click_list", "clicks", err)
		}
		clicks = append(clicks, click)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("click_list", "clicks", err)
	}

	return clicks, nil
}
