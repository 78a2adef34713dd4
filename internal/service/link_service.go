package service

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"

	"walink/internal/domain"
	"walink/internal/metrics"
	"walink/internal/repository"
	"walink/pkg/logger"
	"walink/pkg/validator"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	statsClickLimit  = 100
)

// Cache is the slug lookup cache consulted before the repository
type Cache interface {
	GetLink(ctx context.Context, slug string) (*domain.ShortLink, error)
	SetLink(ctx context.Context, link *domain.ShortLink) error
	DeleteLink(ctx context.Context, slug string) error
}

// LinkOptions tunes slug generation and legacy behaviour
type LinkOptions struct {
	SlugLength          int
	MaxAttempts         int
	WidenEvery          int
	LegacyClickCounting bool
}

// DefaultLinkOptions are used by tests and the CLI
var DefaultLinkOptions = LinkOptions{SlugLength: 6, MaxAttempts: 10, WidenEvery: 3}

// LinkStats is a link with its most recent click events
type LinkStats struct {
	Link         *domain.ShortLink   `json:"link"`
	RecentClicks []*domain.ClickEvent `json:"recent_clicks"`
}

// LinkService creates and resolves WhatsApp short links
type LinkService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
	cache  Cache
	logger *slog.Logger
	opts   LinkOptions
	random io.Reader
}

// NewLinkService creates a new link service
func NewLinkService(links repository.LinkRepository, clicks repository.ClickRepository, cache Cache, logger *slog.Logger, opts LinkOptions) *LinkService {
	return &LinkService{
		links:  links,
		clicks: clicks,
		cache:  cache,
		logger: logger,
		opts:   opts,
		random: rand.Reader,
	}
}

// Create validates the phone and message and stores a new link.
// A custom slug is used as-is; otherwise random candidates are tried until one is free.
func (s *LinkService) Create(ctx context.Context, phone, message, customSlug string) (*domain.ShortLink, error) {
	normalized, err := validator.NormalizePhone(phone)
	if err != nil {
		return nil, domain.NewValidationError(err)
	}
	if err := validator.ValidateMessage(message); err != nil {
		return nil, domain.NewValidationError(err)
	}

	customSlug = strings.TrimSpace(customSlug)
	if customSlug != "" {
		if err := validator.ValidateCustomSlug(customSlug); err != nil {
			return nil, domain.NewValidationError(err)
		}
		link := domain.NewShortLink(normalized, message, customSlug)
		if err := s.insert(ctx, link); err != nil {
			return nil, err
		}
		return link, nil
	}

	attempts := 0
	for slug := range s.slugCandidates() {
		attempts++

		exists, err := s.links.ExistsSlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			metrics.RecordSlugCollision()
			continue
		}

		link := domain.NewShortLink(normalized, message, slug)
		err = s.insert(ctx, link)
		if errors.Is(err, domain.ErrConflict) {
			// taken between the check and the insert
			metrics.RecordSlugCollision()
			continue
		}
		if err != nil {
			return nil, err
		}
		return link, nil
	}

	return nil, domain.Conflictf("no free slug after %d attempts", attempts)
}

func (s *LinkService) insert(ctx context.Context, link *domain.ShortLink) error {
	if err := link.Validate(); err != nil {
		return domain.NewValidationError(err)
	}
	if err := s.links.Create(ctx, link); err != nil {
		return err
	}

	metrics.RecordLinkCreated()
	logger.ForContext(ctx, s.logger).Info("short link created", "link_id", link.ID, "slug", link.Slug)
	return nil
}

func (s *LinkService) slugCandidates() iter.Seq[string] {
	return SlugCandidates(s.random, s.opts.SlugLength, s.opts.MaxAttempts, s.opts.WidenEvery)
}

// Resolve looks up slug and counts the visit.
// Counting is best effort: a failed increment is logged and the link is still returned.
func (s *LinkService) Resolve(ctx context.Context, slug string, meta domain.ClickMeta) (*domain.ShortLink, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.NewValidationError(domain.ErrEmptySlug)
	}
	log := logger.ForContext(ctx, s.logger)

	link, err := s.cache.GetLink(ctx, slug)
	if err != nil {
		log.Warn("cache lookup failed", "slug", slug, "error", err)
		link = nil
	}

	if link == nil {
		link, err = s.links.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetLink(ctx, link); err != nil {
			log.Warn("failed to cache link", "slug", slug, "error", err)
		}
	}

	if err := s.links.IncrementClicks(ctx, link.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// cached copy of a link deleted elsewhere
			_ = s.cache.DeleteLink(ctx, slug)
			return nil, err
		}
		metrics.RecordClickIncrementFailure()
		log.Error("failed to increment click count", "link_id", link.ID, "error", err)
	} else {
		metrics.RecordClickRecorded()
	}

	s.recordClickEvent(ctx, link.ID, meta)
	metrics.RecordRedirect()
	return link, nil
}

func (s *LinkService) recordClickEvent(ctx context.Context, linkID string, meta domain.ClickMeta) {
	event := domain.NewClickEvent(linkID, meta.IPAddress, meta.UserAgent, meta.Referer)
	if err := s.clicks.Create(ctx, event); err != nil {
		logger.ForContext(ctx, s.logger).Warn("failed to record click event", "link_id", linkID, "error", err)
	}
}

// RecordClick backs the deprecated explicit click endpoint.
// Redirects already count, so the counter only moves when legacy counting is switched on.
func (s *LinkService) RecordClick(ctx context.Context, id string, meta domain.ClickMeta) error {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.opts.LegacyClickCounting {
		return nil
	}

	if err := s.links.IncrementClicks(ctx, link.ID); err != nil {
		return err
	}
	metrics.RecordClickRecorded()
	s.recordClickEvent(ctx, link.ID, meta)
	return nil
}

// Delete removes a link and evicts it from the cache
func (s *LinkService) Delete(ctx context.Context, id string) error {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.links.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.DeleteLink(ctx, link.Slug); err != nil {
		logger.ForContext(ctx, s.logger).Warn("failed to evict link from cache", "slug", link.Slug, "error", err)
	}
	return nil
}

// List returns links newest first
func (s *LinkService) List(ctx context.Context, limit, offset int) ([]*domain.ShortLink, error) {
	return s.links.List(ctx, clampLimit(limit), max(offset, 0))
}

// Stats returns a link with its recent click events
func (s *LinkService) Stats(ctx context.Context, id string) (*LinkStats, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	clicks, err := s.clicks.ListByLink(ctx, id, statsClickLimit)
	if err != nil {
		return nil, err
	}
	return &LinkStats{Link: link, RecentClicks: clicks}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
