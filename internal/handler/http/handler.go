package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"walink/internal/domain"
	"walink/internal/service"
)

// LinkService is the short-link behaviour the handlers need
type LinkService interface {
	Create(ctx context.Context, phone, message, customSlug string) (*domain.ShortLink, error)
	Resolve(ctx context.Context, slug string, meta domain.ClickMeta) (*domain.ShortLink, error)
	RecordClick(ctx context.Context, id string, meta domain.ClickMeta) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.ShortLink, error)
	Stats(ctx context.Context, id string) (*service.LinkStats, error)
}

// ArticleService is the blog behaviour the handlers need
type ArticleService interface {
	Create(ctx context.Context, in service.CreateArticleInput) (*domain.Article, error)
	ListPublished(ctx context.Context, filter service.ArticleFilter) ([]*domain.Article, error)
	ListAll(ctx context.Context, filter service.ArticleFilter) ([]*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*service.ArticleView, error)
	Update(ctx context.Context, id string, in service.UpdateArticleInput) (*domain.Article, error)
	Delete(ctx context.Context, id string) error
	GenerateDraft(ctx context.Context, topic string, lang domain.Language, withSEO bool) (*domain.DraftArticle, error)
}

// AuthService issues and checks admin sessions
type AuthService interface {
	Login(ctx context.Context, password string) (*service.Session, error)
	Verify(token string) error
	Check(token string) bool
}

// Options carries the handler settings that come from configuration
type Options struct {
	PublicBaseURL string
	CookieSecure  bool
	SessionTTL    time.Duration
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	links    LinkService
	articles ArticleService
	auth     AuthService
	logger   *slog.Logger
	opts     Options
	notFound *notFoundPage
}

// NewHandler creates a new HTTP handler
func NewHandler(links LinkService, articles ArticleService, auth AuthService, logger *slog.Logger, opts Options) *Handler {
	return &Handler{
		links:    links,
		articles: articles,
		auth:     auth,
		logger:   logger,
		opts:     opts,
		notFound: newNotFoundPage(opts.PublicBaseURL),
	}
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// maxBodyBytes caps every JSON request body
const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, answering 400 or 413 itself on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, CodeValidation, "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, CodeValidation, "Invalid JSON body")
		return false
	}
	return true
}

// pagination reads ?limit= and ?offset=; bad values fall back to service defaults
func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

func clickMeta(r *http.Request) domain.ClickMeta {
	return domain.ClickMeta{
		IPAddress: extractIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}
}
