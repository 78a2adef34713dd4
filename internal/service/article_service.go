package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"walink/internal/domain"
	"walink/internal/generator"
	"walink/internal/metrics"
	"walink/internal/repository"
	"walink/pkg/logger"
	"walink/pkg/markdown"
	"walink/pkg/validator"
)

// ArticleGenerator drafts articles and SEO metadata
type ArticleGenerator interface {
	Generate(ctx context.Context, topic string, lang domain.Language) (*domain.DraftArticle, error)
	GenerateSEOData(ctx context.Context, title, excerpt string, lang domain.Language) domain.SEOData
}

// CreateArticleInput carries a new article; empty fields take defaults
type CreateArticleInput struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          domain.ArticleStatus
	Language        domain.Language
	MetaTitle       string
	MetaDescription string
	MetaKeywords    string
}

// UpdateArticleInput is a partial update; nil fields are left alone
type UpdateArticleInput struct {
	Title           *string
	Slug            *string
	Content         *string
	Excerpt         *string
	Status          *domain.ArticleStatus
	Language        *domain.Language
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
}

// ArticleFilter narrows listings
type ArticleFilter struct {
	Status   domain.ArticleStatus
	Language domain.Language
	Limit    int
	Offset   int
}

// ArticleView is a published article with its rendered body
type ArticleView struct {
	*domain.Article
	HTML string `json:"html"`
}

// ArticleOptions tune article generation
type ArticleOptions struct {
	// GenerateTimeout bounds one GenerateDraft call, article and SEO together; zero means no bound
	GenerateTimeout time.Duration
}

// ArticleService manages blog posts
type ArticleService struct {
	articles  repository.ArticleRepository
	generator ArticleGenerator
	logger    *slog.Logger
	opts      ArticleOptions
	now       func() time.Time
}

// NewArticleService creates a new article service
func NewArticleService(articles repository.ArticleRepository, gen ArticleGenerator, logger *slog.Logger, opts ArticleOptions) *ArticleService {
	return &ArticleService{
		articles:  articles,
		generator: gen,
		logger:    logger,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new article.
// An explicit slug must be free; a derived one gets a timestamp suffix when taken.
func (s *ArticleService) Create(ctx context.Context, in CreateArticleInput) (*domain.Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError(validator.ErrEmptyTitle)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.NewValidationError(validator.ErrEmptyContent)
	}

	lang, err := resolveLanguage(in.Language)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError(validator.ErrUnsupportedStatus)
	}

	now := s.now()
	slug, err := s.resolveSlug(ctx, in.Slug, title, now)
	if err != nil {
		return nil, err
	}

	article := domain.NewArticle(title, slug, in.Content, lang)
	article.Excerpt = strings.TrimSpace(in.Excerpt)
	if article.Excerpt == "" {
		article.Excerpt = generator.Excerpt(in.Content)
	}
	article.MetaTitle = strings.TrimSpace(in.MetaTitle)
	article.MetaDescription = strings.TrimSpace(in.MetaDescription)
	article.MetaKeywords = strings.TrimSpace(in.MetaKeywords)
	if status == domain.StatusPublished {
		article.Publish(now)
	}

	if err := article.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	metrics.RecordArticleCreated(string(lang))
	logger.ForContext(ctx, s.logger).Info("article created", "article_id", article.ID, "slug", article.Slug, "status", article.Status)
	return article, nil
}

func (s *ArticleService) resolveSlug(ctx context.Context, explicit, title string, now time.Time) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if err := validator.ValidateArticleSlug(explicit); err != nil {
			return "", domain.NewValidationError(err)
		}
		exists, err := s.articles.ExistsSlug(ctx, explicit)
		if err != nil {
			return "", err
		}
		if exists {
			return "", domain.Conflictf("article slug %s already exists", explicit)
		}
		return explicit, nil
	}

	slug := generator.SlugOrFallback(title, now)
	exists, err := s.articles.ExistsSlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		slug = fmt.Sprintf("%s-%d", slug, now.Unix())
	}
	return slug, nil
}

// ListPublished returns published articles, newest first
func (s *ArticleService) ListPublished(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error) {
	filter.Status = domain.StatusPublished
	return s.list(ctx, filter)
}

// ListAll returns articles in any status for admins
func (s *ArticleService) ListAll(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.NewValidationError(validator.ErrUnsupportedStatus)
	}
	return s.list(ctx, filter)
}

func (s *ArticleService) list(ctx context.Context, filter ArticleFilter) ([]*domain.Article, error) {
	if filter.Language != "" && !filter.Language.IsValid() {
		return nil, domain.NewValidationError(validator.ErrUnsupportedLang)
	}
	return s.articles.List(ctx, repository.ArticleFilter{
		Status:   filter.Status,
		Language: filter.Language,
		Limit:    clampLimit(filter.Limit),
		Offset:   max(filter.Offset, 0),
	})
}

// GetBySlug returns a published article and counts the view.
// Drafts are reported as not found.
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*ArticleView, error) {
	article, err := s.articles.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.StatusPublished {
		return nil, domain.NotFoundf("article %s", slug)
	}

	if err := s.articles.IncrementViews(ctx, article.ID); err != nil {
		logger.ForContext(ctx, s.logger).Warn("failed to increment view count", "article_id", article.ID, "error", err)
	} else {
		article.ViewCount++
		metrics.RecordArticleView()
	}

	return &ArticleView{Article: article, HTML: markdown.RenderHTML(article.Content)}, nil
}

// GetByID returns an article in any status
func (s *ArticleService) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return s.articles.GetByID(ctx, id)
}

// Update applies a partial update
func (s *ArticleService) Update(ctx context.Context, id string, in UpdateArticleInput) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if in.Title != nil {
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Slug != nil && *in.Slug != article.Slug {
		slug := strings.TrimSpace(*in.Slug)
		if err := validator.ValidateArticleSlug(slug); err != nil {
			return nil, domain.NewValidationError(err)
		}
		article.Slug = slug
	}
	if in.Language != nil {
		lang, err := resolveLanguage(*in.Language)
		if err != nil {
			return nil, err
		}
		article.Language = lang
	}

	if in.Content != nil {
		article.SetContent(*in.Content)
		if in.Excerpt == nil {
			article.Excerpt = generator.Excerpt(article.Content)
		}
	} else if in.Language != nil {
		article.SetContent(article.Content)
	}
	if in.Excerpt != nil {
		article.Excerpt = strings.TrimSpace(*in.Excerpt)
	}

	if in.MetaTitle != nil {
		article.MetaTitle = strings.TrimSpace(*in.MetaTitle)
	}
	if in.MetaDescription != nil {
		article.MetaDescription = strings.TrimSpace(*in.MetaDescription)
	}
	if in.MetaKeywords != nil {
		article.MetaKeywords = strings.TrimSpace(*in.MetaKeywords)
	}

	if in.Status != nil {
		switch *in.Status {
		case domain.StatusPublished:
			article.Publish(now)
		case domain.StatusDraft:
			article.Status = domain.StatusDraft
		default:
			return nil, domain.NewValidationError(validator.ErrUnsupportedStatus)
		}
	}

	if err := article.Validate(); err != nil {
		return nil, domain.NewValidationError(err)
	}
	article.UpdatedAt = now

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes an article
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	return s.articles.Delete(ctx, id)
}

// GenerateDraft runs the generation chain, optionally followed by SEO suggestions.
// The draft is not stored. SEO is skipped for template drafts and once the deadline has passed.
func (s *ArticleService) GenerateDraft(ctx context.Context, topic string, lang domain.Language, withSEO bool) (*domain.DraftArticle, error) {
	genCtx := ctx
	if s.opts.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.opts.GenerateTimeout)
		defer cancel()
	}

	draft, err := s.generator.Generate(genCtx, topic, lang)
	if err != nil {
		return nil, err
	}

	if withSEO && draft.Source != generator.TemplateSource && genCtx.Err() == nil {
		draft.SEO = s.generator.GenerateSEOData(genCtx, draft.Title, draft.Excerpt, draft.Language)
	}

	exists, err := s.articles.ExistsSlug(ctx, draft.Slug)
	switch {
	case err != nil:
		logger.ForContext(ctx, s.logger).Warn("could not check draft slug", "slug", draft.Slug, "error", err)
	case exists:
		draft.Slug = fmt.Sprintf("%s-%d", draft.Slug, s.now().Unix())
	}
	return draft, nil
}

func resolveLanguage(lang domain.Language) (domain.Language, error) {
	if lang == "" {
		return domain.DefaultLanguage, nil
	}
	if !lang.IsValid() {
		return "", domain.NewValidationError(validator.ErrUnsupportedLang)
	}
	return lang, nil
}
