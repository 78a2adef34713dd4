package generator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"walink/internal/domain"
	"walink/internal/metrics"
	"walink/pkg/logger"
	"walink/pkg/validator"
)

// Chain asks providers in order and falls back to a local template.
// A valid topic always produces a draft.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewChain creates a chain; timeout bounds every single provider attempt
func NewChain(providers []Provider, timeout time.Duration, logger *slog.Logger) *Chain {
	return &Chain{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// ProviderNames lists the configured providers in fallback order
func (c *Chain) ProviderNames() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate produces a draft article for topic
func (c *Chain) Generate(ctx context.Context, topic string, lang domain.Language) (*domain.DraftArticle, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.NewValidationError(validator.ErrEmptyTopic)
	}
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	if !lang.IsValid() {
		return nil, domain.NewValidationError(validator.ErrUnsupportedLang)
	}

	systemPrompt, prompt := buildArticlePrompt(topic, lang)
	if text, name, ok := c.firstAnswer(ctx, systemPrompt, prompt); ok {
		return BuildDraft(text, topic, lang, name, c.now()), nil
	}

	metrics.RecordTemplateFallback()
	logger.ForContext(ctx, c.logger).Info("all AI providers failed, using article template",
		"topic", topic,
		"language", lang,
		"providers", len(c.providers),
	)

	// The topic is rendered into the body, where markdown in it could read as a heading
	now := c.now()
	draft := BuildDraft(Template(topic, lang), topic, lang, TemplateSource, now)
	draft.Title = topic
	draft.Slug = SlugOrFallback(topic, now)
	return draft, nil
}

// GenerateSEOData asks for SEO metadata; the first provider that answers wins.
// Failures of any kind give an empty SEOData.
func (c *Chain) GenerateSEOData(ctx context.Context, title, excerpt string, lang domain.Language) domain.SEOData {
	if strings.TrimSpace(title) == "" {
		return domain.SEOData{}
	}

	systemPrompt, prompt := buildSEOPrompt(title, excerpt, lang)
	text, name, ok := c.firstAnswer(ctx, systemPrompt, prompt)
	if !ok {
		return domain.SEOData{}
	}

	seo := ParseSEOData(text)
	if seo.IsEmpty() {
		logger.ForContext(ctx, c.logger).Warn("AI provider returned unusable SEO data", "provider", name)
	}
	return seo
}

// firstAnswer walks the providers until one returns non-empty text
func (c *Chain) firstAnswer(ctx context.Context, systemPrompt, prompt string) (string, string, bool) {
	log := logger.ForContext(ctx, c.logger)
	for _, p := range c.providers {
		if ctx.Err() != nil {
			log.Warn("request cancelled, skipping remaining AI providers", "error", ctx.Err())
			return "", "", false
		}

		text, err := c.attempt(ctx, p, systemPrompt, prompt)
		if err != nil {
			log.Warn("AI provider failed",
				"provider", p.Name(),
				"error", domain.NewProviderError(p.Name(), err),
			)
			continue
		}
		return text, p.Name(), true
	}
	return "", "", false
}

func (c *Chain) attempt(ctx context.Context, p Provider, systemPrompt, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Generate(attemptCtx, systemPrompt, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyResponse
	}
	metrics.RecordProviderAttempt(p.Name(), time.Since(start).Seconds(), err)

	return text, err
}
