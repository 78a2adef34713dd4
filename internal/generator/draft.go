package generator

import (
	"fmt"
	"strings"
	"time"

	"walink/internal/domain"
	"walink/pkg/markdown"
)

// ExcerptRunes bounds the derived excerpt
const ExcerptRunes = 160

// BuildDraft applies the same post-processing to provider and template output
func BuildDraft(content, topic string, lang domain.Language, source string, now time.Time) *domain.DraftArticle {
	content = strings.TrimSpace(stripMarkdownFence(content))

	title, ok := markdown.FirstHeading(content, 1)
	if !ok {
		title = strings.TrimSpace(topic)
	}

	return &domain.DraftArticle{
		Title:       title,
		Slug:        SlugOrFallback(title, now),
		Content:     content,
		Excerpt:     Excerpt(content),
		Language:    lang,
		Status:      domain.StatusDraft,
		ReadingTime: domain.ReadingTime(content, lang),
		Source:      source,
	}
}

// SlugOrFallback slugifies title, using article-<unix> when nothing survives
func SlugOrFallback(title string, now time.Time) string {
	if slug := domain.Slugify(title); slug != "" {
		return slug
	}
	return fmt.Sprintf("article-%d", now.Unix())
}

// Excerpt is the first top-level paragraph as plain text, cut to ExcerptRunes
func Excerpt(content string) string {
	para, ok := markdown.FirstParagraph(content)
	if !ok {
		return ""
	}
	return domain.TruncateRunes(para, ExcerptRunes)
}

// stripMarkdownFence unwraps a reply that put the whole article in a ``` block
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return s
	}

	inner := strings.TrimSuffix(trimmed, "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		return inner[nl+1:]
	}
	return s
}
