package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleStatus is the publication state of a blog post
type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPublished ArticleStatus = "published"
)

// ValidStatuses lists every accepted status
var ValidStatuses = []ArticleStatus{StatusDraft, StatusPublished}

// IsValid reports whether s is a known status
func (s ArticleStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Language is a supported content language
type Language string

const (
	LangArabic  Language = "ar"
	LangEnglish Language = "en"
)

// DefaultLanguage is used when a request does not specify one
const DefaultLanguage = LangArabic

// IsValid reports whether l is a supported language
func (l Language) IsValid() bool {
	return l == LangArabic || l == LangEnglish
}

// WordsPerMinute is the reading speed used for ReadingTime
// Arabic text is read more slowly than English
func (l Language) WordsPerMinute() int {
	if l == LangArabic {
		return 180
	}
	return 200
}

var (
	ErrArticleTitleRequired   = errors.New("article title is required")
	ErrArticleContentRequired = errors.New("article content is required")
	ErrArticleSlugRequired    = errors.New("article slug is required")
	ErrArticleInvalidStatus   = errors.New("article status must be draft or published")
	ErrArticleInvalidLanguage = errors.New("article language must be ar or en")
)

// Article is a blog post
// ReadingTime is derived from Content and must be refreshed through SetContent
type Article struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Content         string        `json:"content"`
	Excerpt         string        `json:"excerpt"`
	Status          ArticleStatus `json:"status"`
	Language        Language      `json:"language"`
	ReadingTime     int           `json:"reading_time"`
	ViewCount       int64         `json:"view_count"`
	MetaTitle       string        `json:"meta_title,omitempty"`
	MetaDescription string        `json:"meta_description,omitempty"`
	MetaKeywords    string        `json:"meta_keywords,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	PublishedAt     *time.Time    `json:"published_at,omitempty"`
}

// NewArticle creates a draft article with derived fields filled in
func NewArticle(title, slug, content string, lang Language) *Article {
	now := time.Now().UTC()
	a := &Article{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		Slug:      slug,
		Status:    StatusDraft,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.SetContent(content)
	return a
}

// SetContent replaces the body and recomputes the reading time
func (a *Article) SetContent(content string) {
	a.Content = content
	a.ReadingTime = ReadingTime(content, a.Language)
}

// Publish moves the article to published, stamping PublishedAt the first time
func (a *Article) Publish(now time.Time) {
	a.Status = StatusPublished
	if a.PublishedAt == nil {
		a.PublishedAt = &now
	}
}

// Validate checks the article before it is written to storage
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrArticleTitleRequired
	}
	if strings.TrimSpace(a.Content) == "" {
		return ErrArticleContentRequired
	}
	if a.Slug == "" {
		return ErrArticleSlugRequired
	}
	if !a.Status.IsValid() {
		return ErrArticleInvalidStatus
	}
	if !a.Language.IsValid() {
		return ErrArticleInvalidLanguage
	}
	return nil
}

// SEOData is search/social metadata suggested for an article
// Every field is a plain string so a failed generation is simply the zero value
type SEOData struct {
	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`
	Keywords        string `json:"keywords"`
	OGTitle         string `json:"og_title"`
	OGDescription   string `json:"og_description"`
	FocusKeyword    string `json:"focus_keyword"`
}

// IsEmpty reports whether no field was filled
func (s SEOData) IsEmpty() bool {
	return s == SEOData{}
}

// DraftArticle is the output of the generation chain, reviewed by an admin before saving
type DraftArticle struct {
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	Language    Language      `json:"language"`
	Status      ArticleStatus `json:"status"`
	ReadingTime int           `json:"reading_time"`
	Source      string        `json:"source"`
	SEO         SEOData       `json:"seo"`
}
