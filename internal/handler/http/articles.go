package http

import (
	"net/http"
	"time"

	"walink/internal/domain"
	"walink/internal/service"
)

type CreateArticleRequest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug,omitempty"`
	Content         string `json:"content"`
	Excerpt         string `json:"excerpt,omitempty"`
	Status          string `json:"status,omitempty"`
	Language        string `json:"language,omitempty"`
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
}

// UpdateArticleRequest leaves absent fields untouched
type UpdateArticleRequest struct {
	Title           *string `json:"title"`
	Slug            *string `json:"slug"`
	Content         *string `json:"content"`
	Excerpt         *string `json:"excerpt"`
	Status          *string `json:"status"`
	Language        *string `json:"language"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
}

type GenerateArticleRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language,omitempty"`
	WithSEO  *bool  `json:"with_seo,omitempty"`
}

func (req UpdateArticleRequest) toInput() service.UpdateArticleInput {
	in := service.UpdateArticleInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	}
	if req.Status != nil {
		status := domain.ArticleStatus(*req.Status)
		in.Status = &status
	}
	if req.Language != nil {
		lang := domain.Language(*req.Language)
		in.Language = &lang
	}
	return in
}

func articleFilter(r *http.Request) service.ArticleFilter {
	limit, offset := pagination(r)
	q := r.URL.Query()
	return service.ArticleFilter{
		Status:   domain.ArticleStatus(q.Get("status")),
		Language: domain.Language(q.Get("lang")),
		Limit:    limit,
		Offset:   offset,
	}
}

// ListArticles handles GET /blog-posts
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListPublished(r.Context(), articleFilter(r))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(articles))
}

// ListAllArticles handles GET /admin/blog-posts
func (h *Handler) ListAllArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.ListAll(r.Context(), articleFilter(r))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(articles))
}

// GetArticle handles GET /blog-posts/{slug}
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	view, err := h.articles.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CreateArticle handles POST /blog-posts
func (h *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req CreateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	article, err := h.articles.Create(r.Context(), service.CreateArticleInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		Excerpt:         req.Excerpt,
		Status:          domain.ArticleStatus(req.Status),
		Language:        domain.Language(req.Language),
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	})
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, article)
}

// UpdateArticle handles PUT /blog-posts/{id}
func (h *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	var req UpdateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	article, err := h.articles.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, article)
}

// DeleteArticle handles DELETE /blog-posts/{id}
func (h *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondOK(w)
}

// GenerateArticle handles POST /admin/generate-article
func (h *Handler) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var req GenerateArticleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	withSEO := req.WithSEO == nil || *req.WithSEO
	start := time.Now()

	draft, err := h.articles.GenerateDraft(r.Context(), req.Topic, domain.Language(req.Language), withSEO)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("article draft generated",
		"source", draft.Source,
		"language", draft.Language,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	respondJSON(w, http.StatusOK, draft)
}

// nonNil keeps empty listings as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
