package http

import (
	"errors"
	"net/http"
	"time"

	"walink/internal/domain"
	"walink/internal/service"

	"github.com/samber/lo"
)

type CreateLinkRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message,omitempty"`
	CustomSlug  string `json:"custom_slug,omitempty"`
}

type LinkResponse struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	ShortURL       string    `json:"short_url"`
	DestinationURI string    `json:"destination_uri"`
	PhoneNumber    string    `json:"phone_number"`
	Message        string    `json:"message,omitempty"`
	ClickCount     int64     `json:"click_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type LinkStatsResponse struct {
	Link         LinkResponse `json:"link"`
	RecentClicks []ClickInfo  `json:"recent_clicks"`
}

type ClickInfo struct {
	ClickedAt time.Time `json:"clicked_at"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

func (h *Handler) linkResponse(link *domain.ShortLink) LinkResponse {
	return LinkResponse{
		ID:             link.ID,
		Slug:           link.Slug,
		ShortURL:       h.opts.PublicBaseURL + "/s/" + link.Slug,
		DestinationURI: link.DestinationURI,
		PhoneNumber:    link.PhoneNumber,
		Message:        link.Message,
		ClickCount:     link.ClickCount,
		CreatedAt:      link.CreatedAt,
	}
}

// CreateLink handles POST /whatsapp-links
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.links.Create(r.Context(), req.PhoneNumber, req.Message, req.CustomSlug)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, h.linkResponse(link))
}

// Redirect handles GET /s/{slug}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	link, err := h.links.Resolve(r.Context(), slug, clickMeta(r))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.notFound.render(w, r)
			return
		}
		respondDomainError(w, r, h.logger, err)
		return
	}

	// 302: counting depends on every visit reaching us
	http.Redirect(w, r, link.DestinationURI, http.StatusFound)
}

// ListLinks handles GET /whatsapp-links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	links, err := h.links.List(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, lo.Map(links, func(l *domain.ShortLink, _ int) LinkResponse {
		return h.linkResponse(l)
	}))
}

// LinkStats handles GET /whatsapp-links/{id}/stats
func (h *Handler) LinkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.links.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, h.statsResponse(stats))
}

func (h *Handler) statsResponse(stats *service.LinkStats) LinkStatsResponse {
	return LinkStatsResponse{
		Link: h.linkResponse(stats.Link),
		RecentClicks: lo.Map(stats.RecentClicks, func(c *domain.ClickEvent, _ int) ClickInfo {
			return ClickInfo{ClickedAt: c.ClickedAt, UserAgent: c.UserAgent, Referer: c.Referer}
		}),
	}
}

// DeleteLink handles DELETE /whatsapp-links/{id}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondOK(w)
}

// RecordClick handles the deprecated POST /whatsapp-links/{id}/click
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Deprecation", "true")

	if err := h.links.RecordClick(r.Context(), r.PathValue("id"), clickMeta(r)); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondOK(w)
}
