package http

import (
	"net/http"
	"net/netip"

	"walink/internal/ratelimit"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig selects the optional parts of the HTTP surface
type RouterConfig struct {
	AllowedOrigins []string
	EnableMetrics  bool

	// peers allowed to set X-Forwarded-For and X-Real-IP
	TrustedProxies []netip.Prefix

	// nil limiters leave the route unlimited
	LinkLimiter  ratelimit.Limiter
	LoginLimiter ratelimit.Limiter
}

// NewRouter registers every route and wraps the mux in the global middleware
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	admin := RequireAdmin(h.auth)

	limited := func(l ratelimit.Limiter, next http.HandlerFunc) http.Handler {
		if l == nil {
			return next
		}
		return RateLimitMiddleware(l, h.logger)(next)
	}
	protected := func(next http.HandlerFunc) http.Handler {
		return admin(next)
	}

	// Short links
	mux.HandleFunc("GET /s/{slug}", h.Redirect)
	mux.HandleFunc("GET /s/{$}", h.Redirect)
	mux.Handle("POST /whatsapp-links", limited(cfg.LinkLimiter, h.CreateLink))
	mux.Handle("GET /whatsapp-links", protected(h.ListLinks))
	mux.Handle("GET /whatsapp-links/{id}/stats", protected(h.LinkStats))
	mux.Handle("DELETE /whatsapp-links/{id}", protected(h.DeleteLink))
	mux.HandleFunc("POST /whatsapp-links/{id}/click", h.RecordClick)

	// Blog
	mux.HandleFunc("GET /blog-posts", h.ListArticles)
	mux.HandleFunc("GET /blog-posts/{slug}", h.GetArticle)
	mux.Handle("POST /blog-posts", protected(h.CreateArticle))
	mux.Handle("PUT /blog-posts/{id}", protected(h.UpdateArticle))
	mux.Handle("DELETE /blog-posts/{id}", protected(h.DeleteArticle))

	// Admin
	mux.Handle("POST /admin/login", limited(cfg.LoginLimiter, h.Login))
	mux.HandleFunc("POST /admin/logout", h.Logout)
	mux.HandleFunc("GET /admin/check", h.Check)
	mux.Handle("GET /admin/blog-posts", protected(h.ListAllArticles))
	mux.Handle("POST /admin/generate-article", protected(h.GenerateArticle))

	// Ops
	mux.HandleFunc("GET /health/live", h.HealthCheck)
	if cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Recovery is outermost so it also covers the other middleware
	return Chain(
		RecoveryMiddleware(h.logger),
		RequestIDMiddleware,
		ClientIPMiddleware(cfg.TrustedProxies),
		LoggingMiddleware(h.logger),
		MetricsMiddleware,
		CORSMiddleware(cfg.AllowedOrigins),
	)(mux)
}
