package http

import (
	"net/http"
	"strings"
	"time"
)

// AdminCookie carries the signed admin session
const AdminCookie = "admin_token"

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CheckResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login handles POST /admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, int(h.opts.SessionTTL.Seconds())))
	respondJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /admin/logout
// Tokens are stateless, so logging out only drops the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respondOK(w)
}

// Check handles GET /admin/check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CheckResponse{Authenticated: h.auth.Check(sessionToken(r))})
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     AdminCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionToken reads the admin token from the cookie, then from a Bearer header
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(AdminCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
