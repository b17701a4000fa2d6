package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/go-marketplace/internal/http/middleware"
	"github.com/pribylovaa/go-marketplace/internal/models"
)

// RefreshTokenCookie — имя cookie с refresh-токеном.
const RefreshTokenCookie = "refreshToken"

func (h *Handlers) setTokenCookies(w http.ResponseWriter, p *models.TokenPair) {
	http.SetCookie(w, h.cookie(middleware.AccessTokenCookie, p.AccessToken, p.AccessExpiresAt))
	http.SetCookie(w, h.cookie(RefreshTokenCookie, p.RefreshToken, p.RefreshExpiresAt))
}

func (h *Handlers) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := h.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *Handlers) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookies.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSiteMode(),
	}
}
