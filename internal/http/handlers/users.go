package handlers

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-marketplace/internal/http/errors"
	"github.com/pribylovaa/go-marketplace/internal/metrics"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/service"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad json"))
		return
	}

	user, err := h.svc.Register(r.Context(), in.toModel())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, userFromModel(user))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad json"))
		return
	}

	sess, err := h.svc.Login(r.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.event(metrics.EventLoginFailed)
		}
		apierrors.WriteError(w, r, err)
		return
	}

	h.event(metrics.EventLoginOK)
	h.setTokenCookies(w, sess.Tokens)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:           userFromModel(sess.User),
		tokensResponse: tokensFromModel(sess.Tokens),
	})
}

// RefreshToken берёт refresh-токен из cookie, затем из JSON-тела.
// Отвергнутый токен сбрасывает cookie, чтобы клиент не предъявлял его снова.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		presented = strings.TrimSpace(c.Value)
	}

	if presented == "" {
		var in refreshRequest
		if err := decodeOptional(r, &in); err != nil {
			apierrors.WriteError(w, r, invalidArgument("bad json"))
			return
		}
		presented = strings.TrimSpace(in.RefreshToken)
	}

	pair, err := h.svc.Refresh(r.Context(), presented)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			h.event(metrics.EventRefreshRejected)
			h.clearTokenCookies(w)
		}
		apierrors.WriteError(w, r, err)
		return
	}

	h.event(metrics.EventRefreshOK)
	h.setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, tokensFromModel(pair))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.Logout(r.Context(), id.UserID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.event(metrics.EventLogout)
	h.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

// ChangePassword меняет пароль; активная сессия при этом отзывается,
// поэтому cookie тоже сбрасываются.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in changePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad json"))
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id.UserID, in.OldPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), id.UserID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in updateAccountRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad json"))
		return
	}

	user, err := h.svc.UpdateAccount(r.Context(), id.UserID, models.AccountUpdate{
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userFromModel(user))
}
