package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/go-marketplace/internal/http/errors"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/internal/service"
)

// AccessTokenCookie — имя cookie с access-токеном.
const AccessTokenCookie = "accessToken"

type identityKey struct{}

// Authenticator проверяет access-токен и возвращает личность владельца.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
}

// Authenticate требует валидный access-токен: из Authorization: Bearer
// или из cookie accessToken. Без токена или с невалидным токеном запрос
// завершается 401, обработчик не вызывается.
func Authenticate(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := accessToken(r)
			if raw == "" {
				apierrors.WriteError(w, r, fmt.Errorf("missing access token: %w", service.ErrUnauthorized))
				return
			}

			id, err := a.Authenticate(r.Context(), raw)
			if err != nil {
				log.From(r.Context()).Debug("auth_rejected",
					slog.String("path", r.URL.Path),
					slog.String("err", err.Error()),
				)
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, id *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom достаёт личность, положенную Authenticate.
func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*models.Identity)
	return id, ok && id != nil
}

func accessToken(r *http.Request) string {
	const prefix = "Bearer "

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
		if tok := strings.TrimSpace(auth[len(prefix):]); tok != "" {
			return tok
		}
	}

	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}

	return ""
}
