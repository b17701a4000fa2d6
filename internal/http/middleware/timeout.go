package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
)

// Timeout ограничивает обработку запроса бюджетом d. Уже существующий
// более ранний deadline сохраняется, более поздний сужается до d.
// Исчерпанный бюджет фиксируется записью request_deadline_exceeded.
// Значение <=0 делает мидлвар no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				log.From(ctx).LogAttrs(ctx, slog.LevelWarn, "request_deadline_exceeded",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Duration("budget", d),
				)
			}
		})
	}
}
