package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver принимает длительность обработанного запроса.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// Metrics измеряет длительность запроса. В метку route попадает шаблон
// маршрута chi (например, /api/v1/products/{productId}), а не сырой путь,
// чтобы кардинальность не росла с числом id.
func Metrics(obs RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			obs.ObserveRequest(r.Method, routePattern(r), sw.Status(), time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}

	return "unmatched"
}
