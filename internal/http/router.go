// Package http собирает REST-поверхность marketplace на chi.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/http/handlers"
	"github.com/pribylovaa/go-marketplace/internal/http/middleware"
	"github.com/pribylovaa/go-marketplace/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	BasePath       string // например, "/api/v1"; если пустой — роуты регистрируются на корне.
	Cookies        config.CookieConfig
	MaxUploadBytes int64
	Metrics        *metrics.Metrics // nil — без метрик.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Metrics != nil {
		root.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, handlers.Config{
		Cookies:        opts.Cookies,
		MaxUploadBytes: opts.MaxUploadBytes,
		Events:         opts.Metrics,
	})
	auth := middleware.Authenticate(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, auth)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, auth)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Middleware) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/current-user", h.CurrentUser)
			r.Patch("/update-account", h.UpdateAccount)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{productId}", h.ProductByID)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.CreateProduct)
			r.Patch("/{productId}", h.UpdateProduct)
			r.Delete("/{productId}", h.DeleteProduct)
			r.Patch("/{productId}/image", h.UpdateProductImage)
		})
	})

	r.Post("/upload", h.UploadFile)
}
