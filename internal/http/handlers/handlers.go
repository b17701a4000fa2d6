// Package handlers содержит REST-обработчики marketplace: пользователи и сессии,
// лоты, загрузка файлов.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/http/middleware"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/service"
)

// UserService — учётные записи и сессии.
type UserService interface {
	Register(ctx context.Context, in models.Registration) (*models.PublicUser, error)
	Login(ctx context.Context, username, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.PublicUser, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, upd models.AccountUpdate) (*models.PublicUser, error)
}

// ProductService — лоты.
type ProductService interface {
	ListProducts(ctx context.Context, params models.ListParams) (*models.ProductPage, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, draft models.Product, image *models.Upload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, sellerID uuid.UUID, upd models.ProductUpdate) (*models.Product, error)
	UpdateProductImage(ctx context.Context, id string, sellerID uuid.UUID, image *models.Upload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string, sellerID uuid.UUID) error
}

// FileService — загрузка файлов.
type FileService interface {
	UploadFile(ctx context.Context, up models.Upload) (*models.File, error)
}

// Service — всё, что нужно HTTP-слою от бизнес-логики.
type Service interface {
	UserService
	ProductService
	FileService
	middleware.Authenticator
}

// AuthEvents принимает события жизненного цикла сессии (для метрик).
type AuthEvents interface {
	AuthEvent(event string)
}

// Config — параметры обработчиков.
type Config struct {
	Cookies        config.CookieConfig
	MaxUploadBytes int64
	Events         AuthEvents
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc     Service
	cookies config.CookieConfig
	// Лимит тела multipart-запроса: файл + запас на поля формы.
	maxBody int64
	events  AuthEvents
}

const formOverheadBytes = 1 << 20

func New(svc Service, cfg Config) *Handlers {
	return &Handlers{
		svc:     svc,
		cookies: cfg.Cookies,
		maxBody: cfg.MaxUploadBytes + formOverheadBytes,
		events:  cfg.Events,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// decodeOptional — как decodeStrict, но пустое тело не ошибка.
func decodeOptional(r *http.Request, value any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	if err := decodeStrict(r, value); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// invalidArgument — локальная ошибка разбора запроса.
func invalidArgument(reason string) error {
	return fmt.Errorf("%s: %w", reason, service.ErrInvalidArgument)
}

// identity — личность из контекста; маршрут обязан стоять за Authenticate.
func identity(r *http.Request) (*models.Identity, error) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return nil, fmt.Errorf("no identity in context: %w", service.ErrUnauthorized)
	}

	return id, nil
}

func (h *Handlers) event(name string) {
	if h.events != nil {
		h.events.AuthEvent(name)
	}
}
