// Package storage описывает контракты хранилищ marketplace-сервиса
// и общие для всех реализаций ошибки.
package storage

//go:generate mockgen -destination=../../mocks/storage.go -package=mocks github.com/pribylovaa/go-marketplace/internal/storage ObjectStorage,Storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушена уникальность (username, email, телефон).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCursor — битый или чужой page_token.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidArgument — объект отвергнут хранилищем (тип, размер).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable — ошибка транспорта/драйвера; оборачивает исходную ошибку.
	ErrUnavailable = errors.New("store unavailable")
)

// UserStorage — хранилище учётных записей (credential store).
// Все методы при ошибке драйвера возвращают ErrUnavailable.
type UserStorage interface {
	// CreateUser сохраняет нового пользователя.
	// Конфликт по username/email/phone_number — ErrAlreadyExists.
	CreateUser(ctx context.Context, user *models.User) error

	// UserByLogin ищет пользователя по username ИЛИ email (пустые значения игнорируются).
	// Если ничего не найдено — ErrNotFound.
	UserByLogin(ctx context.Context, username, email string) (*models.User, error)

	// UserByID возвращает пользователя по идентификатору или ErrNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateRefreshToken безусловно записывает refresh-токен ("" — очистить).
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken заменяет refresh-токен, только если текущее значение равно old.
	// Если пользователь не найден или значение уже другое — ErrNotFound.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error

	// UpdatePasswordHash заменяет хэш пароля и очищает refresh-токен.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	// UpdateAccount меняет ФИО, телефон и email и возвращает обновлённую запись.
	UpdateAccount(ctx context.Context, id uuid.UUID, upd models.AccountUpdate) (*models.User, error)
}

// ProductStorage — хранилище лотов.
// Изменяющие операции ограничены продавцом: чужой лот неотличим от отсутствующего (ErrNotFound).
type ProductStorage interface {
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)

	// ListProducts — сначала новые; при битом page_token — ErrInvalidCursor.
	ListProducts(ctx context.Context, params models.ListParams) (*models.ProductPage, error)

	UpdateProduct(ctx context.Context, id string, sellerID uuid.UUID, upd models.ProductUpdate) (*models.Product, error)
	UpdateProductImage(ctx context.Context, id string, sellerID uuid.UUID, imageURL string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string, sellerID uuid.UUID) error
}

// FileStorage — метаданные загруженных файлов.
type FileStorage interface {
	SaveFile(ctx context.Context, file models.File) (*models.File, error)
}

// Storage объединяет все контракты документного хранилища.
type Storage interface {
	UserStorage
	ProductStorage
	FileStorage

	// Ping проверяет доступность хранилища (readiness).
	Ping(ctx context.Context) error
	// Close закрывает соединения.
	Close(ctx context.Context) error
}

// ObjectStorage — объектное хранилище для изображений и файлов.
type ObjectStorage interface {
	// Upload кладёт объект под ключом <prefix>/<uuid><ext> и возвращает публичный URL.
	// Недопустимый тип или размер — ErrInvalidArgument.
	Upload(ctx context.Context, prefix string, up models.Upload) (string, error)
}
