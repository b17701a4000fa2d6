// Package service содержит бизнес-логику marketplace-сервиса:
// жизненный цикл учётных данных и сессий (login/refresh/logout/смена пароля),
// профиль пользователя, лоты и загрузку файлов.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для конкурентного
//     использования при условии, что хранилища потокобезопасны.
//   - Единственная общая изменяемая сущность — запись пользователя в хранилище
//     (refresh-токен и хэш пароля); ротация refresh-токена выполняется как
//     compare-and-swap на стороне хранилища.
//   - Ошибки возвращаются обёрнутыми; sentinel-ошибки ниже маппятся транспортом
//     на HTTP-статусы. Ошибки хэширования, токенов и хранилища остаются в цепочке.
package service

import (
	"errors"
	"sync"

	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/security/password"
	"github.com/pribylovaa/go-marketplace/internal/security/token"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

var (
	// ErrInvalidArgument — входные данные не прошли валидацию (HTTP 400).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists — username, email или телефон уже заняты (HTTP 409).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound — лот не найден или принадлежит другому продавцу (HTTP 404).
	ErrNotFound = errors.New("not found")

	// ErrPrincipalNotFound — пользователь с указанным id отсутствует (HTTP 404).
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrInvalidCredentials — неверная пара логин/пароль. Одинакова для
	// «нет такого пользователя» и «неверный пароль» (HTTP 401).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized — токен не предъявлен, истёк, подделан или вытеснен
	// более поздним login/refresh (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")
)

// PasswordHasher — одностороннее хэширование паролей.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

// Service описывает бизнес-логику marketplace-сервиса.
type Service struct {
	cfg     *config.Config
	storage storage.Storage
	objects storage.ObjectStorage
	hasher  PasswordHasher
	tokens  *token.Issuer

	// Фиктивный хэш для сравнения при неизвестном логине; строится лениво текущим hasher.
	dummyOnce sync.Once
	dummyHash string
}

// Option настраивает Service.
type Option func(*Service)

// WithHasher подменяет реализацию хэширования паролей.
func WithHasher(h PasswordHasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithTokenIssuer подменяет выпуск токенов (например, с фиксированными часами).
func WithTokenIssuer(i *token.Issuer) Option {
	return func(s *Service) { s.tokens = i }
}

// New создаёт Service. По умолчанию хэшер и выпуск токенов строятся из cfg.Auth.
func New(st storage.Storage, objects storage.ObjectStorage, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		storage: st,
		objects: objects,
		hasher:  password.New(cfg.Auth.BcryptCost),
		tokens:  token.New(TokenConfig(cfg.Auth)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TokenConfig переводит секцию auth конфигурации в параметры выпуска токенов.
func TokenConfig(a config.AuthConfig) token.Config {
	return token.Config{
		AccessSecret:  a.AccessTokenSecret,
		RefreshSecret: a.RefreshTokenSecret,
		AccessTTL:     a.AccessTokenTTL,
		RefreshTTL:    a.RefreshTokenTTL,
		Issuer:        a.Issuer,
	}
}
