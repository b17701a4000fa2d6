// Package token выпускает и проверяет подписанные access/refresh токены (JWT HS256).
//
// Access и refresh подписываются разными ключами и несут разный claim "typ",
// поэтому refresh-токен не может быть предъявлен как access и наоборот.
// Каждый токен содержит случайный jti: два токена, выпущенные в одну секунду,
// всё равно различаются.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid — подпись не сходится, формат битый, не тот вид токена или издатель.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

// Kind — вид токена.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Config — параметры выпуска токенов. Задаётся один раз при старте процесса.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Claims — полезная нагрузка токена. Email и Username есть только у access.
type Claims struct {
	UserID   string `json:"uid"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Kind     Kind   `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer выпускает и проверяет токены.
type Issuer struct {
	cfg Config
	now func() time.Time
}

// Option настраивает Issuer.
type Option func(*Issuer)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// New создаёт Issuer.
func New(cfg Config, opts ...Option) *Issuer {
	i := &Issuer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// AccessTTL возвращает время жизни access-токена.
func (i *Issuer) AccessTTL() time.Duration { return i.cfg.AccessTTL }

// RefreshTTL возвращает время жизни refresh-токена.
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

// IssueAccess выпускает access-токен с id, email и username.
func (i *Issuer) IssueAccess(userID uuid.UUID, email, username string) (string, time.Time, error) {
	return i.issue(Claims{
		UserID:   userID.String(),
		Email:    email,
		Username: username,
		Kind:     KindAccess,
	})
}

// IssueRefresh выпускает refresh-токен, несущий только id.
func (i *Issuer) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	return i.issue(Claims{
		UserID: userID.String(),
		Kind:   KindRefresh,
	})
}

func (i *Issuer) issue(c Claims) (string, time.Time, error) {
	const op = "security/token/issue"

	secret, ttl, err := i.params(c.Kind)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	now := i.now().UTC()
	exp := now.Add(ttl)

	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   c.UserID,
		Issuer:    i.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	// jwt хранит время с точностью до секунды.
	return signed, exp.Truncate(time.Second), nil
}

// Verify проверяет подпись, срок, издателя и вид токена.
// Истёкший токен — ErrTokenExpired, всё остальное — ErrTokenInvalid.
func (i *Issuer) Verify(tokenStr string, kind Kind) (*Claims, error) {
	const op = "security/token/Verify"

	secret, _, err := i.params(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if !tok.Valid || claims.Kind != kind {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	return claims, nil
}

// params возвращает ключ и TTL для вида токена.
func (i *Issuer) params(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return []byte(i.cfg.AccessSecret), i.cfg.AccessTTL, nil
	case KindRefresh:
		return []byte(i.cfg.RefreshSecret), i.cfg.RefreshTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q: %w", kind, ErrTokenInvalid)
	}
}

// PrincipalID возвращает идентификатор пользователя из claims.
func (c *Claims) PrincipalID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}
