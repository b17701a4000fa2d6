package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/internal/pkg/redact"
	"github.com/pribylovaa/go-marketplace/internal/security/token"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

// Login проверяет пароль пользователя, найденного по username или email,
// выпускает пару токенов и сохраняет refresh-токен до возврата результата.
// Неизвестный пользователь и неверный пароль дают одну и ту же ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, email, plain string) (*models.Session, error) {
	const op = "service.session.Login"

	lg := log.From(ctx)

	username, email = normalize(username), normalize(email)
	if (username == "" && email == "") || plain == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.verifyDummy(plain)
			lg.Info("login_failed",
				slog.String("op", op),
				slog.String("login", redact.Login(firstNonEmpty(email, username))),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.hasher.Verify(plain, user.PasswordHash)
	if err != nil {
		lg.Error("password_verify_failed",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		lg.Info("login_failed",
			slog.String("op", op),
			slog.String("login", redact.Login(firstNonEmpty(email, username))),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("login_ok", slog.String("user_id", user.ID.String()))

	return &models.Session{User: user.Public(), Tokens: pair}, nil
}

// verifyDummy сравнивает пароль с фиктивным хэшем той же стоимости:
// неизвестный логин обрабатывается столько же, сколько неверный пароль.
func (s *Service) verifyDummy(plain string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("marketplace-unknown-principal")
	})

	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(plain, s.dummyHash)
	}
}

// Refresh обменивает действующий refresh-токен на новую пару.
//
// Токен принимается, только если он совпадает с сохранённым у пользователя
// (rotation guard). Предъявление подписанного, но вытесненного токена
// отзывает сохранённый refresh-токен: вся цепочка сессии завершается.
func (s *Service) Refresh(ctx context.Context, presented string) (*models.TokenPair, error) {
	const op = "service.session.Refresh"

	lg := log.From(ctx)

	if presented == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	claims, err := s.tokens.Verify(presented, token.KindRefresh)
	if err != nil {
		lg.Info("refresh_rejected",
			slog.String("op", op),
			slog.String("reason", err.Error()),
		)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}

	uid := claims.PrincipalID()

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(user.RefreshToken)) != 1 {
		lg.Warn("refresh_rejected",
			slog.String("op", op),
			slog.String("user_id", uid.String()),
			slog.String("reason", "superseded"),
		)
		s.revokeLineage(ctx, user)
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.RotateRefreshToken(ctx, uid, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Параллельный refresh или logout успел раньше.
			lg.Warn("refresh_rejected",
				slog.String("op", op),
				slog.String("user_id", uid.String()),
				slog.String("reason", "lost_rotation"),
			)
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("refresh_ok", slog.String("user_id", uid.String()))

	return pair, nil
}

// revokeLineage сбрасывает сохранённый refresh-токен, если он не поменялся с момента чтения.
func (s *Service) revokeLineage(ctx context.Context, user *models.User) {
	if user.RefreshToken == "" {
		return
	}

	err := s.storage.RotateRefreshToken(ctx, user.ID, user.RefreshToken, "")
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.From(ctx).Error("refresh_revoke_failed",
			slog.String("user_id", user.ID.String()),
			slog.String("err", err.Error()),
		)
	}
}

// Logout безусловно очищает refresh-токен пользователя. Идемпотентен.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.session.Logout"

	if err := s.storage.UpdateRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("logout", slog.String("user_id", userID.String()))

	return nil
}

// ChangePassword меняет пароль после проверки текущего.
// Новый хэш записывается вместе с отзывом refresh-токена: остальные сессии завершаются.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPlain, newPlain string) error {
	const op = "service.session.ChangePassword"

	if oldPlain == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if err := validatePassword(newPlain); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPrincipalNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := s.hasher.Verify(oldPlain, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := s.hasher.Hash(newPlain)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPrincipalNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("password_changed", slog.String("user_id", userID.String()))

	return nil
}

// Authenticate проверяет access-токен без обращения к хранилищу.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.Identity, error) {
	const op = "service.session.Authenticate"

	if accessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	claims, err := s.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	}

	return &models.Identity{
		UserID:   claims.PrincipalID(),
		Email:    claims.Email,
		Username: claims.Username,
	}, nil
}

// issuePair выпускает access+refresh для пользователя.
func (s *Service) issuePair(user *models.User) (*models.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}
