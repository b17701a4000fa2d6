package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/internal/pkg/redact"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

const (
	minPasswordLen = 6
	// bcrypt учитывает только первые 72 байта.
	maxPasswordLen = 72
	minUsernameLen = 3
)

// Register создаёт учётную запись и возвращает публичный профиль.
func (s *Service) Register(ctx context.Context, in models.Registration) (*models.PublicUser, error) {
	const op = "service.account.Register"

	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.PhoneNumber)
	username := normalize(in.Username)

	required := []struct{ field, value string }{
		{"fullName", fullName},
		{"phoneNumber", phone},
		{"email", in.Email},
		{"username", username},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%s: %s is required: %w", op, r.field, ErrInvalidArgument)
		}
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len([]rune(username)) < minUsernameLen {
		return nil, fmt.Errorf("%s: username is too short: %w", op, ErrInvalidArgument)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PhoneNumber:  phone,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(email)),
	)

	return user.Public(), nil
}

// CurrentUser возвращает публичный профиль пользователя.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.PublicUser, error) {
	const op = "service.account.CurrentUser"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPrincipalNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user.Public(), nil
}

// UpdateAccount меняет ФИО, телефон и email. Все три поля обязательны.
func (s *Service) UpdateAccount(ctx context.Context, userID uuid.UUID, upd models.AccountUpdate) (*models.PublicUser, error) {
	const op = "service.account.UpdateAccount"

	upd.FullName = strings.TrimSpace(upd.FullName)
	upd.PhoneNumber = strings.TrimSpace(upd.PhoneNumber)

	if upd.FullName == "" || upd.PhoneNumber == "" || strings.TrimSpace(upd.Email) == "" {
		return nil, fmt.Errorf("%s: all fields are required: %w", op, ErrInvalidArgument)
	}

	email, err := validateEmail(upd.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	upd.Email = email

	user, err := s.storage.UpdateAccount(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrPrincipalNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return user.Public(), nil
}

// normalize — trim + lower-case для username и email.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// validateEmail нормализует email и проверяет базовый формат.
func validateEmail(raw string) (string, error) {
	email := normalize(raw)
	if email == "" {
		return "", fmt.Errorf("email is required: %w", ErrInvalidArgument)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("invalid email format: %w", ErrInvalidArgument)
	}

	return email, nil
}

// validatePassword проверяет длину пароля в байтах.
func validatePassword(pw string) error {
	if len(pw) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrInvalidArgument)
	}

	if len(pw) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d bytes: %w", maxPasswordLen, ErrInvalidArgument)
	}

	return nil
}
