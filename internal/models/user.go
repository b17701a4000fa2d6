// Package models содержит доменные сущности marketplace-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись пользователя (principal).
// Важно:
//   - Username/Email хранятся нормализованными (trim + lower-case) и уникальны;
//   - PasswordHash — результат bcrypt, открытый пароль нигде не хранится;
//   - RefreshToken — единственный действующий refresh-токен или пустая строка.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FullName     string
	PhoneNumber  string
	PasswordHash string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser — профиль, который можно отдавать наружу.
// Не содержит PasswordHash и RefreshToken.
type PublicUser struct {
	ID          uuid.UUID
	Username    string
	Email       string
	FullName    string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Public возвращает публичную проекцию пользователя.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// AccountUpdate — изменяемые поля профиля.
type AccountUpdate struct {
	FullName    string
	PhoneNumber string
	Email       string
}

// Identity — данные, извлечённые из проверенного access-токена.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Username string
}

// Registration — данные для создания учётной записи.
type Registration struct {
	FullName    string
	PhoneNumber string
	Email       string
	Username    string
	Password    string
}
