// Package password — одностороннее хэширование паролей (bcrypt).
//
// Каждый вызов Hash использует свежую соль, поэтому два хэша одного и того же
// пароля различаются, но оба проходят Verify. Ошибка примитива (например,
// повреждённый хэш в хранилище) возвращается как ErrHashingFailure и никогда
// не превращается в «неверный пароль».
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashingFailure — ошибка самого bcrypt: не удалось построить хэш
// или сохранённый хэш невалиден.
var ErrHashingFailure = errors.New("password hashing failure")

// Hasher хэширует и проверяет пароли с заданной стоимостью bcrypt.
// Безопасен для конкурентного использования.
type Hasher struct {
	cost int
}

// New создаёт Hasher. Стоимость вне [bcrypt.MinCost, bcrypt.MaxCost]
// заменяется на bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash возвращает солёный bcrypt-хэш пароля.
func (h *Hasher) Hash(plain string) (string, error) {
	const op = "security/password/Hash"

	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrHashingFailure, err)
	}

	return string(b), nil
}

// Verify сообщает, был ли plain входом для hash.
// Несовпадение — (false, nil); любая другая ошибка bcrypt — ErrHashingFailure.
func (h *Hasher) Verify(plain, hash string) (bool, error) {
	const op = "security/password/Verify"

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w: %w", op, ErrHashingFailure, err)
	}
}
