// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: sentinel-ошибки пакетов service и storage.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-marketplace/internal/service"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal;
//   - отмена и дедлайн контекста проверяются раньше недоступности хранилища,
//     т.к. драйвер оборачивает их вместе;
//   - неизвестная ошибка - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	httpStatus, code, msg := classify(err)

	return httpStatus, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — таблица маппинга:
//   - ErrInvalidArgument -> 400
//   - ErrInvalidCredentials -> 401 (одинаково для неизвестного логина и неверного пароля)
//   - ErrUnauthorized -> 401 (токен отсутствует, истёк, подделан или вытеснен)
//   - ErrNotFound, ErrPrincipalNotFound -> 404
//   - ErrAlreadyExists -> 409
//   - context.Canceled -> 499
//   - context.DeadlineExceeded -> 504
//   - storage.ErrUnavailable -> 503
//   - прочее -> 500/internal
func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrPrincipalNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", "already exists"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
