// Package redact маскирует чувствительные данные перед записью в логи
// (e-mail, телефоны, токены, пароли), оставляя полезный для отладки контекст.
package redact

import "strings"

// Email маскирует e-mail: первые два символа локальной части + "***".
// Строка без ровно одного '@' редактируется полностью.
//
//	"foobar@example.com" -> "fo***@example.com"
//	"ab@ex.com"          -> "***@ex.com"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Phone оставляет только две последние цифры номера.
func Phone(s string) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	if len(digits) <= 2 {
		return "***"
	}

	return "***" + string(digits[len(digits)-2:])
}

// Login маскирует идентификатор для входа: e-mail или username.
func Login(s string) string {
	if strings.Contains(s, "@") {
		return Email(s)
	}

	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return string(r[:2]) + "***"
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }
