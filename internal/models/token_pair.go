package models

import "time"

// TokenPair — пара токенов, выдаваемая при логине и refresh.
//
// Описание:
//   - AccessToken — короткоживущий JWT с id, email и username;
//   - RefreshToken — долгоживущий JWT только с id; его значение также
//     записывается в User.RefreshToken;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC).
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Session — результат успешного логина.
type Session struct {
	User   *PublicUser
	Tokens *TokenPair
}
