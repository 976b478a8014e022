package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenInspector смотрит на токен сессии без проверки подписи.
// Подпись проверяет только user service, клиенту токен непрозрачен;
// единственное что мы извлекаем это exp, если токен оказался JWT.
type TokenInspector struct {
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenInspector() *TokenInspector {
	return &TokenInspector{
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// CheckToken nil для непрозрачных токенов и живых JWT,
// ErrExpiredToken если JWT с истекшим exp, ErrInvalidToken для пустой строки
func (ti *TokenInspector) CheckToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	// не три сегмента значит точно не JWT
	if strings.Count(token, ".") != 2 {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := ti.parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return ErrInvalidToken
	}
	if exp == nil {
		return nil
	}
	if !ti.now().Before(exp.Time) {
		return ErrExpiredToken
	}
	return nil
}
