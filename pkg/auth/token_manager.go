package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type TokenManager struct {
	secretKey string
	ttl       time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: secret, ttl: ttl}
}

// Issue выдает JWT для userID
func (m *TokenManager) Issue(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Parse проверяет подпись и возвращает claims
func (m *TokenManager) Parse(accessToken string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TTLRemaining возвращает, сколько токену осталось жить
func (m *TokenManager) TTLRemaining(accessToken string) (time.Duration, error) {
	claims, err := m.Parse(accessToken)
	if err != nil {
		return 0, err
	}
	return time.Until(claims.ExpiresAt.Time), nil
}

// ExtractToken достает токен из Authorization header или query-параметра token
// (query — для websocket-подключений)
func ExtractToken(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	if hdr != "" {
		parts := strings.SplitN(hdr, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], nil
		}
		return "", errors.New("invalid Authorization header")
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", errors.New("missing token")
}
