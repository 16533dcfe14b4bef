package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims are the JWT claims carried by both token kinds.
// TokenType prevents a refresh token from being used as an access token.
type TokenClaims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 access/refresh token pairs.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// GenerateAccessToken issues a short-lived access token for the user.
func (m *TokenManager) GenerateAccessToken(userID uint64) (string, error) {
	return m.generate(userID, tokenTypeAccess, m.accessTTL)
}

// GenerateRefreshToken issues a longer-lived refresh token for the user.
func (m *TokenManager) GenerateRefreshToken(userID uint64) (string, error) {
	return m.generate(userID, tokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) generate(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken verifies an access token and returns the user ID.
func (m *TokenManager) ValidateAccessToken(tokenString string) (uint64, error) {
	return m.validate(tokenString, tokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns the user ID.
func (m *TokenManager) ValidateRefreshToken(tokenString string) (uint64, error) {
	return m.validate(tokenString, tokenTypeRefresh)
}

func (m *TokenManager) validate(tokenString, tokenType string) (uint64, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
