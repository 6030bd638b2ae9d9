// Package auth issues and validates the session tokens that gate the
// conversation endpoints.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenLifetime = 24 * time.Hour

// SessionClaims represents the claims in a session token.
type SessionClaims struct {
	ConversationID string `json:"conversation_id"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies session tokens with an HMAC secret.
type TokenManager struct {
	secret []byte
}

// NewTokenManager creates a token manager. An empty secret is rejected
// so misconfigured deployments fail at startup, not at first request.
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	return &TokenManager{secret: []byte(secret)}, nil
}

// GenerateSessionToken generates a token bound to one conversation.
func (m *TokenManager) GenerateSessionToken(conversationID string) (string, error) {
	if conversationID == "" {
		return "", errors.New("conversation ID is required")
	}

	claims := &SessionClaims{
		ConversationID: conversationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken validates a session token and returns its claims.
func (m *TokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrInvalidKey
}
