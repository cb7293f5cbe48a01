package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the signed session cookie. The session
// itself lives server-side; the token only proves the ID was issued by us.
type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    int    `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionSigner signs and verifies session cookie values
type SessionSigner struct {
	secretKey []byte
}

// NewSessionSigner creates a new SessionSigner
func NewSessionSigner(secretKey string) *SessionSigner {
	return &SessionSigner{secretKey: []byte(secretKey)}
}

// Sign produces the cookie value for a session
func (s *SessionSigner) Sign(sessionID string, userID int, expiresAt time.Time) (string, error) {
	claims := &SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.Itoa(userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of a cookie value and returns its claims
func (s *SessionSigner) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid session token")
}
