package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager signs and validates the session ticket kept in the client's
// session cookie. The ticket only names the session; it grants nothing by
// itself.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Claims describes the ticket payload.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TTL returns the ticket lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue starts a new session and returns its id with the signed ticket.
func (tm *TokenManager) Issue() (string, string, time.Time, error) {
	sessionID := uuid.NewString()
	ticket, expiresAt, err := tm.Sign(sessionID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return sessionID, ticket, expiresAt, nil
}

// Sign builds a fresh ticket for an existing session.
func (tm *TokenManager) Sign(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a ticket and returns its claims.
func (tm *TokenManager) Parse(ticket string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(ticket, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid session ticket")
	}
	return claims, nil
}

// needsRenewal reports whether less than half of the ticket's lifetime is left.
func (tm *TokenManager) needsRenewal(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Until(claims.ExpiresAt.Time) < tm.ttl/2
}
