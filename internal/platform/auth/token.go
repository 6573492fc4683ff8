// Package auth implements the built-in identity tokens: HMAC-signed JWTs
// issued on sign-in, verified by the echo middleware, and revocable on
// sign-out.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("auth: token invalid")
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// Claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	DisplayName string `json:"display_name,omitempty"`
}

// Manager issues and verifies access tokens and tracks revocations.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration

	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> expiry, pruned lazily
}

func NewManager(secret []byte, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:  secret,
		issuer:  issuer,
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a token for the given account.
func (m *Manager) Issue(userID uuid.UUID, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		DisplayName: displayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses the token and returns its claims, rejecting revoked tokens.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if m.isRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke records the token id so later Verify calls reject it. The entry
// expires with the token itself.
func (m *Manager) Revoke(claims *Claims) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	m.revoked[claims.ID] = exp
	m.prune()
}

func (m *Manager) isRevoked(jti string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.revoked[jti]
	return ok && time.Now().Before(exp)
}

// prune drops expired revocations. Caller holds the write lock.
func (m *Manager) prune() {
	now := time.Now()
	for jti, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, jti)
		}
	}
}
