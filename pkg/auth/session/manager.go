package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Backend is the keyed store sessions live in; *redis.Client satisfies it.
type Backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Manager tracks operator sessions: one refresh token per access-token jti.
// Deleting the entry on logout invalidates the access token as well.
type Manager struct {
	backend Backend
	ttl     time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager validates that refresh sessions outlive access tokens.
func NewManager(backend Backend, cfg config.JWTConfig) (*Manager, error) {
	if backend == nil {
		return nil, fmt.Errorf("session backend is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute; ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{backend: backend, ttl: ttl}, nil
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	return m.open(ctx, accessID)
}

// Rotate consumes the session for oldAccessID and opens a new one. The old
// entry is removed even when the presented token is wrong, so a leaked access
// id cannot be used to guess refresh tokens.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	stored, err := m.backend.GetDel(ctx, m.backend.AccessSessionKey(oldAccessID))
	if errors.Is(err, redislib.Nil) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	token, err := m.open(ctx, newAccessID)
	if err != nil {
		return "", "", err
	}
	return newAccessID, token, nil
}

// Revoke ends the session tied to accessID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.backend.Del(ctx, m.backend.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	_, err := m.backend.Get(ctx, m.backend.AccessSessionKey(accessID))
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// TTL reports how long a refresh session stays valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// NewAccessID produces the identifier used as JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func (m *Manager) open(ctx context.Context, accessID string) (string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := m.backend.Set(ctx, m.backend.AccessSessionKey(accessID), token, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}
