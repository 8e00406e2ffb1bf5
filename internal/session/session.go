// Package session maps bearer tokens to users.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"protanni/internal/store"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Backend stores sessions keyed by token hash. Tokens themselves are never
// stored.
type Backend interface {
	SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (string, error)
	RevokeSession(ctx context.Context, tokenHash string) error
}

const DefaultTTL = 365 * 24 * time.Hour

type Manager struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
}

func NewManager(b Backend, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{backend: b, ttl: ttl, now: time.Now}
}

// Issue creates a new token for userID.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	token := newToken()
	if err := m.backend.SaveSession(ctx, HashToken(token), userID, m.now().Add(m.ttl)); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

// Authenticate returns the user for a token, or ErrInvalidToken.
func (m *Manager) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	userID, err := m.backend.LookupSession(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	return userID, nil
}

func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.backend.RevokeSession(ctx, HashToken(token))
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() string {
	return "pt_" + strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
