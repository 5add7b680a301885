// Package session owns the authenticated state of the device. One Manager is
// created at start-up and handed to whatever needs the session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/woundtrack/internal/domain/entities"
	"github.com/zatekoja/woundtrack/internal/domain/repositories"
	"github.com/zatekoja/woundtrack/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/woundtrack/pkg/errors"
)

// Storage keys
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Manager holds the current session and mirrors it to a SessionStore
type Manager struct {
	store repositories.SessionStore

	mu      sync.RWMutex
	current *entities.Session
	now     func() time.Time
}

// NewManager creates a session manager backed by store
func NewManager(store repositories.SessionStore) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Init restores the session persisted by a previous run. Incomplete or
// expired sessions are cleared and Init reports no session.
func (m *Manager) Init(ctx context.Context) (*entities.Session, error) {
	logger := observability.LoggerFromContext(ctx)

	token, hasToken, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		return nil, m.discardUnreadable(ctx, "failed to read session token", err)
	}
	rawUser, hasUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		return nil, m.discardUnreadable(ctx, "failed to read session user", err)
	}

	if !hasToken && !hasUser {
		m.setCurrent(nil)
		return nil, nil
	}

	var user entities.User
	if !hasToken || !hasUser || token == "" || json.Unmarshal([]byte(rawUser), &user) != nil || user.ID == "" {
		logger.Warn().Msg("Discarding incomplete stored session")
		return nil, m.Teardown(ctx)
	}

	s := &entities.Session{Token: token, User: user}
	s.ExpiresAt = m.expiry(ctx, token)
	if s.Expired(m.now()) {
		logger.Info().Str("user_id", user.ID).Msg("Stored session expired")
		return nil, m.Teardown(ctx)
	}

	m.setCurrent(s)
	logger.Debug().Str("user_id", user.ID).Msg("Session restored")
	return cloneSession(s), nil
}

// Set persists a new session, replacing any existing one
func (m *Manager) Set(ctx context.Context, s *entities.Session) error {
	if !s.Authenticated() {
		return apperrors.NewValidationError("session requires a token and a user")
	}

	stored := cloneSession(s)
	stored.ExpiresAt = m.expiry(ctx, s.Token)

	userJSON, err := json.Marshal(stored.User)
	if err != nil {
		return apperrors.NewInternalError("failed to encode session user", err)
	}
	if err := m.store.Set(ctx, KeyToken, stored.Token); err != nil {
		return apperrors.NewInternalError("failed to store session token", err)
	}
	if err := m.store.Set(ctx, KeyUser, string(userJSON)); err != nil {
		_ = m.store.Delete(ctx, KeyToken)
		return apperrors.NewInternalError("failed to store session user", err)
	}

	m.setCurrent(stored)
	return nil
}

// Teardown clears the in-memory session and both stored keys
func (m *Manager) Teardown(ctx context.Context) error {
	m.setCurrent(nil)
	if err := m.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return apperrors.NewInternalError("failed to clear session", err)
	}
	return nil
}

// discardUnreadable clears a stored session that cannot be read. The read
// error is returned only when clearing fails too.
func (m *Manager) discardUnreadable(ctx context.Context, msg string, readErr error) error {
	observability.LoggerFromContext(ctx).Warn().Err(readErr).Msg("Discarding unreadable stored session")
	if err := m.Teardown(ctx); err != nil {
		return apperrors.NewInternalError(msg, readErr)
	}
	return nil
}

// Current returns the active session. Expired sessions are reported as absent.
func (m *Manager) Current() (*entities.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.current.Authenticated() || m.current.Expired(m.now()) {
		return nil, false
	}
	return cloneSession(m.current), true
}

// Require returns the active session or an UNAUTHORIZED error
func (m *Manager) Require() (*entities.Session, error) {
	s, ok := m.Current()
	if !ok {
		return nil, apperrors.NewUnauthorizedError("not signed in")
	}
	return s, nil
}

// Token implements contentapi.TokenSource
func (m *Manager) Token() string {
	if s, ok := m.Current(); ok {
		return s.Token
	}
	return ""
}

func (m *Manager) setCurrent(s *entities.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}

func (m *Manager) expiry(ctx context.Context, token string) *time.Time {
	exp, err := TokenExpiry(token)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Msg("Session token carries no readable expiry")
		return nil
	}
	return exp
}

func cloneSession(s *entities.Session) *entities.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.ExpiresAt != nil {
		t := *s.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}

// String hides the token from logs.
func (m *Manager) String() string {
	if s, ok := m.Current(); ok {
		return fmt.Sprintf("session(user=%s)", s.User.ID)
	}
	return "session(none)"
}
