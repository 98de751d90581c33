// Package auth provides session-token authentication for the portal API.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lab-portal/backend/internal/models"
	"github.com/lab-portal/backend/internal/store"
)

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound is returned for unknown or expired tokens.
	ErrSessionNotFound = errors.New("session not found")
)

// DefaultSessionTTL is how long an issued token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// Session is one issued login token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Manager verifies logins against the user store and tracks issued
// sessions in memory.
type Manager struct {
	store store.UserStore
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. ttl <= 0 falls back to
// DefaultSessionTTL.
func NewManager(userStore store.UserStore, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		store:    userStore,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Login verifies the credentials and issues a session token. A missing
// user and a wrong password are indistinguishable to the caller.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, *models.User, error) {
	user, err := m.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	hash, err := m.store.PasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session := &Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()

	return session, user, nil
}

// Resolve maps a token back to its user, dropping expired sessions.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.User, error) {
	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return m.store.Get(ctx, session.UserID)
}

// Logout invalidates a token. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// CleanupExpired drops expired sessions; meant for a background ticker.
func (m *Manager) CleanupExpired() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}
