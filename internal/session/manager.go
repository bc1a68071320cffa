// Package session owns the process-wide session: the persisted bearer token
// and the in-memory authenticated user. All session transitions go through
// the Manager; nothing else touches the token store.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/test89/property_client/internal/domain/user"
	"github.com/test89/property_client/internal/services"
	"github.com/test89/property_client/pkg/logger"
)

// Manager holds session state and implements api.TokenSource.
type Manager struct {
	mu    sync.Mutex
	store TokenStore
	token string
	user  *user.User

	auth      *services.Auth
	onExpired func()
	log       *logger.Logger
}

// NewManager creates a manager over the given token store. The auth service
// is attached after the HTTP client exists, because the client needs the
// manager as its token source first.
func NewManager(store TokenStore, log *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, token: token, log: log}, nil
}

// AttachAuth wires the auth service module used by Login/Register/Rehydrate.
func (m *Manager) AttachAuth(auth *services.Auth) {
	m.auth = auth
}

// SetExpiredHandler installs the callback fired once per teardown when the
// backend rejects the session.
func (m *Manager) SetExpiredHandler(fn func()) {
	m.onExpired = fn
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Authenticated reports whether a token is held. Before Rehydrate confirms
// it with the backend this is only the stored-token guess.
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Login authenticates with credentials and establishes a new session.
func (m *Manager) Login(ctx context.Context, creds user.Credentials) (user.User, error) {
	resp, err := m.auth.Login(ctx, creds)
	if err != nil {
		return user.User{}, err
	}
	m.establish(resp)
	return resp.User, nil
}

// Register creates an account and establishes the returned session.
func (m *Manager) Register(ctx context.Context, reg user.Registration) (user.User, error) {
	resp, err := m.auth.Register(ctx, reg)
	if err != nil {
		return user.User{}, err
	}
	m.establish(resp)
	return resp.User, nil
}

func (m *Manager) establish(resp user.AuthResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = resp.Token
	u := resp.User
	m.user = &u
	if err := m.store.Save(resp.Token); err != nil {
		m.log.WithError(err).Warn("token not persisted; session will not survive restart")
	}
	m.log.WithField("user", resp.User.Email).Info("session established")
}

// Logout clears the session locally. The backend keeps no session state.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
	m.log.Info("logged out")
}

// Rehydrate restores the session at startup: with a stored token it fetches
// the profile to confirm the session; an expired or rejected token clears
// everything. Returns the user when a session is active.
func (m *Manager) Rehydrate(ctx context.Context) (*user.User, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == "" {
		return nil, nil
	}
	if expired(token) {
		m.log.Info("stored token already expired, clearing session")
		m.Invalidate()
		return nil, nil
	}

	u, err := m.auth.Profile(ctx)
	if err != nil {
		// A 401 already tore the session down through the adapter hook.
		return nil, err
	}

	m.mu.Lock()
	m.user = &u
	m.mu.Unlock()
	return &u, nil
}

// Invalidate tears the session down: stored token and in-memory user are
// cleared and the expired handler fires. Concurrent 401s collapse into a
// single teardown; calls that find no session are no-ops.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.token == "" && m.user == nil {
		m.mu.Unlock()
		return
	}
	m.clearLocked()
	fn := m.onExpired
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (m *Manager) clearLocked() {
	m.token = ""
	m.user = nil
	if err := m.store.Clear(); err != nil {
		m.log.WithError(err).Warn("stored token not cleared")
	}
}

// expired reports whether the token is a parseable JWT whose exp claim has
// passed. Opaque or claimless tokens are left for the backend to judge.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
