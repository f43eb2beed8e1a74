// Package session is the login boundary. It hands out signed session
// handles and owns one state.Store per session. Credentials are never
// checked: a session token identifies a workspace, it does not
// authenticate a person.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/fixtures"
	applog "fintrack/internal/log"
	"fintrack/internal/state"
)

const issuer = "fintrack"

var (
	// ErrNoSession means the token is missing, invalid, expired or refers
	// to a session that no longer exists.
	ErrNoSession = errors.New("no active session")
	// ErrInvalidMode is returned for a login mode other than login or signup.
	ErrInvalidMode = errors.New("invalid login mode")
)

// Mode selects between the demo login and the sign-up form.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// Credentials is what the login screen submits. Only sign-up fields are
// used; email and password are accepted and ignored on a plain login.
type Credentials struct {
	Mode        Mode             `json:"mode"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	Income      core.Money       `json:"income"`
	RiskProfile core.RiskProfile `json:"risk_profile"`
}

// Session is one logged-in workspace.
type Session struct {
	ID        string
	Store     *state.Store
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ListenerFactory builds the store listeners for a session, e.g. a
// journal writer bound to the session id.
type ListenerFactory func(sessionID string) []state.Listener

// Loader restores a session unknown to this process, typically from the
// action journal after a restart. found=false means there is nothing to
// restore.
type Loader func(ctx context.Context, sessionID string) (s state.State, version uint64, found bool, err error)

// Config holds the token settings.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Manager maps session ids to stores.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	secret    []byte
	ttl       time.Duration
	now       func() time.Time
	listeners ListenerFactory
	loader    Loader
	logger    *applog.Logger
}

// Option customises a Manager.
type Option func(*Manager)

// WithListeners attaches per-session store listeners.
func WithListeners(f ListenerFactory) Option {
	return func(m *Manager) { m.listeners = f }
}

// WithLoader lets Resolve restore sessions this process has not seen.
func WithLoader(l Loader) Option {
	return func(m *Manager) { m.loader = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *applog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager. A zero TTL means 24 hours.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		secret:   cfg.Secret,
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentSession),
	}
	if m.ttl <= 0 {
		m.ttl = 24 * time.Hour
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login opens a new session seeded with the demo data and returns it with
// its signed token. A sign-up starts from the demo profile overridden by
// the submitted name, email, income and risk profile.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, string, error) {
	user, err := m.userFor(creds)
	if err != nil {
		return nil, "", err
	}

	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	var listeners []state.Listener
	if m.listeners != nil {
		listeners = m.listeners(sess.ID)
	}
	sess.Store = state.NewStore(listeners...)
	seed(sess.Store, user)

	token, err := m.sign(sess)
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Session opened",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldSessionID, sess.ID,
		applog.FieldUserID, user.ID,
		"mode", string(creds.Mode))
	return sess, token, nil
}

func (m *Manager) userFor(creds Credentials) (core.User, error) {
	user := fixtures.DemoUser()
	switch creds.Mode {
	case ModeLogin, "":
		return user, nil
	case ModeSignup:
	default:
		return core.User{}, fmt.Errorf("%w: %q", ErrInvalidMode, string(creds.Mode))
	}

	user.ID = uuid.NewString()
	user.Name = strings.TrimSpace(creds.Name)
	if user.Name == "" {
		user.Name = "New User"
	}
	user.Email = strings.TrimSpace(creds.Email)
	user.Income = creds.Income
	user.RiskProfile = creds.RiskProfile
	if user.RiskProfile == "" {
		user.RiskProfile = core.RiskMedium
	}
	user.CreatedAt = m.now().UTC()
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}
	return user, nil
}

// seed replays what the login screen does: set the user, then load the
// demo collections rebound to that user.
func seed(store *state.Store, user core.User) {
	store.Dispatch(state.SetUser{User: user})
	for _, e := range fixtures.Expenses(user.ID) {
		store.Dispatch(state.AddExpense{Expense: e})
	}
	store.Dispatch(state.SetBudgets{Budgets: fixtures.Budgets(user.ID)})
	store.Dispatch(state.SetInvestments{Investments: fixtures.Investments()})
}

func (m *Manager) sign(s *Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("%w: token has no session id", ErrNoSession)
	}
	return claims.ID, nil
}

// Resolve returns the live session a token refers to.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	id, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		if m.now().After(sess.ExpiresAt) {
			m.drop(id)
			return nil, ErrNoSession
		}
		return sess, nil
	}
	return m.restore(ctx, id)
}

func (m *Manager) restore(ctx context.Context, id string) (*Session, error) {
	if m.loader == nil {
		return nil, ErrNoSession
	}
	s, version, found, err := m.loader(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if !found || !s.Authenticated {
		return nil, ErrNoSession
	}

	var listeners []state.Listener
	if m.listeners != nil {
		listeners = m.listeners(id)
	}
	now := m.now()
	sess := &Session{
		ID:        id,
		Store:     state.NewStoreFrom(s, version, listeners...),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		sess = existing
	} else {
		m.sessions[id] = sess
	}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "Session restored",
		applog.FieldSessionID, id,
		applog.FieldVersion, version)
	return sess, nil
}

// Logout resets the session state and forgets the session.
func (m *Manager) Logout(ctx context.Context, token string) error {
	sess, err := m.Resolve(ctx, token)
	if err != nil {
		return err
	}
	sess.Store.Dispatch(state.Logout{})
	m.drop(sess.ID)

	m.logger.InfoContext(ctx, "Session closed",
		applog.FieldOperation, applog.OpLogout,
		applog.FieldSessionID, sess.ID)
	return nil
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep forgets expired sessions and reports how many were removed.
func (m *Manager) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Expired sessions removed", "count", n)
			}
		}
	}
}
