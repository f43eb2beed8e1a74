package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/fixtures"
	"fintrack/internal/state"
)

var secret = []byte("test-secret")

func TestLoginSeedsDemoData(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	sess, token, err := m.Login(context.Background(), Credentials{Mode: ModeLogin, Email: "ignored@example.com", Password: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	s := sess.Store.State()
	assert.True(t, s.Authenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, "Alex Johnson", s.User.Name)
	assert.Len(t, s.Expenses, 4)
	assert.Len(t, s.Budgets, 2)
	assert.Len(t, s.Investments, 3)
	assert.Empty(t, s.ChatHistory)
	// SetUser + 4 expenses + budgets + investments
	assert.Equal(t, uint64(7), sess.Store.Version())
}

func TestSignupOverridesProfile(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	sess, _, err := m.Login(context.Background(), Credentials{
		Mode:        ModeSignup,
		Name:        "  Priya  ",
		Email:       "priya@example.com",
		Income:      core.Rupees(50000),
		RiskProfile: core.RiskHigh,
	})
	require.NoError(t, err)

	s := sess.Store.State()
	assert.Equal(t, "Priya", s.User.Name)
	assert.Equal(t, core.Rupees(50000), s.User.Income)
	assert.Equal(t, core.RiskHigh, s.User.RiskProfile)
	assert.NotEqual(t, fixtures.DemoUserID, s.User.ID)
	for _, e := range s.Expenses {
		assert.Equal(t, s.User.ID, e.UserID)
	}
}

func TestSignupDefaults(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	sess, _, err := m.Login(context.Background(), Credentials{Mode: ModeSignup})
	require.NoError(t, err)

	u := sess.Store.State().User
	assert.Equal(t, "New User", u.Name)
	assert.True(t, u.Income.IsZero())
	assert.Equal(t, core.RiskMedium, u.RiskProfile)
}

func TestSignupRejectsBadInput(t *testing.T) {
	m := NewManager(Config{Secret: secret})

	_, _, err := m.Login(context.Background(), Credentials{Mode: ModeSignup, Income: core.Rupees(-5)})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)

	_, _, err = m.Login(context.Background(), Credentials{Mode: ModeSignup, RiskProfile: "reckless"})
	assert.ErrorIs(t, err, core.ErrInvalidRiskProfile)

	_, _, err = m.Login(context.Background(), Credentials{Mode: "sso"})
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Zero(t, m.Len())
}

func TestResolve(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	sess, token, err := m.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	got, err := m.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	_, _, err := m.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	other := NewManager(Config{Secret: []byte("other")})
	_, foreign, err := other.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":   "",
		"garbage": "not-a-jwt",
		"foreign": foreign,
	} {
		_, err := m.Resolve(context.Background(), token)
		assert.ErrorIs(t, err, ErrNoSession, name)
	}
}

func TestResolveRejectsOtherSigningMethods(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	claims := jwt.RegisteredClaims{ID: "x", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionsAreRejectedAndSwept(t *testing.T) {
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewManager(Config{Secret: secret, TTL: time.Hour}, WithClock(clock))

	_, token, err := m.Login(context.Background(), Credentials{})
	require.NoError(t, err)
	_, _, err = m.Login(context.Background(), Credentials{})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	now = now.Add(2 * time.Hour)
	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, 2, m.Sweep())
	assert.Zero(t, m.Len())
}

func TestLogoutResetsAndForgets(t *testing.T) {
	m := NewManager(Config{Secret: secret})
	sess, token, err := m.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), token))
	assert.Equal(t, state.Initial(), sess.Store.State())

	_, err = m.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, m.Logout(context.Background(), token), ErrNoSession)
}

func TestListenersSeeSeedDispatches(t *testing.T) {
	var kinds []state.Kind
	var boundTo string
	m := NewManager(Config{Secret: secret}, WithListeners(func(id string) []state.Listener {
		boundTo = id
		return []state.Listener{func(c state.Change) { kinds = append(kinds, c.Action.Kind()) }}
	}))

	sess, _, err := m.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	assert.Equal(t, sess.ID, boundTo)
	require.Len(t, kinds, 7)
	assert.Equal(t, state.KindSetUser, kinds[0])
	assert.Equal(t, state.KindSetInvestments, kinds[6])
}

func TestLoaderRestoresUnknownSession(t *testing.T) {
	first := NewManager(Config{Secret: secret})
	sess, token, err := first.Login(context.Background(), Credentials{})
	require.NoError(t, err)
	saved, version := sess.Store.Snapshot()

	restarted := NewManager(Config{Secret: secret}, WithLoader(func(_ context.Context, id string) (state.State, uint64, bool, error) {
		if id != sess.ID {
			return state.State{}, 0, false, nil
		}
		return saved, version, true, nil
	}))

	got, err := restarted.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, version, got.Store.Version())
	assert.Len(t, got.Store.State().Expenses, 4)
	assert.Equal(t, 1, restarted.Len())
}

func TestLoaderErrorsAndLoggedOutSessions(t *testing.T) {
	first := NewManager(Config{Secret: secret})
	_, token, err := first.Login(context.Background(), Credentials{})
	require.NoError(t, err)

	boom := errors.New("disk gone")
	failing := NewManager(Config{Secret: secret}, WithLoader(func(context.Context, string) (state.State, uint64, bool, error) {
		return state.State{}, 0, false, boom
	}))
	_, err = failing.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, boom)

	loggedOut := NewManager(Config{Secret: secret}, WithLoader(func(context.Context, string) (state.State, uint64, bool, error) {
		return state.Initial(), 9, true, nil
	}))
	_, err = loggedOut.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSession)
}
