package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/garmin-connect-cli/internal/session"
)

type fakeAPI struct {
	loginResult   LoginResult
	loginErr      error
	loginCalls    int
	challengeSess session.Session
	challengeErr  error
	challengeCode string
	refreshSess   session.Session
	refreshErr    error
	refreshCalls  int
}

func (f *fakeAPI) Login(_ context.Context, _ Credentials) (LoginResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeAPI) SubmitChallenge(_ context.Context, _ Challenge, code string) (session.Session, error) {
	f.challengeCode = code
	return f.challengeSess, f.challengeErr
}

func (f *fakeAPI) Refresh(_ context.Context, _ session.Session) (session.Session, error) {
	f.refreshCalls++
	return f.refreshSess, f.refreshErr
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func validSession(now time.Time) session.Session {
	return session.Session{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		ExpiresAt:        now.Add(time.Hour).Unix(),
		RefreshExpiresAt: now.Add(720 * time.Hour).Unix(),
	}
}

func expiredSession(now time.Time) session.Session {
	sess := validSession(now)
	sess.ExpiresAt = now.Add(-time.Hour).Unix()
	return sess
}

func newTestController(t *testing.T, api API) (*Controller, *session.Store) {
	t.Helper()
	store := session.NewStore(t.TempDir())
	return NewController(store, api, fixedNow), store
}

func TestEnsureAuthenticatedFreshSessionSkipsNetwork(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	ctrl, store := newTestController(t, api)
	want := validSession(fixedNow())
	require.NoError(t, store.Save("default", want))

	got, err := ctrl.EnsureAuthenticated(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, api.refreshCalls)
	assert.Zero(t, api.loginCalls)
}

func TestEnsureAuthenticatedNoSession(t *testing.T) {
	t.Parallel()

	ctrl, _ := newTestController(t, &fakeAPI{})

	_, err := ctrl.EnsureAuthenticated(context.Background(), "default")
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, NotLoggedIn, authErr.Kind)
}

func TestEnsureAuthenticatedRefreshesExpiredSession(t *testing.T) {
	t.Parallel()

	refreshed := validSession(fixedNow())
	refreshed.AccessToken = "renewed"
	api := &fakeAPI{refreshSess: refreshed}
	ctrl, store := newTestController(t, api)

	stale := expiredSession(fixedNow())
	stale.Email = "runner@example.com"
	require.NoError(t, store.Save("default", stale))

	got, err := ctrl.EnsureAuthenticated(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "renewed", got.AccessToken)
	assert.Equal(t, "runner@example.com", got.Email)
	assert.Equal(t, 1, api.refreshCalls)

	// The refreshed session was persisted.
	persisted, ok, err := store.Load("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "renewed", persisted.AccessToken)
}

func TestEnsureAuthenticatedRefreshFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{refreshErr: errors.New("invalid_grant")}
	ctrl, store := newTestController(t, api)
	require.NoError(t, store.Save("default", expiredSession(fixedNow())))

	_, err := ctrl.EnsureAuthenticated(context.Background(), "default")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, RefreshFailed, authErr.Kind)
}

func TestEnsureAuthenticatedRefreshMaterialExpired(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	ctrl, store := newTestController(t, api)

	dead := expiredSession(fixedNow())
	dead.RefreshExpiresAt = fixedNow().Add(-time.Hour).Unix()
	require.NoError(t, store.Save("default", dead))

	_, err := ctrl.EnsureAuthenticated(context.Background(), "default")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, NotLoggedIn, authErr.Kind)
	assert.Zero(t, api.refreshCalls)
}

func TestLoginWithoutChallenge(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{loginResult: LoginResult{Session: validSession(fixedNow())}}
	ctrl, store := newTestController(t, api)

	creds := Credentials{Email: "runner@example.com", Password: "hunter2"}
	sess, err := ctrl.Login(context.Background(), "default", creds, nil)
	require.NoError(t, err)
	assert.Equal(t, "runner@example.com", sess.Email)

	_, ok, err := store.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginWithChallenge(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		loginResult:   LoginResult{Challenge: &Challenge{Token: "mfa-token"}},
		challengeSess: validSession(fixedNow()),
	}
	ctrl, _ := newTestController(t, api)

	responderCalls := 0
	respond := func() (string, error) {
		responderCalls++
		return "123456", nil
	}

	_, err := ctrl.Login(context.Background(), "default", Credentials{Email: "a@b.c"}, respond)
	require.NoError(t, err)
	assert.Equal(t, 1, responderCalls)
	assert.Equal(t, "123456", api.challengeCode)
}

func TestLoginChallengeRejected(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		loginResult:  LoginResult{Challenge: &Challenge{Token: "mfa-token"}},
		challengeErr: errors.New("wrong code"),
	}
	ctrl, store := newTestController(t, api)

	_, err := ctrl.Login(context.Background(), "default", Credentials{}, func() (string, error) {
		return "000000", nil
	})

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MfaRejected, authErr.Kind)
	assert.False(t, store.Exists("default"))
}

func TestLoginChallengeWithoutResponder(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{loginResult: LoginResult{Challenge: &Challenge{Token: "mfa-token"}}}
	ctrl, _ := newTestController(t, api)

	_, err := ctrl.Login(context.Background(), "default", Credentials{}, nil)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MfaRequired, authErr.Kind)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctrl, store := newTestController(t, &fakeAPI{})
	require.NoError(t, store.Save("default", validSession(fixedNow())))

	require.NoError(t, ctrl.Logout("default"))
	require.NoError(t, ctrl.Logout("default"))
	assert.False(t, store.Exists("default"))
}

func TestStateDerivation(t *testing.T) {
	t.Parallel()

	ctrl, store := newTestController(t, &fakeAPI{})

	state, err := ctrl.State("default")
	require.NoError(t, err)
	assert.Equal(t, StateUnauthenticated, state)

	require.NoError(t, store.Save("default", validSession(fixedNow())))
	state, err = ctrl.State("default")
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)

	require.NoError(t, store.Save("default", expiredSession(fixedNow())))
	state, err = ctrl.State("default")
	require.NoError(t, err)
	assert.Equal(t, StateExpired, state)
}
