package auth

import (
	"context"
	"time"

	"github.com/bnema/garmin-connect-cli/internal/session"
)

// State is the observable authentication state of a profile.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateExpired         State = "expired"
)

// Controller owns the per-profile session lifecycle. Transitions:
//
//	Unauthenticated -> Authenticated        login without challenge
//	Unauthenticated -> AwaitingChallenge    login, second factor demanded
//	AwaitingChallenge -> Authenticated      correct challenge response
//	AwaitingChallenge -> Unauthenticated    wrong or late response
//	Authenticated -> Expired                validity window elapsed
//	Expired -> Authenticated                silent refresh
//	Expired -> Unauthenticated              refresh material invalid
//
// AwaitingChallenge only exists inside one Login call; the other states are
// derived from the stored session, so two invocations never disagree about
// anything but the token file, which SessionStore replaces atomically.
type Controller struct {
	store *session.Store
	api   API
	now   func() time.Time
}

func NewController(store *session.Store, api API, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{store: store, api: api, now: now}
}

// State derives the profile's current state from the stored session.
func (c *Controller) State(profile string) (State, error) {
	sess, ok, err := c.store.Load(profile)
	if err != nil {
		return StateUnauthenticated, err
	}
	if !ok {
		return StateUnauthenticated, nil
	}

	now := c.now()
	if sess.Valid(now) {
		return StateAuthenticated, nil
	}
	if sess.Refreshable(now) {
		return StateExpired, nil
	}
	return StateUnauthenticated, nil
}

// EnsureAuthenticated is the single entry point used by every command. A
// fresh stored session is returned without any network call; a stale but
// refreshable one is refreshed and persisted transparently.
func (c *Controller) EnsureAuthenticated(ctx context.Context, profile string) (session.Session, error) {
	sess, ok, err := c.store.Load(profile)
	if err != nil {
		return session.Session{}, err
	}
	if !ok {
		return session.Session{}, newError(NotLoggedIn, "not authenticated, run 'garmin-connect auth login' first")
	}

	now := c.now()
	if sess.Valid(now) {
		return sess, nil
	}

	if !sess.Refreshable(now) {
		return session.Session{}, newError(NotLoggedIn, "session expired, run 'garmin-connect auth login' again")
	}

	refreshed, err := c.api.Refresh(ctx, sess)
	if err != nil {
		return session.Session{}, wrapError(RefreshFailed, "session refresh failed, run 'garmin-connect auth login' again", err)
	}
	refreshed.Email = sess.Email

	if err := c.store.Save(profile, refreshed); err != nil {
		return session.Session{}, err
	}

	return refreshed, nil
}

// Login drives the full state machine with primary credentials and an
// optional challenge responder, persisting the resulting session.
func (c *Controller) Login(ctx context.Context, profile string, creds Credentials, respond ChallengeResponder) (session.Session, error) {
	result, err := c.api.Login(ctx, creds)
	if err != nil {
		return session.Session{}, wrapError(LoginFailed, "login failed", err)
	}

	sess := result.Session
	if result.Challenge != nil {
		if respond == nil {
			return session.Session{}, newError(MfaRequired, "multi-factor code required but no responder available")
		}

		code, err := respond()
		if err != nil {
			return session.Session{}, wrapError(MfaRejected, "multi-factor challenge aborted", err)
		}

		sess, err = c.api.SubmitChallenge(ctx, *result.Challenge, code)
		if err != nil {
			return session.Session{}, wrapError(MfaRejected, "multi-factor authentication failed", err)
		}
	}

	sess.Email = creds.Email
	if err := c.store.Save(profile, sess); err != nil {
		return session.Session{}, err
	}

	return sess, nil
}

// Logout clears the stored session regardless of its current state.
func (c *Controller) Logout(profile string) error {
	return c.store.Clear(profile)
}
