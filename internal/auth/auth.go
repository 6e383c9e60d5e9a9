// Package auth drives the login, refresh, and logout lifecycle for a
// profile's session. The SSO wire protocol lives behind the API interface;
// this package owns the state machine and the persistence of its outcomes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/garmin-connect-cli/internal/session"
)

// ErrorKind classifies authentication failures for exit-code mapping.
type ErrorKind string

const (
	// NotLoggedIn: no stored session and no credentials were supplied.
	NotLoggedIn ErrorKind = "not_logged_in"
	// MfaRequired: the service demanded a second factor and no challenge
	// responder was available.
	MfaRequired ErrorKind = "mfa_required"
	// MfaRejected: the challenge response was wrong or arrived too late.
	MfaRejected ErrorKind = "mfa_rejected"
	// RefreshFailed: the stored refresh material was rejected.
	RefreshFailed ErrorKind = "refresh_failed"
	// LoginFailed: the service rejected the supplied credentials.
	LoginFailed ErrorKind = "login_failed"
)

// Error is the authentication error surfaced to the command layer. Every
// Error maps to process exit code 2.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsAuthError reports whether err is (or wraps) an authentication Error.
func IsAuthError(err error) bool {
	var authErr *Error
	return errors.As(err, &authErr)
}

// Credentials are the primary login factors.
type Credentials struct {
	Email    string
	Password string
}

// ChallengeResponder supplies the second factor when the service demands
// one. It is invoked at most once per login attempt.
type ChallengeResponder func() (string, error)

// Challenge is the opaque continuation state for a pending MFA challenge.
type Challenge struct {
	Token string
}

// LoginResult is the outcome of submitting primary credentials: either a
// complete session, or a pending challenge.
type LoginResult struct {
	Session   session.Session
	Challenge *Challenge
}

// API is the SSO transport the controller drives.
type API interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	SubmitChallenge(ctx context.Context, challenge Challenge, code string) (session.Session, error)
	Refresh(ctx context.Context, sess session.Session) (session.Session, error)
}
