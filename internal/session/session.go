// Package session persists per-profile authentication material on disk.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// expirySkew treats a token that expires within the skew as already expired,
// so a command never starts with a token about to lapse mid-request.
const expirySkew = 30 * time.Second

// Session is the opaque authentication material for one profile: the bearer
// token used on every request plus the refresh material that lets a stale
// session be renewed without re-entering credentials.
type Session struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresAt        int64  `json:"expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at,omitempty"`
	Email            string `json:"email,omitempty"`
}

// Valid reports whether the access token is usable at now.
func (s Session) Valid(now time.Time) bool {
	if strings.TrimSpace(s.AccessToken) == "" {
		return false
	}
	if s.ExpiresAt <= 0 {
		return false
	}
	return time.Unix(s.ExpiresAt, 0).After(now.Add(expirySkew))
}

// Refreshable reports whether the refresh material can still renew an
// expired access token.
func (s Session) Refreshable(now time.Time) bool {
	if strings.TrimSpace(s.RefreshToken) == "" {
		return false
	}
	if s.RefreshExpiresAt <= 0 {
		// No recorded refresh expiry: let the service decide.
		return true
	}
	return time.Unix(s.RefreshExpiresAt, 0).After(now)
}

func Encode(s Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if strings.TrimSpace(s.AccessToken) == "" {
		return Session{}, fmt.Errorf("session missing access_token")
	}
	return s, nil
}
