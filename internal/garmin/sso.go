package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/garmin-connect-cli/internal/auth"
	"github.com/bnema/garmin-connect-cli/internal/session"
)

const maxTokenResponseBytes = 1 << 20

// SSO implements auth.API against the Garmin single sign-on token endpoint.
type SSO struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

var _ auth.API = (*SSO)(nil)

func NewSSO(baseURL string, httpClient *http.Client, now func() time.Time) *SSO {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &SSO{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, now: now}
}

// tokenResponse is the SSO token endpoint payload. On an MFA demand the
// endpoint answers 401 with mfa_token set instead of token material.
type tokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
	Error                 string `json:"error"`
	ErrorDescription      string `json:"error_description"`
	MFAToken              string `json:"mfa_token"`
}

func (s *SSO) Login(ctx context.Context, creds auth.Credentials) (auth.LoginResult, error) {
	if creds.Email == "" {
		return auth.LoginResult{}, errors.New("email is required")
	}
	if creds.Password == "" {
		return auth.LoginResult{}, errors.New("password is required")
	}

	values := url.Values{}
	values.Set("grant_type", "password")
	values.Set("username", creds.Email)
	values.Set("password", creds.Password)

	resp, err := s.postToken(ctx, values)
	if err != nil {
		return auth.LoginResult{}, err
	}

	if resp.MFAToken != "" {
		return auth.LoginResult{Challenge: &auth.Challenge{Token: resp.MFAToken}}, nil
	}
	if resp.Error != "" {
		return auth.LoginResult{}, ssoError(resp)
	}

	sess, err := s.toSession(resp)
	if err != nil {
		return auth.LoginResult{}, err
	}
	return auth.LoginResult{Session: sess}, nil
}

func (s *SSO) SubmitChallenge(ctx context.Context, challenge auth.Challenge, code string) (session.Session, error) {
	if strings.TrimSpace(code) == "" {
		return session.Session{}, errors.New("mfa code is empty")
	}

	values := url.Values{}
	values.Set("grant_type", "mfa")
	values.Set("mfa_token", challenge.Token)
	values.Set("mfa_code", strings.TrimSpace(code))

	resp, err := s.postToken(ctx, values)
	if err != nil {
		return session.Session{}, err
	}
	if resp.Error != "" {
		return session.Session{}, ssoError(resp)
	}

	return s.toSession(resp)
}

func (s *SSO) Refresh(ctx context.Context, sess session.Session) (session.Session, error) {
	if sess.RefreshToken == "" {
		return session.Session{}, errors.New("no refresh token")
	}

	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("refresh_token", sess.RefreshToken)

	resp, err := s.postToken(ctx, values)
	if err != nil {
		return session.Session{}, err
	}
	if resp.Error != "" {
		return session.Session{}, ssoError(resp)
	}

	refreshed, err := s.toSession(resp)
	if err != nil {
		return session.Session{}, err
	}

	// Some refresh responses omit a rotated refresh token.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = sess.RefreshToken
		refreshed.RefreshExpiresAt = sess.RefreshExpiresAt
	}

	return refreshed, nil
}

func (s *SSO) postToken(ctx context.Context, values url.Values) (tokenResponse, error) {
	endpoint := s.baseURL + "/oauth/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("call sso token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxTokenResponseBytes)).Decode(&decoded); err != nil {
		return tokenResponse{}, fmt.Errorf("decode token response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest && decoded.Error == "" && decoded.MFAToken == "" {
		return tokenResponse{}, fmt.Errorf("sso token endpoint returned status %d", resp.StatusCode)
	}

	return decoded, nil
}

func (s *SSO) toSession(resp tokenResponse) (session.Session, error) {
	if resp.AccessToken == "" {
		return session.Session{}, errors.New("token response missing access_token")
	}

	now := s.now()
	sess := session.Session{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
	}
	if resp.RefreshTokenExpiresIn > 0 {
		sess.RefreshExpiresAt = now.Add(time.Duration(resp.RefreshTokenExpiresIn) * time.Second).Unix()
	}
	return sess, nil
}

func ssoError(resp tokenResponse) error {
	if resp.ErrorDescription != "" {
		return fmt.Errorf("%s: %s", resp.Error, resp.ErrorDescription)
	}
	return errors.New(resp.Error)
}
