// Package garmin is the authenticated handle through which every command
// issues its one remote operation against Garmin Connect.
package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bnema/garmin-connect-cli/internal/auth"
	"github.com/bnema/garmin-connect-cli/internal/output"
	"github.com/bnema/garmin-connect-cli/internal/session"
)

const maxErrorBodyBytes = 16 << 10

// Operation is one business call executed through an authenticated Caller.
type Operation func(ctx context.Context, call *Caller) (output.Record, error)

// Client guarantees that a command never runs unauthenticated: Invoke
// resolves the session exactly once, then hands an authenticated Caller to
// the operation. Remote failures come back as *RemoteError, never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *auth.Controller
	profile    string
}

func NewClient(baseURL string, httpClient *http.Client, controller *auth.Controller, profile string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		auth:       controller,
		profile:    profile,
	}
}

// Invoke authenticates, then runs op. If authentication fails the operation
// is never invoked.
func (c *Client) Invoke(ctx context.Context, op Operation) (output.Record, error) {
	sess, err := c.auth.EnsureAuthenticated(ctx, c.profile)
	if err != nil {
		return output.Record{}, err
	}

	return op(ctx, &Caller{client: c, session: sess})
}

// InvokeRaw is Invoke for operations whose response is a byte payload
// instead of a JSON record (activity file downloads).
func (c *Client) InvokeRaw(ctx context.Context, op func(ctx context.Context, call *Caller) ([]byte, error)) ([]byte, error) {
	sess, err := c.auth.EnsureAuthenticated(ctx, c.profile)
	if err != nil {
		return nil, err
	}

	return op(ctx, &Caller{client: c, session: sess})
}

// Caller performs authenticated HTTP requests for one operation.
type Caller struct {
	client  *Client
	session session.Session
}

// GetJSON fetches path and decodes the JSON response into a Record.
func (c *Caller) GetJSON(ctx context.Context, path string, query url.Values) (output.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return output.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeRecord(resp)
}

// PostJSON sends body as JSON and decodes the JSON response.
func (c *Caller) PostJSON(ctx context.Context, path string, body any) (output.Record, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return output.Record{}, fmt.Errorf("encode request body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, nil, bytes.NewReader(encoded), "application/json")
	if err != nil {
		return output.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeRecord(resp)
}

// Delete issues a DELETE; the service answers with an empty body.
func (c *Caller) Delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// GetBytes fetches path and returns the raw response body.
func (c *Caller) GetBytes(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Kind: RemoteNetwork, Message: "read response body", Err: err}
	}
	return data, nil
}

// UploadFile posts name/content as a multipart form and decodes the JSON
// response.
func (c *Caller) UploadFile(ctx context.Context, path, name string, content io.Reader) (output.Record, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return output.Record{}, fmt.Errorf("create upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return output.Record{}, fmt.Errorf("read upload file: %w", err)
	}
	if err := form.Close(); err != nil {
		return output.Record{}, fmt.Errorf("finish upload form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, nil, &body, form.FormDataContentType())
	if err != nil {
		return output.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeRecord(resp)
}

func (c *Caller) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	endpoint := c.client.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	tokenType := c.session.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	req.Header.Set("Authorization", tokenType+" "+c.session.AccessToken)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Kind: RemoteNetwork, Message: "call garmin connect", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		message := readErrorMessage(resp.Body)
		_ = resp.Body.Close()
		return nil, &RemoteError{Kind: RemoteHTTP, StatusCode: resp.StatusCode, Message: message}
	}

	return resp, nil
}

func decodeRecord(resp *http.Response) (output.Record, error) {
	rec, err := output.DecodeJSON(resp.Body)
	if err != nil {
		return output.Record{}, &RemoteError{Kind: RemoteDecode, Message: "decode garmin connect response", Err: err}
	}
	return rec, nil
}

// readErrorMessage extracts the service's message from an error body,
// tolerating both JSON {"message": ...} payloads and plain text.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return "no error details"
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	return strings.TrimSpace(string(data))
}
