// ABOUTME: HTTP client for the post-generation backend contract
// ABOUTME: JSON over HTTPS with bearer credentials and typed error decoding

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/postdesk/internal/session"
)

// CredentialSource yields the session snapshot attached to outbound calls.
// *session.Store satisfies it.
type CredentialSource interface {
	Current() session.Session
}

// Error is a decoded non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Client talks to the backend origin. All methods are safe for concurrent use;
// the client holds no mutable state of its own.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialSource
	logger  *slog.Logger
}

// New creates a client for the given backend origin. The credential source may
// be nil for purely anonymous use.
func New(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		creds:   creds,
		logger:  slog.Default().With("component", "api"),
	}
}

// do performs one JSON request/response round trip. A bearer header is
// attached iff the credential source holds a session. Non-2xx responses are
// decoded into *Error with the server's error message when present.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if sess := c.creds.Current(); sess.Authenticated() {
			req.Header.Set("Authorization", "Bearer "+sess.Credential)
		}
	}

	c.logger.Debug("backend request", "method", method, "path", path)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError extracts the server's error message from a failed response.
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}
