// ABOUTME: Generation client submitting article text for transformation
// ABOUTME: Holds the last result and renders markdown previews

package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/yuin/goldmark"
)

// ErrGenerationFailed is the single generic failure state surfaced for any
// server-side failure. There is no retry and no partial result.
var ErrGenerationFailed = errors.New("failed to generate post")

// Backend is the slice of the API client the generation flow needs.
type Backend interface {
	GeneratePost(ctx context.Context, article string) (string, error)
}

// Client submits one transformation request at a time and keeps the most
// recent successful result.
type Client struct {
	mu      sync.Mutex
	backend Backend
	logger  *slog.Logger
	last    string
	hasLast bool
}

// New creates a generation client over the given backend.
func New(backend Backend) *Client {
	return &Client{
		backend: backend,
		logger:  slog.Default().With("component", "generate"),
	}
}

// Submit sends article text for transformation. The article must be non-empty;
// validation failure blocks dispatch. On success the returned post replaces
// any previously held result. On server failure the previous result is kept
// and ErrGenerationFailed is returned.
func (c *Client) Submit(ctx context.Context, article string) (string, error) {
	if err := validation.Validate(article, validation.Required); err != nil {
		return "", fmt.Errorf("article text is required: %w", err)
	}

	post, err := c.backend.GeneratePost(ctx, article)
	if err != nil {
		c.logger.Warn("generation request failed", "error", err)
		return "", ErrGenerationFailed
	}

	c.mu.Lock()
	c.last = post
	c.hasLast = true
	c.mu.Unlock()

	return post, nil
}

// Last returns the most recent successful result, if any.
func (c *Client) Last() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// RenderHTML converts a generated post from markdown to HTML for preview.
func RenderHTML(post string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(post), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}
