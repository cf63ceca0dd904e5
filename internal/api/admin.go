// ABOUTME: Admin operations: roster listing, access grants, rate limit, stats
// ABOUTME: All endpoints require an admin-role credential; the server enforces this

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// UserRecord is the server's read-only snapshot of one account. The client
// never infers expiry locally: AccessExpiresAt is a server-formatted string
// displayed verbatim, and the whole record is treated as stale immediately
// after any mutating call.
type UserRecord struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	Allowed         bool   `json:"allowed"`
	AccessExpiresAt string `json:"access_expiresAt"`
}

// RequestStat is one entry of the server's request log.
type RequestStat struct {
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

type expirationRequest struct {
	Username  string `json:"username"`
	ExpiresIn int    `json:"expires_in"` // minutes
}

func (r expirationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.ExpiresIn, validation.Required, validation.Min(1)),
	)
}

type rateLimitRequest struct {
	RateLimit int `json:"rate_limit"`
}

func (r rateLimitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RateLimit, validation.Required, validation.Min(1)),
	)
}

type ackResponse struct {
	Message string `json:"message"`
}

// ListUsers fetches the full user roster.
func (c *Client) ListUsers(ctx context.Context) ([]UserRecord, error) {
	var roster []UserRecord
	if err := c.do(ctx, http.MethodGet, "/admin/list-users", nil, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// EnableUser grants access to a user, expiring the given number of minutes
// from now as computed by the server. Returns the server's ack message.
func (c *Client) EnableUser(ctx context.Context, username string, minutes int) (string, error) {
	req := expirationRequest{Username: username, ExpiresIn: minutes}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid enable request: %w", err)
	}

	var resp ackResponse
	if err := c.do(ctx, http.MethodPost, "/admin/enable-user", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateExpiration replaces an already-enabled user's expiry window.
func (c *Client) UpdateExpiration(ctx context.Context, username string, minutes int) (string, error) {
	req := expirationRequest{Username: username, ExpiresIn: minutes}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid expiration request: %w", err)
	}

	var resp ackResponse
	if err := c.do(ctx, http.MethodPost, "/admin/update-expiration", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateRateLimit sets the global request-rate ceiling in requests per minute.
// The value is not read back; the server copy is authoritative.
func (c *Client) UpdateRateLimit(ctx context.Context, requestsPerMinute int) (string, error) {
	req := rateLimitRequest{RateLimit: requestsPerMinute}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid rate limit request: %w", err)
	}

	var resp ackResponse
	if err := c.do(ctx, http.MethodPost, "/admin/update-rate-limit", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RequestStats fetches the server's request log.
func (c *Client) RequestStats(ctx context.Context) ([]RequestStat, error) {
	var stats []RequestStat
	if err := c.do(ctx, http.MethodGet, "/admin/request-stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
