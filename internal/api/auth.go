// ABOUTME: Login and signup operations against the backend
// ABOUTME: Both exchange username/password for a bearer credential

package api

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges a username and password for a bearer credential.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := credentialsRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid login request: %w", err)
	}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Signup registers a new account and returns its bearer credential. New
// accounts start without access; an admin must enable them.
func (c *Client) Signup(ctx context.Context, username, password string) (string, error) {
	req := credentialsRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid signup request: %w", err)
	}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/signup", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
