// ABOUTME: Post generation operation against the backend
// ABOUTME: Submits article text and returns the generated post

package api

import (
	"context"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

type generateRequest struct {
	Article string `json:"article"`
}

func (r generateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Article, validation.Required),
	)
}

type generateResponse struct {
	Post string `json:"post"`
}

// GeneratePost submits article text for transformation and returns the
// generated post. Requires an authenticated, access-enabled session; the
// server enforces both.
func (c *Client) GeneratePost(ctx context.Context, article string) (string, error) {
	req := generateRequest{Article: article}
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid generate request: %w", err)
	}

	var resp generateResponse
	if err := c.do(ctx, http.MethodPost, "/generate-post", req, &resp); err != nil {
		return "", err
	}
	return resp.Post, nil
}
