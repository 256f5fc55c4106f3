package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/domain"
	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/httpclient"
)

// GetUser fetches one user profile, adapted to the strict internal shape.
func (c *Client) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/users/"+id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp)
	}

	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read user response: %w", err)
	}
	return domain.ParseUser(raw)
}

// ListUsers fetches all users (admin only). Each entry goes through the
// inbound adapter, so mixed historical shapes in one listing are fine.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := c.doJSON(ctx, req, &raws); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(raws))
	for i, raw := range raws {
		u, err := domain.ParseUser(raw)
		if err != nil {
			return nil, fmt.Errorf("adapt user %d in listing: %w", i, err)
		}
		users = append(users, *u)
	}
	return users, nil
}

// UpdateUser applies a partial profile update and returns the server's
// acknowledgment message. An empty patch never reaches the wire.
func (c *Client) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (string, error) {
	if id == "" {
		return "", apperrors.InvalidInput("user id is required")
	}
	if patch.IsZero() {
		return "", apperrors.InvalidInput("nothing to update")
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/api/users/"+id, patch)
	if err != nil {
		return "", err
	}

	resp, err := c.api.Do(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", httpclient.ParseResponseError(resp)
	}

	// The acknowledgment has been a JSON message object or a plain string
	// depending on the backend revision.
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read update response: %w", err)
	}
	var body messageBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		return body.Message, nil
	}
	return string(raw), nil
}

// SetActive toggles a user's active flag (admin only).
func (c *Client) SetActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return apperrors.InvalidInput("user id is required")
	}
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/users/"+id+"/active", map[string]bool{
		"active": active,
	})
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, nil)
}
