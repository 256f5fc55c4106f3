package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/address"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/domain"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/internal/transport"
	apperrors "github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/errors"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/httpclient"
	"github.com/ManuMarcos/Frontend-usuarios-squad-06-uade/pkg/validator"
)

// loginResponse is the wire shape of a successful login. The user payload is
// kept raw and adapted through domain.ParseUser.
type loginResponse struct {
	Token    string          `json:"token"`
	UserInfo json.RawMessage `json:"userInfo"`
	Message  string          `json:"message"`
}

// Login exchanges credentials for a session. An account flagged inactive is
// rejected before any token is persisted; on success the session (token plus
// normalized user record) is written to the store and returned.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.UserSession, error) {
	if email == "" || password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	req, err := c.newRequest(ctx, http.MethodPost, transport.PathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.api.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		msg := httpclient.ReadErrorMessage(resp)
		if transport.IsInactiveMessage(msg) {
			return nil, apperrors.InactiveAccount(msg)
		}
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpclient.ParseResponseError(resp)
	}

	var body loginResponse
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if body.Token == "" {
		return nil, fmt.Errorf("login response missing token")
	}

	user, err := domain.ParseUser(body.UserInfo)
	if err != nil {
		return nil, fmt.Errorf("adapt login user payload: %w", err)
	}

	// A 200 with an inactive user must not become a session.
	if !user.Active {
		return nil, apperrors.InactiveAccount("usuario deshabilitado")
	}

	sess := domain.NewSession(user, body.Token)
	if err := c.sessions.SaveLogin(sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	c.logger.Info("logged in",
		slog.String("user_id", sess.ID),
		slog.String("role", string(sess.Role)),
	)
	return sess, nil
}

// Logout destroys the local session. The backend keeps no session state, so
// there is nothing to call.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// RegisterInput holds the registration form fields. The address list is a
// creation flow: at least one non-empty valid record is required.
type RegisterInput struct {
	Role        domain.UIRole    `validate:"required,oneof=customer contractor"`
	FirstName   string           `validate:"required,min=2,max=40"`
	LastName    string           `validate:"required,min=2,max=40"`
	Email       string           `validate:"required,email"`
	DNI         string           `validate:"required,dni"`
	PhoneNumber string           `validate:"required,phone"`
	Password    string           `validate:"required,min=8"`
	Addresses   []address.Record `validate:"-"`
}

// Register creates an account. A duplicate email surfaces as ErrEmailTaken.
func (c *Client) Register(ctx context.Context, input RegisterInput) (string, error) {
	if err := validator.Validate(input); err != nil {
		return "", apperrors.InvalidInput(err.Error())
	}

	addrs := address.NewList(input.Addresses, address.KeepOne)
	if !addrs.Submittable() {
		return "", apperrors.InvalidInput("at least one complete address is required")
	}

	payload := map[string]any{
		"email":       input.Email,
		"password":    input.Password,
		"firstName":   input.FirstName,
		"lastName":    input.LastName,
		"dni":         input.DNI,
		"phoneNumber": input.PhoneNumber,
		"role":        domain.ToAPIRole(input.Role),
		"address":     address.FilterEmpty(addrs.Records()),
	}

	req, err := c.newRequest(ctx, http.MethodPost, transport.PathRegister, payload)
	if err != nil {
		return "", err
	}

	var body messageBody
	if err := c.doJSON(ctx, req, &body); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) &&
			(appErr.Status == http.StatusConflict || isEmailExistsMessage(appErr.Message)) {
			return "", apperrors.EmailTaken("an account with this email already exists")
		}
		return "", err
	}
	return body.Message, nil
}

// ForgotPassword requests a password reset flow for the given email. The
// backend answers the same way whether or not the email exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}
	req, err := c.newRequest(ctx, http.MethodPost, transport.PathForgotPassword, map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	req, err := c.newRequest(ctx, http.MethodPost, transport.PathResetPassword, map[string]string{
		"token":       token,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, nil)
}

// ResetUserPassword sets a new password for a specific user ID, the
// parameterized form of the reset endpoint.
func (c *Client) ResetUserPassword(ctx context.Context, userID, newPassword string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}
	req, err := c.newRequest(ctx, http.MethodPatch,
		"/api/users/"+userID+"/reset-password",
		map[string]string{"newPassword": newPassword},
	)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, req, nil)
}

// ChangePassword changes the password of the logged-in account. A 401 here
// is a business outcome (wrong current password), not a session failure; the
// transport skip-list keeps the session intact.
func (c *Client) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	req, err := c.newRequest(ctx, http.MethodPost, transport.PathChangePassword, map[string]string{
		"email":       email,
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}
	if err := c.doJSON(ctx, req, nil); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrForbidden) {
			return apperrors.Unauthorized("current password is incorrect")
		}
		return err
	}
	return nil
}
