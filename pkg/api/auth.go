package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/types"
)

// LoginResult is what the backend returns for a successful login
type LoginResult struct {
	Token   string              `json:"token"`
	User    model.User          `json:"user"`
	Modules []permission.Module `json:"modules"`
}

// Login authenticates, keeps the token for later calls and loads the
// permission payload into the client's session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("auth.login: %w: email and password are required", types.ErrInvalidInput)
	}

	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, "auth.login", http.MethodPost, nil, body, &out, "auth", "login"); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("auth.login: %w: no token in response", types.ErrUnexpectedResponse)
	}

	c.setToken(out.Token)
	c.session.Login(out.Modules)
	c.logger.InfoContext(ctx, "logged in", "user", out.User.Email, "modules", len(out.Modules))
	return &out, nil
}

// Logout ends the session. Local state is cleared even if the backend call
// fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token() == "" {
		return types.ErrNotAuthenticated
	}
	err := c.call(ctx, "auth.logout", http.MethodPost, nil, nil, nil, "auth", "logout")
	c.setToken("")
	c.session.Logout()
	return err
}

// Can reports whether route may render for the logged-in user
func (c *Client) Can(route string) bool {
	return c.session.IsAllowed(route)
}
