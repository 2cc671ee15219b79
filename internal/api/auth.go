package api

import (
	"context"
	"net/http"

	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/routes"
)

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`

	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// Notice is the confirmation text, whichever key the service used.
func (r *AuthResult) Notice() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Msg
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login never sends the stored token, so a failed login leaves the session alone.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	err := c.do(ctx, http.MethodPost, routes.AuthLogin, authNone, loginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var res AuthResult
	body := signupRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, routes.AuthSignup, authNone, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, routes.AuthUser, authRequired, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
