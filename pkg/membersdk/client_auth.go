package membersdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	return do[LoginResponse](ctx, c, http.MethodPost, "/v1/auth/login", req, http.StatusOK)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	return do[User](ctx, c, http.MethodPost, "/v1/auth/register", req, http.StatusCreated)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	_, err := do[any](ctx, c, http.MethodPost, "/v1/auth/reset-password", req, http.StatusOK)
	return err
}

// IsLogin checks the client's token and returns a refreshed one when it is
// close to expiry.
func (c *Client) IsLogin(ctx context.Context) (SessionResponse, error) {
	return do[SessionResponse](ctx, c, http.MethodGet, "/v1/auth/is-login?token="+url.QueryEscape(c.token), nil, http.StatusOK)
}

func (c *Client) VerifyToken(ctx context.Context) (TokenClaims, error) {
	return do[TokenClaims](ctx, c, http.MethodGet, "/v1/auth/verify-token?token="+url.QueryEscape(c.token), nil, http.StatusOK)
}

func (c *Client) SendForgotMail(ctx context.Context, req ForgotMailRequest) error {
	_, err := do[any](ctx, c, http.MethodPost, "/v1/auth/send/forgot-mail", req, http.StatusOK)
	return err
}

func (c *Client) VerifyForgotMail(ctx context.Context, req ForgotMailVerifyRequest) (ForgotMailVerifyResponse, error) {
	return do[ForgotMailVerifyResponse](ctx, c, http.MethodPost, "/v1/auth/send/forgot-mail/verify", req, http.StatusOK)
}

func (c *Client) ForgotMailResetPassword(ctx context.Context, req ForgotMailResetRequest) error {
	_, err := do[any](ctx, c, http.MethodPost, "/v1/auth/send/forgot-mail/reset-password", req, http.StatusOK)
	return err
}

// LoginTransactions lists the login audit trail, optionally for one user.
func (c *Client) LoginTransactions(ctx context.Context, userID string) ([]LoginTransaction, error) {
	path := "/v1/auth/transaction/login"
	if userID != "" {
		path += "?user_id=" + url.QueryEscape(userID)
	}
	return do[[]LoginTransaction](ctx, c, http.MethodGet, path, nil, http.StatusOK)
}

func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (BootstrapResponse, error) {
	return do[BootstrapResponse](ctx, c.WithToken(token), http.MethodPost, "/v1/bootstrap", req, http.StatusCreated)
}
