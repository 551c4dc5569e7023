package membersdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) SendInvite(ctx context.Context, req InviteRequest) (InviteResponse, error) {
	return do[InviteResponse](ctx, c, http.MethodPost, "/v1/member/send/invite", req, http.StatusCreated)
}

// ListInvites lists invitations, optionally filtered by e-mail.
func (c *Client) ListInvites(ctx context.Context, email string) ([]Invitation, error) {
	path := "/v1/member/invite"
	if email != "" {
		path += "?email=" + url.QueryEscape(email)
	}
	return do[[]Invitation](ctx, c, http.MethodGet, path, nil, http.StatusOK)
}

func (c *Client) VerifyInvite(ctx context.Context, req InviteVerifyRequest) (InviteVerifyResponse, error) {
	return do[InviteVerifyResponse](ctx, c, http.MethodPost, "/v1/member/invite/verify", req, http.StatusOK)
}

func (c *Client) AcceptInvite(ctx context.Context, req InviteAcceptRequest) (InviteAcceptResponse, error) {
	return do[InviteAcceptResponse](ctx, c, http.MethodPost, "/v1/member/invite/accept", req, http.StatusCreated)
}

// RejectInvite revokes an invitation by id or reference.
func (c *Client) RejectInvite(ctx context.Context, idOrRef string) error {
	_, err := do[any](ctx, c, http.MethodPut, "/v1/member/invite/reject/"+url.PathEscape(idOrRef), nil, http.StatusOK)
	return err
}
