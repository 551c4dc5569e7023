package membersdk

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Me(ctx context.Context) (User, error) {
	return do[User](ctx, c, http.MethodGet, "/v1/user/me", nil, http.StatusOK)
}

func (c *Client) UpdateAvatar(ctx context.Context, avatar Avatar) (User, error) {
	return do[User](ctx, c, http.MethodPut, "/v1/my-member/avatar", avatar, http.StatusOK)
}

func (c *Client) UpdateStatus(ctx context.Context, userID string, statusID int64) (User, error) {
	return do[User](ctx, c, http.MethodPut, "/v1/member/"+url.PathEscape(userID)+"/status",
		StatusUpdateRequest{StatusID: statusID}, http.StatusOK)
}

func (c *Client) UpdateRole(ctx context.Context, userID string, roleID int64) (User, error) {
	return do[User](ctx, c, http.MethodPut, "/v1/member/"+url.PathEscape(userID)+"/role",
		RoleUpdateRequest{RoleID: roleID}, http.StatusOK)
}

func (c *Client) DeleteMember(ctx context.Context, userID string) error {
	_, err := do[any](ctx, c, http.MethodDelete, "/v1/member/"+url.PathEscape(userID), nil, http.StatusOK)
	return err
}

func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	return do[[]Role](ctx, c, http.MethodGet, "/v1/roles", nil, http.StatusOK)
}

func (c *Client) Permissions(ctx context.Context) ([]Permission, error) {
	return do[[]Permission](ctx, c, http.MethodGet, "/v1/permissions", nil, http.StatusOK)
}
