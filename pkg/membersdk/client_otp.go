package membersdk

import (
	"context"
	"net/http"
)

// RequestOTP asks for a code to be mailed. The response is identical whether
// or not the e-mail belongs to a member.
func (c *Client) RequestOTP(ctx context.Context, req OTPRequest) (OTPResponse, error) {
	return do[OTPResponse](ctx, c, http.MethodPost, "/v1/otp", req, http.StatusOK)
}

func (c *Client) VerifyOTP(ctx context.Context, req OTPVerifyRequest) error {
	_, err := do[any](ctx, c, http.MethodPost, "/v1/otp/verify", req, http.StatusOK)
	return err
}
