package http

import (
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

type OTPHandler struct {
	OTPService *service.OTPService
}

// HandleRequest mails a one-time code.
//
//	@Summary		Request an OTP
//	@Description	Mails a 6-digit code and returns its reference. Requesting again supersedes the previous code. The response has the same shape whether or not the address is registered.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.OTPRequest							true	"E-mail and purpose"
//	@Success		200		{object}	membersdk.Response[membersdk.OTPResponse]		"Code reference"
//	@Failure		400		{object}	httpx.Envelope									"Invalid e-mail or purpose"
//	@Failure		500		{object}	httpx.Envelope									"Mail delivery failed"
//	@Router			/v1/otp [post].
func (h *OTPHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req membersdk.OTPRequest
	if !decode(w, r, &req) {
		return
	}

	ticket, err := h.OTPService.RequestCode(r.Context(), req.Email, domain.Purpose(req.Purpose))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "code sent", membersdk.OTPResponse{
		Ref:       ticket.Ref,
		ExpiresAt: ticket.ExpiresAt,
	})
}

// HandleVerify consumes a one-time code.
//
//	@Summary		Verify an OTP
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.OTPVerifyRequest	true	"E-mail, purpose, reference and code"
//	@Success		200		{object}	httpx.Envelope				"Code verified"
//	@Failure		400		{object}	httpx.Envelope				"Code expired or already used"
//	@Failure		404		{object}	httpx.Envelope				"Unknown reference or wrong code"
//	@Router			/v1/otp/verify [post].
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req membersdk.OTPVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.OTPService.VerifyCode(r.Context(), req.Email, domain.Purpose(req.Purpose), req.Ref, req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "code verified", nil)
}
