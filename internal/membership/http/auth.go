package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

type AuthHandler struct {
	AuthService   *service.AuthService
	MemberService *service.MemberService
}

// HandleLogin signs a member in.
//
//	@Summary		Log in
//	@Description	Checks e-mail and password and returns a session token. Every attempt on a known account is recorded in the login audit.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.LoginRequest								true	"Credentials"
//	@Success		200		{object}	membersdk.Response[membersdk.LoginResponse]			"Session token and member"
//	@Failure		400		{object}	httpx.Envelope										"Invalid request body"
//	@Failure		401		{object}	httpx.Envelope										"Invalid credentials or inactive account"
//	@Failure		429		{object}	httpx.Envelope										"Too many attempts"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req membersdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := fromMember(res.Member)
	httpx.WriteSuccess(w, http.StatusOK, "login successful", membersdk.LoginResponse{
		Token:       res.Token,
		ExpiresAt:   res.ExpiresAt,
		User:        user,
		Roles:       user.Roles,
		Permissions: user.Permissions,
	})
}

// HandleRegister creates a pending account.
//
//	@Summary		Register
//	@Description	Creates a pending member with the default role. An administrator activates the account.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.RegisterRequest				true	"Account and profile"
//	@Success		201		{object}	membersdk.Response[membersdk.User]		"Registered member"
//	@Failure		400		{object}	httpx.Envelope							"Validation failed or e-mail already registered"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req membersdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	m, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile:  toProfile(req.Profile),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "registered", fromMember(m))
}

// HandleResetPassword sets a new password with a verified OTP.
//
//	@Summary		Reset password with an OTP
//	@Description	Requires a password_reset code that was verified through /v1/otp/verify. Each verified code authorises one reset.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ResetPasswordRequest	true	"E-mail, OTP reference and new password"
//	@Success		200		{object}	httpx.Envelope					"Password changed"
//	@Failure		400		{object}	httpx.Envelope					"Code not verified, expired or already redeemed"
//	@Failure		404		{object}	httpx.Envelope					"Unknown reference"
//	@Router			/v1/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.ResetPassword(r.Context(), req.Email, req.Ref, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "password changed", nil)
}

// sessionToken reads the token from the query string, falling back to the
// bearer header.
func sessionToken(r *http.Request) (string, bool) {
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	return httpx.BearerToken(r)
}

// HandleIsLogin checks a session and slides it forward near expiry.
//
//	@Summary		Check session
//	@Description	Validates the token and the account behind it. A token with at most the refresh threshold left is re-issued.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string										false	"Session token (or Authorization header)"
//	@Success		200		{object}	membersdk.Response[membersdk.SessionResponse]	"Current or refreshed token"
//	@Failure		401		{object}	httpx.Envelope								"Missing, invalid or expired token"
//	@Router			/v1/auth/is-login [get].
func (h *AuthHandler) HandleIsLogin(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(r)
	if !ok {
		httpx.WriteFailure(w, http.StatusUnauthorized, "token is required")
		return
	}

	s, err := h.AuthService.IsLogin(r.Context(), token, httpx.IPKeyExtractor(r), r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "session is valid", membersdk.SessionResponse{
		Token:     s.Token,
		Refreshed: s.Refreshed,
		ExpiresAt: s.ExpiresAt,
	})
}

// HandleVerifyToken returns the claims of a valid token.
//
//	@Summary		Verify token
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string										false	"Session token (or Authorization header)"
//	@Success		200		{object}	membersdk.Response[membersdk.TokenClaims]	"Token claims"
//	@Failure		401		{object}	httpx.Envelope								"Missing, invalid or expired token"
//	@Router			/v1/auth/verify-token [get].
func (h *AuthHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	token, ok := sessionToken(r)
	if !ok {
		httpx.WriteFailure(w, http.StatusUnauthorized, "token is required")
		return
	}

	claims, err := h.AuthService.VerifyToken(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "token is valid", fromClaims(claims))
}

// HandleSendForgotMail mails a password reset link.
//
//	@Summary		Send forgot-password mail
//	@Description	The response is the same whether or not the address is registered.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ForgotMailRequest	true	"E-mail"
//	@Success		200		{object}	httpx.Envelope				"Request accepted"
//	@Failure		400		{object}	httpx.Envelope				"Invalid e-mail"
//	@Failure		500		{object}	httpx.Envelope				"Mail delivery failed"
//	@Router			/v1/auth/send/forgot-mail [post].
func (h *AuthHandler) HandleSendForgotMail(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ForgotMailRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "if the address is registered, a reset link has been sent", nil)
}

// HandleVerifyForgotMail checks a reset key.
//
//	@Summary		Verify forgot-password key
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ForgotMailVerifyRequest							true	"Reset key"
//	@Success		200		{object}	membersdk.Response[membersdk.ForgotMailVerifyResponse]		"Address the key was issued for"
//	@Failure		400		{object}	httpx.Envelope												"Key expired or already used"
//	@Failure		404		{object}	httpx.Envelope												"Unknown key"
//	@Router			/v1/auth/send/forgot-mail/verify [post].
func (h *AuthHandler) HandleVerifyForgotMail(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ForgotMailVerifyRequest
	if !decode(w, r, &req) {
		return
	}
	email, err := h.AuthService.VerifyPasswordReset(r.Context(), req.Key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "reset key is valid", membersdk.ForgotMailVerifyResponse{Email: email})
}

// HandleForgotMailReset consumes a reset key.
//
//	@Summary		Reset password with a forgot-password key
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ForgotMailResetRequest	true	"E-mail, key and new password"
//	@Success		200		{object}	httpx.Envelope						"Password changed"
//	@Failure		400		{object}	httpx.Envelope						"Key expired or already used"
//	@Failure		404		{object}	httpx.Envelope						"Unknown key"
//	@Router			/v1/auth/send/forgot-mail/reset-password [post].
func (h *AuthHandler) HandleForgotMailReset(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ForgotMailResetRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.AuthService.CompletePasswordReset(r.Context(), req.Email, req.Key, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "password changed", nil)
}

// HandleLoginTransactions lists the login audit.
//
//	@Summary		List login transactions
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user_id	query		string												false	"Only this user"
//	@Param			limit	query		int													false	"Page size"
//	@Param			offset	query		int													false	"Page offset"
//	@Success		200		{object}	membersdk.Response[[]membersdk.LoginTransaction]	"Newest first"
//	@Failure		401		{object}	httpx.Envelope										"Missing or invalid token"
//	@Failure		403		{object}	httpx.Envelope										"Missing view_users permission"
//	@Router			/v1/auth/transaction/login [get].
func (h *AuthHandler) HandleLoginTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}

	rows, err := h.MemberService.ListLoginTransactions(r.Context(), domain.LoginTransactionFilter{
		UserID: r.URL.Query().Get("user_id"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]membersdk.LoginTransaction, 0, len(rows))
	for _, t := range rows {
		out = append(out, fromLoginTransaction(t))
	}
	httpx.WriteSuccess(w, http.StatusOK, "ok", out)
}

// intParam parses an optional non-negative integer query value.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httpx.WriteFailure(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	if limit, ok = intParam(w, r, "limit"); !ok {
		return 0, 0, false
	}
	if offset, ok = intParam(w, r, "offset"); !ok {
		return 0, 0, false
	}
	return limit, offset, true
}
