package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the membership system
//	@Description	Creates the first captain with every permission. Only available when a bootstrap token is configured, and only while no user exists.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string										false	"Bootstrap token (or Authorization: Bearer)"
//	@Param			request				body		membersdk.BootstrapRequest					true	"Captain account"
//	@Success		201					{object}	membersdk.Response[membersdk.BootstrapResponse]	"Captain user id"
//	@Failure		400					{object}	httpx.Envelope								"Invalid request body or system already bootstrapped"
//	@Failure		401					{object}	httpx.Envelope								"Missing or invalid bootstrap token"
//	@Failure		404					{object}	httpx.Envelope								"Bootstrap not enabled"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	// 1. Check if enabled
	if h.BootstrapService.Token == "" {
		httpx.WriteFailure(w, http.StatusNotFound, "bootstrap endpoint is not enabled")
		return
	}

	// 2. Require the bootstrap token
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		token, _ = httpx.BearerToken(r)
	}
	if token == "" {
		httpx.WriteFailure(w, http.StatusUnauthorized, "bootstrap token is required")
		return
	}

	// 3. Parse request body and validate
	var req membersdk.BootstrapRequest
	if !decode(w, r, &req) {
		return
	}

	// 4. Perform bootstrap
	userID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Email:    req.Email,
		Password: req.Password,
		Profile:  toProfile(req.Profile),
	})
	if err != nil {
		if errors.Is(err, service.ErrBootstrapAlready) {
			l.Warn("bootstrap refused, system already bootstrapped")
		}
		writeError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "system bootstrapped", membersdk.BootstrapResponse{UserID: userID})
}
