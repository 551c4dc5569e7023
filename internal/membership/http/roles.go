package http

import (
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleRoles lists the role catalog.
//
//	@Summary		List roles
//	@Tags			Roles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.Response[[]membersdk.Role]	"Roles by id"
//	@Failure		401	{object}	httpx.Envelope							"Missing or invalid token"
//	@Router			/v1/roles [get].
func (h *RolesHandler) HandleRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListRoles(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "ok", fromRoles(roles))
}

// HandlePermissions lists the permission catalog.
//
//	@Summary		List permissions
//	@Tags			Roles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.Response[[]membersdk.Permission]	"Permissions by id"
//	@Failure		401	{object}	httpx.Envelope								"Missing or invalid token"
//	@Router			/v1/permissions [get].
func (h *RolesHandler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.RolesService.ListPermissions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "ok", fromPermissions(perms))
}
