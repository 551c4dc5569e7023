package http

import (
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

type MemberHandler struct {
	MemberService *service.MemberService
}

func (h *MemberHandler) writeMember(w http.ResponseWriter, r *http.Request, userID, message string) {
	m, err := h.MemberService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, message, fromMember(m))
}

// HandleStatus changes a member's status.
//
//	@Summary		Change member status
//	@Description	Allowed: pending to active or deleted, active to suspended or deleted, suspended to active or deleted.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"User id"
//	@Param			request	body		membersdk.StatusUpdateRequest		true	"Target status id"
//	@Success		200		{object}	membersdk.Response[membersdk.User]	"Updated member"
//	@Failure		400		{object}	httpx.Envelope						"Transition not allowed"
//	@Failure		403		{object}	httpx.Envelope						"Missing edit_users permission"
//	@Failure		404		{object}	httpx.Envelope						"Unknown user"
//	@Router			/v1/member/{id}/status [put].
func (h *MemberHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req membersdk.StatusUpdateRequest
	if !decode(w, r, &req) {
		return
	}

	userID := r.PathValue("id")
	if err := h.MemberService.ChangeStatus(r.Context(), userID, domain.Status(req.StatusID)); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMember(w, r, userID, "status updated")
}

// HandleRole replaces a member's role.
//
//	@Summary		Assign role
//	@Description	Replaces the role and recomputes the member's permissions.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string								true	"User id"
//	@Param			request	body		membersdk.RoleUpdateRequest			true	"Role id"
//	@Success		200		{object}	membersdk.Response[membersdk.User]	"Updated member"
//	@Failure		400		{object}	httpx.Envelope						"Unknown role"
//	@Failure		403		{object}	httpx.Envelope						"Missing assign_roles permission"
//	@Failure		404		{object}	httpx.Envelope						"Unknown user"
//	@Router			/v1/member/{id}/role [put].
func (h *MemberHandler) HandleRole(w http.ResponseWriter, r *http.Request) {
	var req membersdk.RoleUpdateRequest
	if !decode(w, r, &req) {
		return
	}

	userID := r.PathValue("id")
	if err := h.MemberService.AssignRole(r.Context(), userID, req.RoleID); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMember(w, r, userID, "role assigned")
}

// HandleDelete removes a member.
//
//	@Summary		Delete member
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string			true	"User id"
//	@Success		200	{object}	httpx.Envelope	"Member deleted"
//	@Failure		403	{object}	httpx.Envelope	"Missing delete_users permission"
//	@Failure		404	{object}	httpx.Envelope	"Unknown user"
//	@Router			/v1/member/{id} [delete].
func (h *MemberHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.MemberService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "member deleted", nil)
}

// HandleMe returns the calling member.
//
//	@Summary		Current member
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	membersdk.Response[membersdk.User]	"Member with profile, roles and permissions"
//	@Failure		401	{object}	httpx.Envelope						"Missing or invalid token"
//	@Router			/v1/user/me [get].
func (h *MemberHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserID(r.Context())
	if userID == "" {
		httpx.WriteFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.writeMember(w, r, userID, "ok")
}

// HandleAvatar sets the calling member's avatar.
//
//	@Summary		Update own avatar
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		membersdk.Avatar					true	"Avatar reference"
//	@Success		200		{object}	membersdk.Response[membersdk.User]	"Updated member"
//	@Failure		400		{object}	httpx.Envelope						"Invalid avatar"
//	@Failure		401		{object}	httpx.Envelope						"Missing or invalid token"
//	@Router			/v1/my-member/avatar [put].
func (h *MemberHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserID(r.Context())
	if userID == "" {
		httpx.WriteFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req membersdk.Avatar
	if !decode(w, r, &req) {
		return
	}

	avatar := &domain.Avatar{ID: req.ID, BaseURL: req.BaseURL, LazyURL: req.LazyURL}
	if err := h.MemberService.UpdateAvatar(r.Context(), userID, avatar); err != nil {
		writeError(w, r, err)
		return
	}
	h.writeMember(w, r, userID, "avatar updated")
}
