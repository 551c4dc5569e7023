package http

import (
	"net/http"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/service"
	"github.com/aussiebroadwan/membership/pkg/httpx"
	"github.com/aussiebroadwan/membership/pkg/membersdk"
)

type InviteHandler struct {
	InviteService *service.InviteService
}

// HandleSend invites an address to join with a role.
//
//	@Summary		Send an invitation
//	@Description	Supersedes any active invitation for the address and mails a new link.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		membersdk.InviteRequest							true	"Invitee and role"
//	@Success		201		{object}	membersdk.Response[membersdk.InviteResponse]	"Invitation reference"
//	@Failure		400		{object}	httpx.Envelope									"Unknown role or address already registered"
//	@Failure		401		{object}	httpx.Envelope									"Missing or invalid token"
//	@Failure		403		{object}	httpx.Envelope									"Missing invite_members permission"
//	@Failure		500		{object}	httpx.Envelope									"Mail delivery failed"
//	@Router			/v1/member/send/invite [post].
func (h *InviteHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req membersdk.InviteRequest
	if !decode(w, r, &req) {
		return
	}

	ticket, err := h.InviteService.CreateInvitation(r.Context(), httpx.UserID(r.Context()), req.Email, req.RoleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "invitation sent", membersdk.InviteResponse{
		ID:        ticket.ID,
		Ref:       ticket.Ref,
		ExpiresAt: ticket.ExpiresAt,
	})
}

// HandleList lists invitations.
//
//	@Summary		List invitations
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			email	query		string										false	"Only this address"
//	@Param			status	query		int											false	"Only this status id"
//	@Param			limit	query		int											false	"Page size"
//	@Param			offset	query		int											false	"Page offset"
//	@Success		200		{object}	membersdk.Response[[]membersdk.Invitation]	"Newest first"
//	@Failure		401		{object}	httpx.Envelope								"Missing or invalid token"
//	@Failure		403		{object}	httpx.Envelope								"Missing invite_members permission"
//	@Router			/v1/member/invite [get].
func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	status, ok := intParam(w, r, "status")
	if !ok {
		return
	}

	list, err := h.InviteService.ListInvitations(r.Context(), domain.InvitationFilter{
		Email:  r.URL.Query().Get("email"),
		Status: domain.Status(status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]membersdk.Invitation, 0, len(list))
	for _, inv := range list {
		out = append(out, fromInvitation(inv))
	}
	httpx.WriteSuccess(w, http.StatusOK, "ok", out)
}

// HandleVerify opens an invitation link.
//
//	@Summary		Verify an invitation
//	@Description	Moves a pending invitation to verified. Verifying again returns the same invitation.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.InviteVerifyRequest							true	"Invitation reference"
//	@Success		200		{object}	membersdk.Response[membersdk.InviteVerifyResponse]		"Invited address and role"
//	@Failure		400		{object}	httpx.Envelope											"Invitation expired, revoked or already accepted"
//	@Failure		404		{object}	httpx.Envelope											"Unknown reference"
//	@Router			/v1/member/invite/verify [post].
func (h *InviteHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req membersdk.InviteVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	inv, err := h.InviteService.VerifyInvitation(r.Context(), req.Ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "invitation verified", membersdk.InviteVerifyResponse{
		Email:     inv.Email,
		RoleID:    inv.RoleID,
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleAccept provisions the invited member.
//
//	@Summary		Accept an invitation
//	@Description	Creates an active member with the invited role. The invitation must be verified and the e-mail must match it.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.InviteAcceptRequest							true	"Reference, account and profile"
//	@Success		201		{object}	membersdk.Response[membersdk.InviteAcceptResponse]		"Provisioned user id"
//	@Failure		400		{object}	httpx.Envelope											"Invitation not verified, expired or e-mail mismatch"
//	@Failure		404		{object}	httpx.Envelope											"Unknown reference"
//	@Router			/v1/member/invite/accept [post].
func (h *InviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req membersdk.InviteAcceptRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.InviteService.AcceptInvitation(r.Context(), service.AcceptInput{
		Ref:      req.Ref,
		Email:    req.Email,
		Password: req.Password,
		Profile:  toProfile(req.Profile),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusCreated, "invitation accepted", membersdk.InviteAcceptResponse{UserID: user.ID})
}

// HandleReject revokes an invitation.
//
//	@Summary		Reject an invitation
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string			true	"Invitation id or reference"
//	@Success		200	{object}	httpx.Envelope	"Invitation revoked"
//	@Failure		400	{object}	httpx.Envelope	"Invitation no longer active"
//	@Failure		404	{object}	httpx.Envelope	"Unknown invitation"
//	@Router			/v1/member/invite/reject/{id} [put].
func (h *InviteHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteService.RejectInvitation(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "invitation revoked", nil)
}
