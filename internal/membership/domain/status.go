package domain

import "fmt"

// Status ids share one catalog table between users and invitations.
type Status int64

const (
	StatusActive    Status = 1
	StatusPending   Status = 2
	StatusSuspended Status = 3
	StatusDeleted   Status = 4

	InvitePending  Status = 5
	InviteVerified Status = 6
	InviteAccepted Status = 7
	InviteExpired  Status = 8
	InviteRevoked  Status = 9
)

var statusNames = map[Status]string{
	StatusActive:    "active",
	StatusPending:   "pending",
	StatusSuspended: "suspended",
	StatusDeleted:   "deleted",
	InvitePending:   "invite_pending",
	InviteVerified:  "invite_verified",
	InviteAccepted:  "invite_accepted",
	InviteExpired:   "invite_expired",
	InviteRevoked:   "invite_revoked",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int64(s))
}

// IsUserStatus reports whether s belongs to the user half of the catalog.
func (s Status) IsUserStatus() bool {
	return s >= StatusActive && s <= StatusDeleted
}

// IsInviteStatus reports whether s belongs to the invitation half of the catalog.
func (s Status) IsInviteStatus() bool {
	return s >= InvitePending && s <= InviteRevoked
}

var userTransitions = map[Status][]Status{
	StatusPending:   {StatusActive, StatusDeleted},
	StatusActive:    {StatusSuspended, StatusDeleted},
	StatusSuspended: {StatusActive, StatusDeleted},
}

var inviteTransitions = map[Status][]Status{
	InvitePending:  {InviteVerified, InviteExpired, InviteRevoked},
	InviteVerified: {InviteAccepted, InviteExpired, InviteRevoked},
}

// CanTransition reports whether moving from s to next is legal. User and
// invitation statuses never cross.
func (s Status) CanTransition(next Status) bool {
	table := userTransitions
	if s.IsInviteStatus() {
		table = inviteTransitions
	}
	for _, allowed := range table[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	if s.IsInviteStatus() {
		return len(inviteTransitions[s]) == 0
	}
	return len(userTransitions[s]) == 0
}

// IsActiveInvite reports whether s still blocks a new invitation.
func (s Status) IsActiveInvite() bool {
	return s == InvitePending || s == InviteVerified
}
