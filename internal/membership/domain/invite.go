package domain

import "time"

type Invitation struct {
	ID             string
	InviterID      string
	Email          string
	RoleID         int64
	RefHash        string
	Status         Status
	ExpiresAt      time.Time
	AcceptedUserID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (i *Invitation) IsExpired(now time.Time) bool { return !now.Before(i.ExpiresAt) }

// InvitationFilter narrows admin listings. Zero values match everything.
type InvitationFilter struct {
	Email  string
	Status Status
	Limit  int
	Offset int
}
