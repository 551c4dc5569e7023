package domain

import "time"

// PasswordReset is a forgot-mail key. Only the key's hash is stored.
type PasswordReset struct {
	ID             string
	RecipientEmail string
	KeyHash        string
	ExpiresAt      time.Time
	UsedAt         *time.Time
	CreatedAt      time.Time
}

func (r *PasswordReset) IsExpired(now time.Time) bool { return !now.Before(r.ExpiresAt) }
