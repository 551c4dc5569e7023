package domain

import "time"

// Purpose tags what an OTP proves.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify_email"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) Valid() bool {
	return p == PurposeVerifyEmail || p == PurposePasswordReset
}

// OTP is one issued code. The code itself is never stored, only its hash.
type OTP struct {
	ID             string
	RecipientEmail string
	Purpose        Purpose
	CodeHash       string
	Ref            string
	Attempts       int
	ExpiresAt      time.Time
	UsedAt         *time.Time
	RedeemedAt     *time.Time
	CreatedAt      time.Time
}

func (o *OTP) IsExpired(now time.Time) bool { return !now.Before(o.ExpiresAt) }
func (o *OTP) IsUsed() bool                 { return o.UsedAt != nil }
