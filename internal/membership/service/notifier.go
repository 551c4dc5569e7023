package service

import (
	"context"
	"time"
)

// Notifier delivers the out-of-band messages of the OTP, invitation and
// forgot-password flows. *mail.Mailer implements it.
type Notifier interface {
	SendOTP(ctx context.Context, to, code, ref string, ttl time.Duration) error
	SendInvite(ctx context.Context, to, ref, roleName string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, to, key string, ttl time.Duration) error
}
