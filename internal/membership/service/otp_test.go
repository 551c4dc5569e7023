package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/pkg/idx"
)

func TestRequestCodeSupersedesPrevious(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeMember(t, "otp@example.com", "password-1")

	first, err := e.otp.RequestCode(ctx, "otp@example.com", domain.PurposeVerifyEmail)
	require.NoError(t, err)
	firstCode := e.mail.lastOTP(t).Code

	second, err := e.otp.RequestCode(ctx, "OTP@example.com", domain.PurposeVerifyEmail)
	require.NoError(t, err)
	require.NotEqual(t, first.Ref, second.Ref)

	n, err := e.store.OTPs().CountActiveOTPs(ctx, "otp@example.com", domain.PurposeVerifyEmail, e.clock.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	old, err := e.store.OTPs().GetOTPByRef(ctx, first.Ref)
	require.NoError(t, err)
	require.False(t, old.ExpiresAt.After(e.clock.Now()))

	err = e.otp.VerifyCode(ctx, "otp@example.com", domain.PurposeVerifyEmail, first.Ref, firstCode)
	require.ErrorIs(t, err, ErrOTPExpired)

	// A code for the other purpose is independent.
	_, err = e.otp.RequestCode(ctx, "otp@example.com", domain.PurposePasswordReset)
	require.NoError(t, err)
	n, err = e.store.OTPs().CountActiveOTPs(ctx, "otp@example.com", domain.PurposeVerifyEmail, e.clock.Now())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestVerifyCodeIsSingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeMember(t, "once@example.com", "password-1")

	ticket, err := e.otp.RequestCode(ctx, "once@example.com", domain.PurposeVerifyEmail)
	require.NoError(t, err)
	require.Equal(t, t0.Add(DefaultOTPTTL), ticket.ExpiresAt)
	sent := e.mail.lastOTP(t)
	require.Equal(t, ticket.Ref, sent.Ref)
	require.Len(t, sent.Code, 6)

	require.NoError(t, e.otp.VerifyCode(ctx, "once@example.com", domain.PurposeVerifyEmail, ticket.Ref, sent.Code))

	err = e.otp.VerifyCode(ctx, "once@example.com", domain.PurposeVerifyEmail, ticket.Ref, sent.Code)
	require.ErrorIs(t, err, ErrOTPAlreadyUsed)
	require.Equal(t, ErrAlreadyUsed, Kind(err))
}

func TestVerifyCodeExpired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeMember(t, "late@example.com", "password-1")

	ticket, err := e.otp.RequestCode(ctx, "late@example.com", domain.PurposePasswordReset)
	require.NoError(t, err)
	code := e.mail.lastOTP(t).Code

	e.clock.Advance(DefaultOTPTTL + time.Second)

	err = e.otp.VerifyCode(ctx, "late@example.com", domain.PurposePasswordReset, ticket.Ref, code)
	require.ErrorIs(t, err, ErrOTPExpired)
	require.Equal(t, ErrExpired, Kind(err))
}

func TestVerifyCodeMismatches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeMember(t, "mix@example.com", "password-1")

	ticket, err := e.otp.RequestCode(ctx, "mix@example.com", domain.PurposeVerifyEmail)
	require.NoError(t, err)
	code := e.mail.lastOTP(t).Code

	tests := []struct {
		name    string
		email   string
		purpose domain.Purpose
		ref     string
		err     error
	}{
		{"unknown ref", "mix@example.com", domain.PurposeVerifyEmail, idx.NewRef(idx.PrefixOTP), ErrOTPNotFound},
		{"other email", "else@example.com", domain.PurposeVerifyEmail, ticket.Ref, ErrOTPNotFound},
		{"other purpose", "mix@example.com", domain.PurposePasswordReset, ticket.Ref, ErrOTPNotFound},
		{"bad purpose", "mix@example.com", domain.Purpose("login"), ticket.Ref, ErrInvalidPurpose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, e.otp.VerifyCode(ctx, tt.email, tt.purpose, tt.ref, code), tt.err)
		})
	}

	// None of the above consumed the code.
	require.NoError(t, e.otp.VerifyCode(ctx, "mix@example.com", domain.PurposeVerifyEmail, ticket.Ref, code))
}

func TestWrongCodeExhaustsAttempts(t *testing.T) {
	e := newEnv(t)
	e.otp.MaxAttempts = 3
	ctx := context.Background()
	e.activeMember(t, "guess@example.com", "password-1")

	ticket, err := e.otp.RequestCode(ctx, "guess@example.com", domain.PurposeVerifyEmail)
	require.NoError(t, err)
	code := e.mail.lastOTP(t).Code

	for range 3 {
		err := e.otp.VerifyCode(ctx, "guess@example.com", domain.PurposeVerifyEmail, ticket.Ref, otherCode(code))
		require.ErrorIs(t, err, ErrOTPNotFound)
	}

	rec, err := e.store.OTPs().GetOTPByRef(ctx, ticket.Ref)
	require.NoError(t, err)
	require.Equal(t, 3, rec.Attempts)

	err = e.otp.VerifyCode(ctx, "guess@example.com", domain.PurposeVerifyEmail, ticket.Ref, code)
	require.ErrorIs(t, err, ErrOTPExpired)
}

func TestRequestCodeUnknownEmail(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ticket, err := e.otp.RequestCode(ctx, "nobody@example.com", domain.PurposePasswordReset)
	require.NoError(t, err)
	require.True(t, idx.IsRef(idx.PrefixOTP, ticket.Ref))
	require.Equal(t, t0.Add(DefaultOTPTTL), ticket.ExpiresAt)

	_, err = e.store.OTPs().GetOTPByRef(ctx, ticket.Ref)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Empty(t, e.mail.otps)
}

func TestRequestCodeValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.otp.RequestCode(ctx, "a@example.com", domain.Purpose("sms"))
	require.ErrorIs(t, err, ErrInvalidPurpose)

	_, err = e.otp.RequestCode(ctx, "  ", domain.PurposeVerifyEmail)
	require.ErrorIs(t, err, ErrValidation)
}

func TestRequestCodeMailPolicy(t *testing.T) {
	t.Run("strict failure rolls back", func(t *testing.T) {
		e := newEnv(t)
		ctx := context.Background()
		e.activeMember(t, "strict@example.com", "password-1")

		first, err := e.otp.RequestCode(ctx, "strict@example.com", domain.PurposeVerifyEmail)
		require.NoError(t, err)
		code := e.mail.lastOTP(t).Code

		e.mail.fail(errors.New("smtp unavailable"))
		_, err = e.otp.RequestCode(ctx, "strict@example.com", domain.PurposeVerifyEmail)
		require.ErrorIs(t, err, ErrMailDelivery)
		require.Equal(t, ErrTransport, Kind(err))

		// Neither the new row nor the supersede survived.
		n, err := e.store.OTPs().CountActiveOTPs(ctx, "strict@example.com", domain.PurposeVerifyEmail, e.clock.Now())
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.NoError(t, e.otp.VerifyCode(ctx, "strict@example.com", domain.PurposeVerifyEmail, first.Ref, code))
	})

	t.Run("advisory failure keeps the code", func(t *testing.T) {
		e := newEnv(t)
		e.otp.StrictMail = false
		ctx := context.Background()
		e.activeMember(t, "advisory@example.com", "password-1")

		e.mail.fail(errors.New("smtp unavailable"))
		ticket, err := e.otp.RequestCode(ctx, "advisory@example.com", domain.PurposeVerifyEmail)
		require.NoError(t, err)

		_, err = e.store.OTPs().GetOTPByRef(ctx, ticket.Ref)
		require.NoError(t, err)
	})
}
