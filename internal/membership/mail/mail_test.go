package mail_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/mail"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []mail.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg mail.Message) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func newMailer(t *testing.T, s mail.Sender) *mail.Mailer {
	t.Helper()
	m, err := mail.New(s, mail.Config{
		CompanyName: "Acme",
		FrontURL:    "https://app.example.com",
		ResetPath:   "/reset-password",
		InvitePath:  "/invite",
	})
	require.NoError(t, err)
	return m
}

func TestMailerRendersTemplates(t *testing.T) {
	rec := &recordingSender{}
	m := newMailer(t, rec)
	ctx := context.Background()

	require.NoError(t, m.SendOTP(ctx, "a@example.com", "123456", "REF-1", 5*time.Minute))
	require.NoError(t, m.SendInvite(ctx, "b@example.com", "tok/en+", "owner", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, m.SendPasswordReset(ctx, "c@example.com", "k-1", 2*time.Hour))

	require.Len(t, rec.sent, 3)
	require.Contains(t, rec.sent[0].HTML, "123456")
	require.Contains(t, rec.sent[0].HTML, "REF-1")
	require.Contains(t, rec.sent[0].HTML, "5 minutes")
	require.Equal(t, "b@example.com", rec.sent[1].To)
	require.Contains(t, rec.sent[1].HTML, "https://app.example.com/invite?ref=tok%2Fen%2B")
	require.Contains(t, rec.sent[2].HTML, "https://app.example.com/reset-password?key=k-1")
}

func TestMailerWrapsDeliveryFailure(t *testing.T) {
	m := newMailer(t, &recordingSender{err: errors.New("connection refused")})

	err := m.SendOTP(context.Background(), "a@example.com", "123456", "REF-1", time.Minute)
	require.ErrorIs(t, err, mail.ErrDelivery)
}

func TestDisabledSender(t *testing.T) {
	m := newMailer(t, mail.DisabledSender{})
	require.NoError(t, m.SendPasswordReset(context.Background(), "c@example.com", "k", time.Hour))
}
