package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/internal/membership/telemetry"
	"github.com/aussiebroadwan/membership/pkg/cryptox"
	"github.com/aussiebroadwan/membership/pkg/idx"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

const (
	DefaultOTPTTL         = 5 * time.Minute
	DefaultOTPMaxAttempts = 5
)

// OTPService issues and consumes one-time codes. A code is issued, then
// either verified once or expired; both are terminal.
type OTPService struct {
	Store   store.Store
	Mail    Notifier
	Metrics *metrics.Metrics

	StrictMail  bool
	TTL         time.Duration
	MaxAttempts int
	Now         func() time.Time
}

// OTPTicket is what the caller gets back for a code request.
type OTPTicket struct {
	Ref       string
	ExpiresAt time.Time
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultOTPTTL
	}
	return s.TTL
}

func (s *OTPService) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultOTPMaxAttempts
	}
	return s.MaxAttempts
}

// RequestCode supersedes every outstanding code for (email, purpose) and
// issues a new one. Unknown addresses get an identical looking ticket that is
// never persisted.
func (s *OTPService) RequestCode(ctx context.Context, email string, purpose domain.Purpose) (OTPTicket, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "otp.RequestCode")
	defer span.End()
	span.SetAttributes(attribute.String("otp.purpose", string(purpose)))

	log := slogx.FromContext(ctx)

	// 1. Validate input
	if !purpose.Valid() {
		return OTPTicket{}, ErrInvalidPurpose
	}
	email, err := validateEmail(email)
	if err != nil {
		return OTPTicket{}, err
	}

	now := clock(s.Now)
	ticket := OTPTicket{Ref: idx.NewRef(idx.PrefixOTP), ExpiresAt: now.Add(s.ttl())}

	// 2. Unknown recipients get the same answer
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("otp requested for unknown email", slog.String("purpose", string(purpose)))
			return ticket, nil
		}
		log.Error("failed to look up recipient", slog.Any("error", err))
		return OTPTicket{}, err
	}

	// 3. Generate the code
	code, err := cryptox.NumericCode()
	if err != nil {
		log.Error("failed to generate otp", slog.Any("error", err))
		return OTPTicket{}, err
	}
	otp := domain.OTP{
		ID:             idx.New().String(),
		RecipientEmail: email,
		Purpose:        purpose,
		CodeHash:       cryptox.FingerprintToken(code),
		Ref:            ticket.Ref,
		ExpiresAt:      ticket.ExpiresAt,
		CreatedAt:      now,
	}

	// 4. Supersede, insert and notify in one transaction
	var superseded int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.OTPs().ExpireActiveOTPs(ctx, email, purpose, now)
		if err != nil {
			return err
		}
		superseded = n

		if err := tx.OTPs().CreateOTP(ctx, otp); err != nil {
			return err
		}
		return deliver(ctx, s.StrictMail, s.Metrics, "otp", func() error {
			return s.Mail.SendOTP(ctx, email, code, otp.Ref, s.ttl())
		})
	})
	if err != nil {
		span.RecordError(err)
		log.Warn("otp request failed", slog.Any("error", err))
		return OTPTicket{}, err
	}

	s.Metrics.OTPIssued(string(purpose))
	log.Info("otp issued",
		slog.String("otp_id", otp.ID),
		slog.String("purpose", string(purpose)),
		slog.Int64("superseded", superseded),
	)
	return ticket, nil
}

// VerifyCode consumes the code behind ref. A wrong code counts against the
// record's attempts and is reported as not found; once attempts run out the
// record reports expired.
func (s *OTPService) VerifyCode(ctx context.Context, email string, purpose domain.Purpose, ref, code string) error {
	ctx, span := telemetry.Tracer().Start(ctx, "otp.VerifyCode")
	defer span.End()
	span.SetAttributes(attribute.String("otp.purpose", string(purpose)))

	log := slogx.FromContext(ctx)

	if !purpose.Valid() {
		return ErrInvalidPurpose
	}
	email = domain.NormalizeEmail(email)
	now := clock(s.Now)

	var outcome error
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Resolve the record
		otp, err := tx.OTPs().GetOTPByRef(ctx, ref)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPNotFound
			}
			return err
		}
		if otp.RecipientEmail != email || otp.Purpose != purpose {
			return ErrOTPNotFound
		}

		// 2. Terminal states
		if otp.IsUsed() {
			return ErrOTPAlreadyUsed
		}
		if otp.IsExpired(now) || otp.Attempts >= s.maxAttempts() {
			return ErrOTPExpired
		}

		// 3. Wrong code: keep the attempt, report not found
		if !cryptox.MatchesFingerprint(code, otp.CodeHash) {
			if err := tx.OTPs().IncrementOTPAttempts(ctx, otp.ID); err != nil {
				return err
			}
			outcome = ErrOTPNotFound
			return nil
		}

		// 4. Consume with compare-and-set
		if err := tx.OTPs().MarkOTPUsed(ctx, otp.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrOTPAlreadyUsed
			}
			return err
		}
		return nil
	})
	if err == nil {
		err = outcome
	}

	if err != nil {
		s.Metrics.OTPVerified(string(purpose), "rejected")
		log.Warn("otp verification failed", slog.String("purpose", string(purpose)), slog.Any("error", err))
		return err
	}

	s.Metrics.OTPVerified(string(purpose), "ok")
	log.Info("otp verified", slog.String("purpose", string(purpose)))
	return nil
}
