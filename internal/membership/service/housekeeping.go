package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/metrics"
	"github.com/aussiebroadwan/membership/internal/membership/store"
)

// DefaultRetention is how long expired codes and reset keys are kept before
// a purge removes them.
const DefaultRetention = 24 * time.Hour

// HousekeepingService removes spent OTP and reset rows and marks lapsed
// invitations Expired. It runs on demand (the purge command); expiry itself
// is always enforced at read time.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Retention time.Duration
}

// PurgeReport counts what a purge touched.
type PurgeReport struct {
	OTPsDeleted        int64
	ResetsDeleted      int64
	InvitationsExpired int64
}

// Purge runs every cleanup step. Steps are independent: a failing step is
// logged and reported, and the others still run.
func (s *HousekeepingService) Purge(ctx context.Context, now time.Time) (PurgeReport, error) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	retention := s.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := now.UTC().Add(-retention)

	log.Info("starting housekeeping purge", slog.Time("cutoff", cutoff))

	var (
		report PurgeReport
		errs   []error
		err    error
	)

	// Clean expired OTPs
	if report.OTPsDeleted, err = s.Store.OTPs().DeleteOTPsExpiredBefore(ctx, cutoff); err != nil {
		log.Error("failed to delete expired otps", slog.Any("error", err))
		errs = append(errs, err)
	}

	// Clean expired reset keys
	if report.ResetsDeleted, err = s.Store.PasswordResets().DeletePasswordResetsExpiredBefore(ctx, cutoff); err != nil {
		log.Error("failed to delete expired password resets", slog.Any("error", err))
		errs = append(errs, err)
	}

	// Expire lapsed invitations
	if report.InvitationsExpired, err = s.Store.Invitations().ExpireLapsedInvitations(ctx, now.UTC()); err != nil {
		log.Error("failed to expire lapsed invitations", slog.Any("error", err))
		errs = append(errs, err)
	}
	s.Metrics.Invitations("expired", report.InvitationsExpired)

	log.Info("housekeeping purge completed",
		slog.Int64("otps_deleted", report.OTPsDeleted),
		slog.Int64("resets_deleted", report.ResetsDeleted),
		slog.Int64("invitations_expired", report.InvitationsExpired),
	)
	return report, errors.Join(errs...)
}
