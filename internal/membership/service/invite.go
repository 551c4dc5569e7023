package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
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

// DefaultInviteTTL is how long an invitation stays acceptable.
const DefaultInviteTTL = 7 * 24 * time.Hour

// InviteService runs the invitation lifecycle:
//
//	Pending -> Verified -> Accepted
//	Pending | Verified -> Expired | Revoked
//
// At most one invitation per address is Pending or Verified at any time.
type InviteService struct {
	Store   store.Store
	Mail    Notifier
	Metrics *metrics.Metrics

	StrictMail  bool
	TTL         time.Duration
	PhoneRegion string
	Now         func() time.Time
}

// InviteTicket is returned to the inviter. Ref is the only copy of the
// opaque reference; the store keeps its fingerprint.
type InviteTicket struct {
	ID        string
	Ref       string
	ExpiresAt time.Time
}

type AcceptInput struct {
	Ref      string
	Email    string
	Password string
	Profile  domain.Profile
}

func (s *InviteService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInviteTTL
	}
	return s.TTL
}

func newInviteRef() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	return idx.PrefixInvite + "-" + token, nil
}

// CreateInvitation supersedes any active invitation for email and issues a
// new one.
func (s *InviteService) CreateInvitation(ctx context.Context, inviterID, email string, roleID int64) (InviteTicket, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "invite.Create")
	defer span.End()
	span.SetAttributes(attribute.Int64("invite.role_id", roleID))

	log := slogx.FromContext(ctx)

	// 1. Validate input
	email, err := validateEmail(email)
	if err != nil {
		return InviteTicket{}, err
	}
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite with unknown role", slog.Int64("role_id", roleID))
			return InviteTicket{}, ErrUnknownRole
		}
		return InviteTicket{}, err
	}
	if _, err := domain.ExcludedPermissions(roleID); err != nil {
		return InviteTicket{}, ErrUnknownRole
	}

	// 2. Generate the reference
	ref, err := newInviteRef()
	if err != nil {
		log.Error("failed to generate invite ref", slog.Any("error", err))
		return InviteTicket{}, err
	}

	now := clock(s.Now)
	inv := domain.Invitation{
		ID:        idx.New().String(),
		InviterID: inviterID,
		Email:     email,
		RoleID:    roleID,
		RefHash:   cryptox.FingerprintToken(ref),
		Status:    domain.InvitePending,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 3. Supersede, insert and notify in one transaction
	var superseded int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		n, err := tx.Invitations().ExpireActiveInvitations(ctx, email, now)
		if err != nil {
			return err
		}
		superseded = n

		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			return err
		}
		return deliver(ctx, s.StrictMail, s.Metrics, "invite", func() error {
			return s.Mail.SendInvite(ctx, email, ref, role.Name, inv.ExpiresAt)
		})
	})
	if err != nil {
		span.RecordError(err)
		log.Warn("invitation not created", slog.Any("error", err))
		return InviteTicket{}, err
	}

	s.Metrics.Invitation("created")
	s.Metrics.Invitations("superseded", superseded)
	log.Info("invitation created",
		slog.String("invite_id", inv.ID),
		slog.String("inviter_id", inviterID),
		slog.Int64("role_id", roleID),
		slog.Int64("superseded", superseded),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	return InviteTicket{ID: inv.ID, Ref: ref, ExpiresAt: inv.ExpiresAt}, nil
}

// lapse marks an active invitation whose expiry has passed as Expired.
func lapse(ctx context.Context, tx store.Tx, inv domain.Invitation, now time.Time) error {
	err := tx.Invitations().TransitionInvitation(ctx, inv.ID, inv.Status, domain.InviteExpired, now)
	if errors.Is(err, store.ErrConflict) {
		return ErrInviteNotActive
	}
	return err
}

// statusError reports why an invitation in a terminal state cannot move.
func statusError(s domain.Status) error {
	if s == domain.InviteAccepted {
		return ErrInviteAlreadyUsed
	}
	return ErrInviteNotActive
}

// VerifyInvitation moves a Pending invitation to Verified. Verifying an
// already Verified, unexpired invitation returns it unchanged.
func (s *InviteService) VerifyInvitation(ctx context.Context, ref string) (domain.Invitation, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "invite.Verify")
	defer span.End()

	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var (
		inv     domain.Invitation
		outcome error
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = tx.Invitations().GetInvitationByRefHash(ctx, cryptox.FingerprintToken(ref))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		if !inv.Status.IsActiveInvite() {
			return statusError(inv.Status)
		}
		if inv.IsExpired(now) {
			if err := lapse(ctx, tx, inv, now); err != nil {
				return err
			}
			outcome = ErrInviteExpired
			return nil
		}
		if inv.Status == domain.InviteVerified {
			return nil
		}

		if err := tx.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitePending, domain.InviteVerified, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteNotActive
			}
			return err
		}
		inv.Status = domain.InviteVerified
		inv.UpdatedAt = now
		return nil
	})
	if err == nil {
		err = outcome
	}
	if err != nil {
		log.Warn("invitation verification failed", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	s.Metrics.Invitation("verified")
	log.Info("invitation verified", slog.String("invite_id", inv.ID))
	return inv, nil
}

// AcceptInvitation provisions the invited member. User, profile, role,
// permission fan-out and the Accepted transition commit together; any
// failure leaves no trace of the user.
func (s *InviteService) AcceptInvitation(ctx context.Context, in AcceptInput) (domain.User, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "invite.Accept")
	defer span.End()

	log := slogx.FromContext(ctx)

	// 1. Validate input
	email, err := validateEmail(in.Email)
	if err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.User{}, err
	}
	profile, err := normalizeProfile(in.Profile, s.PhoneRegion)
	if err != nil {
		return domain.User{}, err
	}

	// 2. Hash the password outside the transaction
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	now := clock(s.Now)
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 3. Provision atomically
	var (
		inv     domain.Invitation
		outcome error
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = tx.Invitations().GetInvitationByRefHash(ctx, cryptox.FingerprintToken(in.Ref))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		switch {
		case !inv.Status.IsActiveInvite():
			return statusError(inv.Status)
		case inv.IsExpired(now):
			if err := lapse(ctx, tx, inv, now); err != nil {
				return err
			}
			outcome = ErrInviteExpired
			return nil
		case inv.Status != domain.InviteVerified:
			return ErrInviteNotVerified
		case inv.Email != email:
			return ErrInviteEmail
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}
		if err := tx.Profiles().ReplaceProfile(ctx, user.ID, profile, now); err != nil {
			return err
		}
		if err := grantRole(ctx, tx, user.ID, inv.RoleID, now); err != nil {
			return err
		}
		if err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, user.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteNotActive
			}
			return err
		}
		return nil
	})
	if err == nil {
		err = outcome
	}
	if err != nil {
		span.RecordError(err)
		log.Warn("invitation acceptance failed", slog.Any("error", err))
		return domain.User{}, err
	}

	s.Metrics.Invitation("accepted")
	log.Info("member provisioned via invitation",
		slog.String("user_id", user.ID),
		slog.String("invite_id", inv.ID),
		slog.Int64("role_id", inv.RoleID),
	)
	return user, nil
}

// RejectInvitation revokes an active invitation addressed by id or by ref.
func (s *InviteService) RejectInvitation(ctx context.Context, idOrRef string) error {
	log := slogx.FromContext(ctx)
	now := clock(s.Now)

	var inv domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if strings.HasPrefix(idOrRef, idx.PrefixInvite+"-") {
			inv, err = tx.Invitations().GetInvitationByRefHash(ctx, cryptox.FingerprintToken(idOrRef))
		} else {
			inv, err = tx.Invitations().GetInvitationByID(ctx, idOrRef)
		}
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		if !inv.Status.CanTransition(domain.InviteRevoked) {
			return ErrInviteNotActive
		}
		if err := tx.Invitations().TransitionInvitation(ctx, inv.ID, inv.Status, domain.InviteRevoked, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInviteNotActive
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Warn("invitation rejection failed", slog.Any("error", err))
		return err
	}

	s.Metrics.Invitation("revoked")
	log.Info("invitation revoked", slog.String("invite_id", inv.ID))
	return nil
}

// ListInvitations returns invitations matching f, newest first.
func (s *InviteService) ListInvitations(ctx context.Context, f domain.InvitationFilter) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListInvitations(ctx, f)
}
