package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/pkg/slogx"
)

// MemberService administers existing members.
type MemberService struct {
	Store store.Store
	Now   func() time.Time
}

// loadMember joins a user with its profile, roles and permissions.
func loadMember(ctx context.Context, st store.Store, u domain.User) (domain.Member, error) {
	profile, err := st.Profiles().GetProfile(ctx, u.ID)
	if err != nil {
		return domain.Member{}, err
	}
	roles, err := st.Roles().ListUserRoles(ctx, u.ID)
	if err != nil {
		return domain.Member{}, err
	}
	perms, err := st.Roles().ListUserPermissions(ctx, u.ID)
	if err != nil {
		return domain.Member{}, err
	}
	return domain.Member{User: u, Profile: profile, Roles: roles, Permissions: perms}, nil
}

func getUser(ctx context.Context, st store.Store, userID string) (domain.User, error) {
	u, err := st.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// Get returns the member with id userID.
func (s *MemberService) Get(ctx context.Context, userID string) (domain.Member, error) {
	u, err := getUser(ctx, s.Store, userID)
	if err != nil {
		return domain.Member{}, err
	}
	return loadMember(ctx, s.Store, u)
}

// Profile returns the profile of userID.
func (s *MemberService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	if _, err := getUser(ctx, s.Store, userID); err != nil {
		return domain.Profile{}, err
	}
	return s.Store.Profiles().GetProfile(ctx, userID)
}

// ChangeStatus moves a user along the status table. Deleted is terminal.
func (s *MemberService) ChangeStatus(ctx context.Context, userID string, next domain.Status) error {
	log := slogx.FromContext(ctx)

	if !next.IsUserStatus() {
		return validationf("unknown user status %d", int64(next))
	}

	var from domain.Status
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := getUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		from = u.Status

		if !from.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}
		return tx.Users().UpdateStatus(ctx, userID, next, clock(s.Now))
	})
	if err != nil {
		log.Warn("status change rejected",
			slog.String("user_id", userID),
			slog.String("to", next.String()),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("user status changed",
		slog.String("user_id", userID),
		slog.String("from", from.String()),
		slog.String("to", next.String()),
	)
	return nil
}

// AssignRole replaces the user's role and recomputes the permission fan-out.
func (s *MemberService) AssignRole(ctx context.Context, userID string, roleID int64) error {
	log := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := tx.Roles().ClearRoles(ctx, userID); err != nil {
			return err
		}
		if err := tx.Roles().ClearPermissions(ctx, userID); err != nil {
			return err
		}
		return grantRole(ctx, tx, userID, roleID, clock(s.Now))
	})
	if err != nil {
		log.Warn("role assignment failed",
			slog.String("user_id", userID),
			slog.Int64("role_id", roleID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("role assigned", slog.String("user_id", userID), slog.Int64("role_id", roleID))
	return nil
}

// UpdateAvatar sets or, with a nil avatar, clears the user's avatar.
func (s *MemberService) UpdateAvatar(ctx context.Context, userID string, avatar *domain.Avatar) error {
	err := s.Store.Users().UpdateAvatar(ctx, userID, avatar, clock(s.Now))
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// ListLoginTransactions returns audit rows, newest first.
func (s *MemberService) ListLoginTransactions(ctx context.Context, f domain.LoginTransactionFilter) ([]domain.LoginTransaction, error) {
	return s.Store.LoginTransactions().ListLoginTransactions(ctx, f)
}

// DeleteUser removes the user and every row that hangs off it.
func (s *MemberService) DeleteUser(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		log.Error("failed to delete user", slog.String("user_id", userID), slog.Any("error", err))
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID))
	return nil
}
