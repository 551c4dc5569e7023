package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/store"
)

type RolesService struct {
	Store store.Store
}

// ListRoles returns the role catalog.
func (s *RolesService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

// ListPermissions returns the permission catalog.
func (s *RolesService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.Store.Roles().ListPermissions(ctx)
}

// grantRole assigns roleID to userID and fans out the role's permissions:
// the whole catalog minus the role's exclusions, fixed at assignment time.
func grantRole(ctx context.Context, st store.Store, userID string, roleID int64, now time.Time) error {
	if _, err := st.Roles().GetRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %d", ErrUnknownRole, roleID)
		}
		return err
	}

	catalog, err := st.Roles().ListPermissions(ctx)
	if err != nil {
		return err
	}
	granted, err := domain.FanOut(roleID, catalog)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrUnknownRole, roleID)
	}

	if err := st.Roles().AssignRole(ctx, userID, roleID, now); err != nil {
		return err
	}

	ids := make([]int64, 0, len(granted))
	for _, p := range granted {
		ids = append(ids, p.ID)
	}
	return st.Roles().GrantPermissions(ctx, userID, ids, now)
}
