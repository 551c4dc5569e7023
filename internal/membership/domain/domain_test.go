package domain_test

import (
	"testing"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/stretchr/testify/require"
)

func TestUserTransitions(t *testing.T) {
	tests := []struct {
		from, to domain.Status
		ok       bool
	}{
		{domain.StatusPending, domain.StatusActive, true},
		{domain.StatusPending, domain.StatusDeleted, true},
		{domain.StatusPending, domain.StatusSuspended, false},
		{domain.StatusActive, domain.StatusSuspended, true},
		{domain.StatusActive, domain.StatusPending, false},
		{domain.StatusSuspended, domain.StatusActive, true},
		{domain.StatusDeleted, domain.StatusActive, false},
		{domain.StatusActive, domain.InviteAccepted, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			require.Equal(t, tt.ok, tt.from.CanTransition(tt.to))
		})
	}
	require.True(t, domain.StatusDeleted.IsTerminal())
	require.False(t, domain.StatusActive.IsTerminal())
}

func TestInviteTransitions(t *testing.T) {
	require.True(t, domain.InvitePending.CanTransition(domain.InviteVerified))
	require.False(t, domain.InvitePending.CanTransition(domain.InviteAccepted))
	require.True(t, domain.InviteVerified.CanTransition(domain.InviteAccepted))
	require.True(t, domain.InviteVerified.CanTransition(domain.InviteRevoked))

	for _, s := range []domain.Status{domain.InviteAccepted, domain.InviteExpired, domain.InviteRevoked} {
		require.True(t, s.IsTerminal(), s.String())
		require.False(t, s.IsActiveInvite(), s.String())
		require.False(t, s.CanTransition(domain.InvitePending), s.String())
	}
}

func TestFanOut(t *testing.T) {
	catalog := make([]domain.Permission, 0, 20)
	for id := int64(1); id <= 20; id++ {
		catalog = append(catalog, domain.Permission{ID: id})
	}

	captain, err := domain.FanOut(domain.RoleCaptain, catalog)
	require.NoError(t, err)
	require.Len(t, captain, 20)

	owner, err := domain.FanOut(domain.RoleOwner, catalog)
	require.NoError(t, err)
	require.Len(t, owner, 19)
	for _, p := range owner {
		require.NotEqual(t, domain.PermManageSystem, p.ID)
	}

	admin, err := domain.FanOut(domain.RoleAdmin, catalog)
	require.NoError(t, err)
	require.Len(t, admin, 16)

	_, err = domain.FanOut(99, catalog)
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestProfileDisplayName(t *testing.T) {
	require.Equal(t, "", domain.Profile{}.DisplayName())
	require.Equal(t, "Rhea Captain", domain.Profile{Translations: []domain.Translation{{FirstName: "Rhea", LastName: "Captain"}}}.DisplayName())
	require.Equal(t, "Ree", domain.Profile{Translations: []domain.Translation{{FirstName: "Rhea", Nickname: "Ree"}}}.DisplayName())
	require.Equal(t, "a@b.co", domain.NormalizeEmail("  A@B.co "))
}
