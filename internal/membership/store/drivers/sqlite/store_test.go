package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
	"github.com/aussiebroadwan/membership/internal/membership/store"
	"github.com/aussiebroadwan/membership/internal/membership/store/drivers/sqlite"
	"github.com/aussiebroadwan/membership/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "hash",
		Status:       domain.StatusActive,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsSeedCatalog(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	roles, err := s.Roles().ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	require.Equal(t, "captain", roles[0].Name)

	perms, err := s.Roles().ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 20)
	require.Equal(t, "invite_members", perms[domain.PermInviteMembers-1].Name)

	v, dirty, err := s.MigrationVersion()
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 2, v)

	// Re-applying is a no-op.
	require.NoError(t, s.ApplyMigrations())
}

func TestUsers(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u := createUser(t, s, "Rhea@Example.com")

	got, err := s.Users().GetUserByEmail(ctx, "rhea@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "rhea@example.com", got.Email)
	require.True(t, t0.Equal(got.CreatedAt))

	dup := u
	dup.ID = idx.New().String()
	dup.Email = "RHEA@example.com"
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	require.NoError(t, s.Users().UpdateStatus(ctx, u.ID, domain.StatusSuspended, t0.Add(time.Minute)))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, got.Status)

	require.NoError(t, s.Users().UpdateAvatar(ctx, u.ID, &domain.Avatar{ID: "a1", BaseURL: "https://cdn/a1.png"}, t0))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "a1", got.Avatar.ID)

	require.ErrorIs(t, s.Users().UpdateStatus(ctx, "missing", domain.StatusActive, t0), store.ErrNotFound)
	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "gone@example.com")

	require.NoError(t, s.Profiles().ReplaceProfile(ctx, u.ID, domain.Profile{
		Phone:        "+66812345678",
		Translations: []domain.Translation{{LanguageCode: "en", FirstName: "Gone"}},
	}, t0))
	require.NoError(t, s.Roles().AssignRole(ctx, u.ID, domain.RoleAdmin, t0))
	require.NoError(t, s.Roles().GrantPermissions(ctx, u.ID, []int64{1, 2}, t0))
	require.NoError(t, s.LoginTransactions().AppendLoginTransaction(ctx, domain.LoginTransaction{
		ID: idx.New().String(), UserID: u.ID, Outcome: domain.LoginSuccess, CreatedAt: t0,
	}))

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))

	p, err := s.Profiles().GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, p.Translations)
	perms, err := s.Roles().ListUserPermissions(ctx, u.ID)
	require.NoError(t, err)
	require.Empty(t, perms)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)
}

func TestForeignKeysEnforced(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "fk@example.com")

	require.Error(t, s.Roles().AssignRole(ctx, u.ID, 99, t0))
	require.Error(t, s.Roles().GrantPermissions(ctx, u.ID, []int64{999}, t0))
}

func TestOTPSupersedeAndCompareAndSet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	newOTP := func(ref string) domain.OTP {
		return domain.OTP{
			ID:             idx.New().String(),
			RecipientEmail: "otp@example.com",
			Purpose:        domain.PurposePasswordReset,
			CodeHash:       "h",
			Ref:            ref,
			ExpiresAt:      t0.Add(5 * time.Minute),
			CreatedAt:      t0,
		}
	}

	first := newOTP("REF-1")
	require.NoError(t, s.OTPs().CreateOTP(ctx, first))

	n, err := s.OTPs().ExpireActiveOTPs(ctx, "OTP@example.com", domain.PurposePasswordReset, t0.Add(time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	second := newOTP("REF-2")
	require.NoError(t, s.OTPs().CreateOTP(ctx, second))

	count, err := s.OTPs().CountActiveOTPs(ctx, "otp@example.com", domain.PurposePasswordReset, t0.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Superseded code can no longer be consumed.
	require.ErrorIs(t, s.OTPs().MarkOTPUsed(ctx, first.ID, t0.Add(2*time.Second)), store.ErrConflict)

	require.NoError(t, s.OTPs().IncrementOTPAttempts(ctx, second.ID))
	require.NoError(t, s.OTPs().MarkOTPUsed(ctx, second.ID, t0.Add(2*time.Second)))
	require.ErrorIs(t, s.OTPs().MarkOTPUsed(ctx, second.ID, t0.Add(3*time.Second)), store.ErrConflict)

	got, err := s.OTPs().GetOTPByRef(ctx, "REF-2")
	require.NoError(t, err)
	require.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.UsedAt)
	require.Nil(t, got.RedeemedAt)

	require.NoError(t, s.OTPs().MarkOTPRedeemed(ctx, second.ID, t0.Add(4*time.Second)))
	require.ErrorIs(t, s.OTPs().MarkOTPRedeemed(ctx, second.ID, t0.Add(5*time.Second)), store.ErrConflict)

	deleted, err := s.OTPs().DeleteOTPsExpiredBefore(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)
}

func TestInvitationTransitions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	inviter := createUser(t, s, "captain@example.com")

	inv := domain.Invitation{
		ID:        idx.New().String(),
		InviterID: inviter.ID,
		Email:     "new@example.com",
		RoleID:    domain.RoleOwner,
		RefHash:   "ref-hash-1",
		Status:    domain.InvitePending,
		ExpiresAt: t0.Add(time.Hour),
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	require.NoError(t, s.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitePending, domain.InviteVerified, t0))
	require.ErrorIs(t, s.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitePending, domain.InviteVerified, t0), store.ErrConflict)

	n, err := s.Invitations().ExpireActiveInvitations(ctx, "NEW@example.com", t0.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := s.Invitations().GetInvitationByRefHash(ctx, "ref-hash-1")
	require.NoError(t, err)
	require.Equal(t, domain.InviteExpired, got.Status)
	require.True(t, got.ExpiresAt.Equal(t0.Add(time.Minute)))

	// Accept only works from Verified.
	require.ErrorIs(t, s.Invitations().MarkInvitationAccepted(ctx, inv.ID, inviter.ID, t0), store.ErrConflict)

	list, err := s.Invitations().ListInvitations(ctx, domain.InvitationFilter{Email: "new@example.com"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	active, err := s.Invitations().CountActiveInvitations(ctx, "new@example.com")
	require.NoError(t, err)
	require.Zero(t, active)
}

func TestExpireLapsedInvitations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i, exp := range []time.Duration{-time.Minute, time.Hour} {
		require.NoError(t, s.Invitations().CreateInvitation(ctx, domain.Invitation{
			ID:        idx.New().String(),
			Email:     "lapse@example.com",
			RoleID:    domain.RoleAdmin,
			RefHash:   string(rune('a' + i)),
			Status:    domain.InvitePending,
			ExpiresAt: t0.Add(exp),
			CreatedAt: t0.Add(-2 * time.Hour),
			UpdatedAt: t0.Add(-2 * time.Hour),
		}))
	}

	n, err := s.Invitations().ExpireLapsedInvitations(ctx, t0)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestPasswordResetSingleUse(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	pr := domain.PasswordReset{
		ID:             idx.New().String(),
		RecipientEmail: "reset@example.com",
		KeyHash:        "kh",
		ExpiresAt:      t0.Add(2 * time.Hour),
		CreatedAt:      t0,
	}
	require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, pr))
	require.NoError(t, s.PasswordResets().MarkPasswordResetUsed(ctx, pr.ID, t0.Add(time.Minute)))
	require.ErrorIs(t, s.PasswordResets().MarkPasswordResetUsed(ctx, pr.ID, t0.Add(time.Minute)), store.ErrConflict)

	got, err := s.PasswordResets().GetPasswordResetByKeyHash(ctx, "kh")
	require.NoError(t, err)
	require.NotNil(t, got.UsedAt)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "tx@example.com", PasswordHash: "h",
			Status: domain.StatusActive, CreatedAt: t0, UpdatedAt: t0,
		}))
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Users().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestLoginTransactionsNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u := createUser(t, s, "audit@example.com")

	for i, outcome := range []domain.LoginOutcome{domain.LoginFailed, domain.LoginSuccess} {
		require.NoError(t, s.LoginTransactions().AppendLoginTransaction(ctx, domain.LoginTransaction{
			ID:        idx.New().String(),
			UserID:    u.ID,
			Outcome:   outcome,
			IPAddress: "10.0.0.1",
			CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := s.LoginTransactions().ListLoginTransactions(ctx, domain.LoginTransactionFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, domain.LoginSuccess, list[0].Outcome)
	require.Equal(t, domain.LoginFailed, list[1].Outcome)
}
