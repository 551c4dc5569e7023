package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict is returned by compare-and-set updates that matched no row
	// because another writer got there first.
	ErrConflict = errors.New("store: concurrent update")
)

// Store is the root data access interface. It exposes sub-repositories so a
// transaction-scoped Store can be handed to the same code paths, and nested
// transactions are refused.
type Store interface {
	Users() Users
	Profiles() Profiles
	Roles() Roles
	OTPs() OTPs
	Invitations() Invitations
	PasswordResets() PasswordResets
	LoginTransactions() LoginTransactions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn use only tx, never the outer Store.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user; a taken e-mail yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	UpdateStatus(ctx context.Context, userID string, status domain.Status, now time.Time) error
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error
	UpdateAvatar(ctx context.Context, userID string, avatar *domain.Avatar, now time.Time) error

	// DeleteUser hard-deletes the user; profile, role and permission rows cascade.
	DeleteUser(ctx context.Context, userID string) error

	Count(ctx context.Context) (int, error)
	IsEmpty(ctx context.Context) (bool, error)
}

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)

	// ReplaceProfile writes user_info and replaces every translation row.
	ReplaceProfile(ctx context.Context, userID string, p domain.Profile, now time.Time) error
}

type Roles interface {
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)

	ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error)
	ListUserPermissions(ctx context.Context, userID string) ([]domain.Permission, error)

	AssignRole(ctx context.Context, userID string, roleID int64, now time.Time) error
	ClearRoles(ctx context.Context, userID string) error
	GrantPermissions(ctx context.Context, userID string, permissionIDs []int64, now time.Time) error
	ClearPermissions(ctx context.Context, userID string) error
}

type OTPs interface {
	CreateOTP(ctx context.Context, o domain.OTP) error
	GetOTPByRef(ctx context.Context, ref string) (domain.OTP, error)

	// ExpireActiveOTPs sets expires_at = now on every unused, unexpired code
	// for (email, purpose) and returns how many were superseded.
	ExpireActiveOTPs(ctx context.Context, email string, purpose domain.Purpose, now time.Time) (int64, error)

	IncrementOTPAttempts(ctx context.Context, id string) error

	// MarkOTPUsed consumes the code only if it is still unused and unexpired
	// at now; otherwise ErrConflict.
	MarkOTPUsed(ctx context.Context, id string, now time.Time) error

	// MarkOTPRedeemed records that a verified code authorised a follow-up
	// action; a second redemption yields ErrConflict.
	MarkOTPRedeemed(ctx context.Context, id string, now time.Time) error

	CountActiveOTPs(ctx context.Context, email string, purpose domain.Purpose, now time.Time) (int, error)
	DeleteOTPsExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

type Invitations interface {
	CreateInvitation(ctx context.Context, inv domain.Invitation) error
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)
	GetInvitationByRefHash(ctx context.Context, refHash string) (domain.Invitation, error)
	ListInvitations(ctx context.Context, f domain.InvitationFilter) ([]domain.Invitation, error)

	// ExpireActiveInvitations moves every Pending/Verified invitation for
	// email to Expired with expires_at = now.
	ExpireActiveInvitations(ctx context.Context, email string, now time.Time) (int64, error)

	// TransitionInvitation moves id from one status to another. A row no
	// longer in from yields ErrConflict.
	TransitionInvitation(ctx context.Context, id string, from, to domain.Status, now time.Time) error

	// MarkInvitationAccepted moves a Verified invitation to Accepted and
	// records the provisioned user.
	MarkInvitationAccepted(ctx context.Context, id, userID string, now time.Time) error

	// ExpireLapsedInvitations marks Pending/Verified rows past expiry as Expired.
	ExpireLapsedInvitations(ctx context.Context, now time.Time) (int64, error)

	CountActiveInvitations(ctx context.Context, email string) (int, error)
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error
	GetPasswordResetByKeyHash(ctx context.Context, keyHash string) (domain.PasswordReset, error)
	ExpireActivePasswordResets(ctx context.Context, email string, now time.Time) (int64, error)

	// MarkPasswordResetUsed consumes the key only if unused and unexpired at
	// now; otherwise ErrConflict.
	MarkPasswordResetUsed(ctx context.Context, id string, now time.Time) error

	DeletePasswordResetsExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}

// LoginTransactions is append-only.
type LoginTransactions interface {
	AppendLoginTransaction(ctx context.Context, t domain.LoginTransaction) error
	ListLoginTransactions(ctx context.Context, f domain.LoginTransactionFilter) ([]domain.LoginTransaction, error)
}
