package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, inviter_id, email, role_id, ref_hash, status_id, expires_at, accepted_user_id, created_at, updated_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var (
		inv                             domain.Invitation
		inviter, acceptedBy             sql.NullString
		status                          int64
		expiresAt, createdAt, updatedAt time.Time
	)
	if err := row.Scan(&inv.ID, &inviter, &inv.Email, &inv.RoleID, &inv.RefHash, &status,
		&expiresAt, &acceptedBy, &createdAt, &updatedAt); err != nil {
		return domain.Invitation{}, err
	}
	inv.InviterID = mapNullString(inviter)
	inv.AcceptedUserID = mapNullString(acceptedBy)
	inv.Status = domain.Status(status)
	inv.ExpiresAt = expiresAt.UTC()
	inv.CreatedAt = createdAt.UTC()
	inv.UpdatedAt = updatedAt.UTC()
	return inv, nil
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, inviter_id, email, role_id, ref_hash, status_id, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, mapStringNull(inv.InviterID), domain.NormalizeEmail(inv.Email), inv.RoleID, inv.RefHash,
		int64(inv.Status), utc(inv.ExpiresAt), utc(inv.CreatedAt), utc(inv.UpdatedAt),
	)
	return mapWriteError(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) GetInvitationByRefHash(ctx context.Context, refHash string) (domain.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE ref_hash = ?`, refHash))
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, f domain.InvitationFilter) ([]domain.Invitation, error) {
	var (
		where []string
		args  []any
	)
	if f.Email != "" {
		where = append(where, "email = ?")
		args = append(args, domain.NormalizeEmail(f.Email))
	}
	if f.Status != 0 {
		where = append(where, "status_id = ?")
		args = append(args, int64(f.Status))
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	limit, offset := limitOffset(f.Limit, f.Offset)
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) ExpireActiveInvitations(ctx context.Context, email string, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status_id = ?, expires_at = ?, updated_at = ?
		WHERE email = ? AND status_id IN (?, ?)`,
		int64(domain.InviteExpired), utc(now), utc(now),
		domain.NormalizeEmail(email), int64(domain.InvitePending), int64(domain.InviteVerified)))
}

func (r *invitationsRepo) TransitionInvitation(ctx context.Context, id string, from, to domain.Status, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE invitations SET status_id = ?, updated_at = ?
		WHERE id = ? AND status_id = ?`,
		int64(to), utc(now), id, int64(from)))
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id, userID string, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE invitations SET status_id = ?, accepted_user_id = ?, updated_at = ?
		WHERE id = ? AND status_id = ? AND expires_at > ?`,
		int64(domain.InviteAccepted), userID, utc(now), id, int64(domain.InviteVerified), utc(now)))
}

func (r *invitationsRepo) ExpireLapsedInvitations(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE invitations SET status_id = ?, updated_at = ?
		WHERE status_id IN (?, ?) AND expires_at <= ?`,
		int64(domain.InviteExpired), utc(now),
		int64(domain.InvitePending), int64(domain.InviteVerified), utc(now)))
}

func (r *invitationsRepo) CountActiveInvitations(ctx context.Context, email string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM invitations WHERE email = ? AND status_id IN (?, ?)`,
		domain.NormalizeEmail(email), int64(domain.InvitePending), int64(domain.InviteVerified)).Scan(&n)
	return n, err
}
