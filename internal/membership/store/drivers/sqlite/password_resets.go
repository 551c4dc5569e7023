package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type passwordResetsRepo struct {
	db dbtx
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (id, recipient_email, key_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		pr.ID, domain.NormalizeEmail(pr.RecipientEmail), pr.KeyHash, utc(pr.ExpiresAt), utc(pr.CreatedAt))
	return mapWriteError(err)
}

func (r *passwordResetsRepo) GetPasswordResetByKeyHash(ctx context.Context, keyHash string) (domain.PasswordReset, error) {
	var (
		pr                   domain.PasswordReset
		expiresAt, createdAt time.Time
		usedAt               sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, recipient_email, key_hash, expires_at, used_at, created_at
		FROM password_resets WHERE key_hash = ?`, keyHash).
		Scan(&pr.ID, &pr.RecipientEmail, &pr.KeyHash, &expiresAt, &usedAt, &createdAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.ExpiresAt = expiresAt.UTC()
	pr.CreatedAt = createdAt.UTC()
	pr.UsedAt = mapNullTimePtr(usedAt)
	return pr, nil
}

func (r *passwordResetsRepo) ExpireActivePasswordResets(ctx context.Context, email string, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE password_resets SET expires_at = ?
		WHERE recipient_email = ? AND used_at IS NULL AND expires_at > ?`,
		utc(now), domain.NormalizeEmail(email), utc(now)))
}

func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, id string, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE password_resets SET used_at = ?
		WHERE id = ? AND used_at IS NULL AND expires_at > ?`,
		utc(now), id, utc(now)))
}

func (r *passwordResetsRepo) DeletePasswordResetsExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE expires_at < ?`, utc(before)))
}
