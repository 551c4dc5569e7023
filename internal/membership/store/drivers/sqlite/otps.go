package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type otpsRepo struct {
	db dbtx
}

const otpColumns = `id, recipient_email, purpose, code_hash, ref, attempts, expires_at, used_at, redeemed_at, created_at`

func scanOTP(row interface{ Scan(...any) error }) (domain.OTP, error) {
	var (
		o                    domain.OTP
		purpose              string
		expiresAt, createdAt time.Time
		usedAt, redeemedAt   sql.NullTime
	)
	if err := row.Scan(&o.ID, &o.RecipientEmail, &purpose, &o.CodeHash, &o.Ref, &o.Attempts,
		&expiresAt, &usedAt, &redeemedAt, &createdAt); err != nil {
		return domain.OTP{}, err
	}
	o.Purpose = domain.Purpose(purpose)
	o.ExpiresAt = expiresAt.UTC()
	o.CreatedAt = createdAt.UTC()
	o.UsedAt = mapNullTimePtr(usedAt)
	o.RedeemedAt = mapNullTimePtr(redeemedAt)
	return o, nil
}

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OTP) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otps (id, recipient_email, purpose, code_hash, ref, attempts, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		o.ID, domain.NormalizeEmail(o.RecipientEmail), string(o.Purpose), o.CodeHash, o.Ref,
		utc(o.ExpiresAt), utc(o.CreatedAt),
	)
	return mapWriteError(err)
}

func (r *otpsRepo) GetOTPByRef(ctx context.Context, ref string) (domain.OTP, error) {
	o, err := scanOTP(r.db.QueryRowContext(ctx, `SELECT `+otpColumns+` FROM otps WHERE ref = ?`, ref))
	if err != nil {
		return domain.OTP{}, mapNotFound(err)
	}
	return o, nil
}

func (r *otpsRepo) ExpireActiveOTPs(ctx context.Context, email string, purpose domain.Purpose, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE otps SET expires_at = ?
		WHERE recipient_email = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?`,
		utc(now), domain.NormalizeEmail(email), string(purpose), utc(now)))
}

func (r *otpsRepo) IncrementOTPAttempts(ctx context.Context, id string) error {
	return mapNotFoundOnZero(r.db.ExecContext(ctx, `UPDATE otps SET attempts = attempts + 1 WHERE id = ?`, id))
}

func (r *otpsRepo) MarkOTPUsed(ctx context.Context, id string, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE otps SET used_at = ?
		WHERE id = ? AND used_at IS NULL AND expires_at > ?`,
		utc(now), id, utc(now)))
}

func (r *otpsRepo) MarkOTPRedeemed(ctx context.Context, id string, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE otps SET redeemed_at = ?
		WHERE id = ? AND used_at IS NOT NULL AND redeemed_at IS NULL`,
		utc(now), id))
}

func (r *otpsRepo) CountActiveOTPs(ctx context.Context, email string, purpose domain.Purpose, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM otps
		WHERE recipient_email = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?`,
		domain.NormalizeEmail(email), string(purpose), utc(now)).Scan(&n)
	return n, err
}

func (r *otpsRepo) DeleteOTPsExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM otps WHERE expires_at < ?`, utc(before)))
}
