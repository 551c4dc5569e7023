package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, status_id, avatar_id, avatar_base_url, avatar_lazy_url, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                    domain.User
		status               int64
		avatarID, base, lazy sql.NullString
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &status, &avatarID, &base, &lazy, &createdAt, &updatedAt); err != nil {
		return domain.User{}, err
	}
	u.Status = domain.Status(status)
	u.CreatedAt = createdAt.UTC()
	u.UpdatedAt = updatedAt.UTC()
	if avatarID.Valid {
		u.Avatar = &domain.Avatar{
			ID:      avatarID.String,
			BaseURL: mapNullString(base),
			LazyURL: mapNullString(lazy),
		}
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, domain.NormalizeEmail(email)))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	var avatarID, base, lazy sql.NullString
	if u.Avatar != nil {
		avatarID = mapStringNull(u.Avatar.ID)
		base = mapStringNull(u.Avatar.BaseURL)
		lazy = mapStringNull(u.Avatar.LazyURL)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash, int64(u.Status),
		avatarID, base, lazy, utc(u.CreatedAt), utc(u.UpdatedAt),
	)
	return mapWriteError(err)
}

func (r *usersRepo) UpdateStatus(ctx context.Context, userID string, status domain.Status, now time.Time) error {
	return mapNotFoundOnZero(r.db.ExecContext(ctx,
		`UPDATE users SET status_id = ?, updated_at = ? WHERE id = ?`, int64(status), utc(now), userID))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error {
	return mapNotFoundOnZero(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, utc(now), userID))
}

func (r *usersRepo) UpdateAvatar(ctx context.Context, userID string, avatar *domain.Avatar, now time.Time) error {
	var avatarID, base, lazy sql.NullString
	if avatar != nil {
		avatarID = mapStringNull(avatar.ID)
		base = mapStringNull(avatar.BaseURL)
		lazy = mapStringNull(avatar.LazyURL)
	}
	return mapNotFoundOnZero(r.db.ExecContext(ctx, `
		UPDATE users
		SET avatar_id = ?, avatar_base_url = ?, avatar_lazy_url = ?, updated_at = ?
		WHERE id = ?`,
		avatarID, base, lazy, utc(now), userID))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return mapNotFoundOnZero(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID))
}

func (r *usersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
