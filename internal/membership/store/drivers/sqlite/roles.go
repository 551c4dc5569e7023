package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type rolesRepo struct {
	db dbtx
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description FROM roles WHERE id = ?`, id).
		Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return r.queryRoles(ctx, `SELECT id, name, description FROM roles ORDER BY id`)
}

func (r *rolesRepo) ListUserRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	return r.queryRoles(ctx, `
		SELECT r.id, r.name, r.description
		FROM roles r
		JOIN user_role ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY ur.assigned_at, r.id`, userID)
}

func (r *rolesRepo) queryRoles(ctx context.Context, query string, args ...any) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *rolesRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return r.queryPermissions(ctx, `SELECT id, name, description FROM permissions ORDER BY id`)
}

func (r *rolesRepo) ListUserPermissions(ctx context.Context, userID string) ([]domain.Permission, error) {
	return r.queryPermissions(ctx, `
		SELECT p.id, p.name, p.description
		FROM permissions p
		JOIN user_permission up ON up.permission_id = p.id
		WHERE up.user_id = ?
		ORDER BY p.id`, userID)
}

func (r *rolesRepo) queryPermissions(ctx context.Context, query string, args ...any) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Permission{}
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *rolesRepo) AssignRole(ctx context.Context, userID string, roleID int64, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_role (user_id, role_id, assigned_at) VALUES (?, ?, ?)`,
		userID, roleID, utc(now))
	return mapWriteError(err)
}

func (r *rolesRepo) ClearRoles(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_role WHERE user_id = ?`, userID)
	return err
}

func (r *rolesRepo) GrantPermissions(ctx context.Context, userID string, permissionIDs []int64, now time.Time) error {
	for _, id := range permissionIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO user_permission (user_id, permission_id, granted_at) VALUES (?, ?, ?)`,
			userID, id, utc(now)); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}

func (r *rolesRepo) ClearPermissions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_permission WHERE user_id = ?`, userID)
	return err
}
