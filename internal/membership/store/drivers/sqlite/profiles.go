package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type profilesRepo struct {
	db dbtx
}

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile

	err := r.db.QueryRowContext(ctx, `SELECT phone FROM user_info WHERE user_id = ?`, userID).Scan(&p.Phone)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT language_code, first_name, last_name, nickname
		FROM user_info_translation
		WHERE user_id = ?
		ORDER BY rowid`, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.LanguageCode, &t.FirstName, &t.LastName, &t.Nickname); err != nil {
			return domain.Profile{}, err
		}
		p.Translations = append(p.Translations, t)
	}
	return p, rows.Err()
}

func (r *profilesRepo) ReplaceProfile(ctx context.Context, userID string, p domain.Profile, now time.Time) error {
	// 1. Upsert the info row
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO user_info (user_id, phone, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET phone = excluded.phone, updated_at = excluded.updated_at`,
		userID, p.Phone, utc(now)); err != nil {
		return mapWriteError(err)
	}

	// 2. Replace translations wholesale
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_info_translation WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for _, t := range p.Translations {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO user_info_translation (user_id, language_code, first_name, last_name, nickname)
			VALUES (?, ?, ?, ?, ?)`,
			userID, t.LanguageCode, t.FirstName, t.LastName, t.Nickname); err != nil {
			return mapWriteError(err)
		}
	}
	return nil
}
