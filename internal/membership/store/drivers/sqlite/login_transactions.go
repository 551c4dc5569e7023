package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/membership/internal/membership/domain"
)

type loginTransactionsRepo struct {
	db dbtx
}

func (r *loginTransactionsRepo) AppendLoginTransaction(ctx context.Context, t domain.LoginTransaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_transactions (id, user_id, outcome, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Outcome), t.IPAddress, t.UserAgent, utc(t.CreatedAt))
	return mapWriteError(err)
}

func (r *loginTransactionsRepo) ListLoginTransactions(ctx context.Context, f domain.LoginTransactionFilter) ([]domain.LoginTransaction, error) {
	limit, offset := limitOffset(f.Limit, f.Offset)

	query := `SELECT id, user_id, outcome, ip_address, user_agent, created_at FROM login_transactions`
	args := []any{}
	if f.UserID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, f.UserID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LoginTransaction{}
	for rows.Next() {
		var (
			t         domain.LoginTransaction
			outcome   string
			createdAt time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &outcome, &t.IPAddress, &t.UserAgent, &createdAt); err != nil {
			return nil, err
		}
		t.Outcome = domain.LoginOutcome(outcome)
		t.CreatedAt = createdAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
