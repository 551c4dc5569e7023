package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/membership/internal/membership/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

// Ping is a no-op: the transaction already holds a live connection.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                         { return &usersRepo{db: t.tx} }
func (t *txStore) Profiles() store.Profiles                   { return &profilesRepo{db: t.tx} }
func (t *txStore) Roles() store.Roles                         { return &rolesRepo{db: t.tx} }
func (t *txStore) OTPs() store.OTPs                           { return &otpsRepo{db: t.tx} }
func (t *txStore) Invitations() store.Invitations             { return &invitationsRepo{db: t.tx} }
func (t *txStore) PasswordResets() store.PasswordResets       { return &passwordResetsRepo{db: t.tx} }
func (t *txStore) LoginTransactions() store.LoginTransactions { return &loginTransactionsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
