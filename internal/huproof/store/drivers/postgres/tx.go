package postgres

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/sqlrepo"
)

type txStore struct {
	tx *sql.Tx
	q  *sqlrepo.Queries
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: sqlrepo.New(tx, dialect)}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return t.q }
func (t *txStore) Commitments() store.Commitments     { return t.q }
func (t *txStore) Nonces() store.Nonces               { return t.q }
func (t *txStore) SessionTokens() store.SessionTokens { return t.q }

func (t *txStore) ApplyMigrations() error { return nil }
