package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/sqlrepo"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlstateUniqueViolation is the PostgreSQL unique_violation code.
const sqlstateUniqueViolation = "23505"

var dialect = sqlrepo.Dialect{
	Name:              "postgres",
	Numbered:          true,
	IsUniqueViolation: isUniqueViolation,
}

// Store is the PostgreSQL driver. Row-level locking on the conditional
// UPDATEs gives the same exactly-once guarantees as the SQLite driver
// without serialising connections.
type Store struct {
	db *sql.DB
	q  *sqlrepo.Queries
}

var _ store.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db: db,
		q:  sqlrepo.New(db, dialect),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return s.q }
func (s *Store) Commitments() store.Commitments     { return s.q }
func (s *Store) Nonces() store.Nonces               { return s.q }
func (s *Store) SessionTokens() store.SessionTokens { return s.q }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateUniqueViolation
}
