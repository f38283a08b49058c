package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/sqlrepo"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var dialect = sqlrepo.Dialect{
	Name:              "sqlite",
	IsUniqueViolation: isUniqueViolation,
}

type Store struct {
	db  *sql.DB
	q   *sqlrepo.Queries
	dsn string
}

var _ store.Store = (*Store)(nil)

// NewStore opens a SQLite database. All access goes through one connection,
// which makes every conditional UPDATE atomic with respect to the others and
// keeps ":memory:" databases alive for the life of the Store.
func NewStore(dsn string) (*Store, error) {
	dsn = withDSNOptions(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   sqlrepo.New(db, dialect),
		dsn: dsn,
	}, nil
}

// withDSNOptions pins the time format so timestamps compare correctly as
// text, and turns on foreign keys for every connection.
func withDSNOptions(dsn string) string {
	var opts []string
	if !strings.Contains(dsn, "_time_format=") {
		opts = append(opts, "_time_format=sqlite")
	}
	if !strings.Contains(dsn, "foreign_keys") {
		opts = append(opts, "_pragma=foreign_keys(1)")
	}
	if len(opts) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(opts, "&")
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
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
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
