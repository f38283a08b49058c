package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped Store
// can hand out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Commitments() Commitments
	Nonces() Nonces
	SessionTokens() SessionTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the caller).
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	CountUsers(ctx context.Context) (int64, error)
}

type Commitments interface {
	// CreateCommitment inserts c. It never touches other rows; a second
	// active row for the same (user, origin) fails with ErrAlreadyExists.
	CreateCommitment(ctx context.Context, c domain.Commitment) error

	// GetActiveCommitment returns the active commitment for a user on an origin.
	GetActiveCommitment(ctx context.Context, userID, originHash string) (domain.Commitment, error)

	// DeactivateCommitment clears the active flag. ErrNotFound if no such row.
	DeactivateCommitment(ctx context.Context, id string) error
}

// Nonces is the nonce ledger. Every state change is a single conditional
// UPDATE so concurrent callers race on the row, never on a prior read.
type Nonces interface {
	CreateNonce(ctx context.Context, n domain.Nonce) error

	// GetNonce is a plain read used to classify failed consumes. It must
	// never gate a state change.
	GetNonce(ctx context.Context, value string) (domain.Nonce, error)

	// ConsumeNonce sets consumed_at=now if the nonce is unconsumed,
	// unexpired, of the given purpose and not held by a live reservation.
	// ErrNotFound when no row qualified.
	ConsumeNonce(ctx context.Context, value string, purpose domain.Purpose, now time.Time) (domain.Nonce, error)

	// ReserveNonce takes a temporary hold on a usable nonce until `until`.
	// A lapsed hold can be taken over. ErrNotFound when no row qualified.
	ReserveNonce(ctx context.Context, value string, purpose domain.Purpose, reservation string, until, now time.Time) (domain.Nonce, error)

	// ConsumeReservedNonce consumes a nonce still held by reservation.
	// ErrNotFound when the hold was lost or the nonce is already consumed.
	ConsumeReservedNonce(ctx context.Context, value, reservation string, now time.Time) error

	// ReleaseNonce drops the hold if reservation still owns it.
	ReleaseNonce(ctx context.Context, value, reservation string) error

	// DeleteExpiredNonces removes nonces that expired before `before`.
	DeleteExpiredNonces(ctx context.Context, before time.Time) (int64, error)
}

type SessionTokens interface {
	CreateSessionToken(ctx context.Context, t domain.SessionToken) error

	GetSessionTokenByJTI(ctx context.Context, jti string) (domain.SessionToken, error)

	// RevokeSessionToken sets revoked_at once. It reports whether this call
	// did the revoking; revoking twice is not an error.
	RevokeSessionToken(ctx context.Context, jti string, at time.Time) (bool, error)

	// DeleteExpiredSessionTokens removes tokens that expired before `before`.
	DeleteExpiredSessionTokens(ctx context.Context, before time.Time) (int64, error)
}
