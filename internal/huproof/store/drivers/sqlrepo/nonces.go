package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
)

const nonceColumns = `id, value, purpose, origin_hash, user_id, created_at, expires_at, consumed_at, reserved_until, reservation`

// usable is the predicate shared by consume and reserve. It binds value,
// purpose, now, now.
const usable = `value = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > ?
	AND (reserved_until IS NULL OR reserved_until <= ?)`

func (q *Queries) CreateNonce(ctx context.Context, n domain.Nonce) error {
	_, err := q.exec(ctx,
		`INSERT INTO nonces (id, value, purpose, origin_hash, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Value, string(n.Purpose), n.OriginHash, mapStringNull(n.UserID), n.CreatedAt.UTC(), n.ExpiresAt.UTC(),
	)
	return err
}

func (q *Queries) GetNonce(ctx context.Context, value string) (domain.Nonce, error) {
	row := q.queryRow(ctx, `SELECT `+nonceColumns+` FROM nonces WHERE value = ?`, value)
	n, err := scanNonce(row)
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	return n, nil
}

func (q *Queries) ConsumeNonce(ctx context.Context, value string, purpose domain.Purpose, now time.Time) (domain.Nonce, error) {
	now = now.UTC()
	row := q.queryRow(ctx,
		`UPDATE nonces SET consumed_at = ?, reserved_until = NULL, reservation = NULL
		WHERE `+usable+`
		RETURNING `+nonceColumns,
		now, value, string(purpose), now, now,
	)
	n, err := scanNonce(row)
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	return n, nil
}

func (q *Queries) ReserveNonce(
	ctx context.Context,
	value string,
	purpose domain.Purpose,
	reservation string,
	until, now time.Time,
) (domain.Nonce, error) {
	now = now.UTC()
	row := q.queryRow(ctx,
		`UPDATE nonces SET reserved_until = ?, reservation = ?
		WHERE `+usable+`
		RETURNING `+nonceColumns,
		until.UTC(), reservation, value, string(purpose), now, now,
	)
	n, err := scanNonce(row)
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	return n, nil
}

func (q *Queries) ConsumeReservedNonce(ctx context.Context, value, reservation string, now time.Time) error {
	res, err := q.exec(ctx,
		`UPDATE nonces SET consumed_at = ?, reserved_until = NULL
		WHERE value = ? AND reservation = ? AND consumed_at IS NULL`,
		now.UTC(), value, reservation,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (q *Queries) ReleaseNonce(ctx context.Context, value, reservation string) error {
	_, err := q.exec(ctx,
		`UPDATE nonces SET reserved_until = NULL, reservation = NULL
		WHERE value = ? AND reservation = ? AND consumed_at IS NULL`,
		value, reservation,
	)
	return err
}

func (q *Queries) DeleteExpiredNonces(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM nonces WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNonce(row *sql.Row) (domain.Nonce, error) {
	var (
		n             domain.Nonce
		purpose       string
		userID        sql.NullString
		reservation   sql.NullString
		createdAt     nullTime
		expiresAt     nullTime
		consumedAt    nullTime
		reservedUntil nullTime
	)
	err := row.Scan(&n.ID, &n.Value, &purpose, &n.OriginHash, &userID,
		&createdAt, &expiresAt, &consumedAt, &reservedUntil, &reservation)
	if err != nil {
		return domain.Nonce{}, err
	}
	n.Purpose = domain.Purpose(purpose)
	n.UserID = mapNullString(userID)
	n.CreatedAt = createdAt.Time
	n.ExpiresAt = expiresAt.Time
	n.ConsumedAt = consumedAt.ptr()
	n.ReservedUntil = reservedUntil.ptr()
	n.Reservation = mapNullString(reservation)
	return n, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
