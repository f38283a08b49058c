package sqlrepo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

func (q *Queries) CreateSessionToken(ctx context.Context, t domain.SessionToken) error {
	_, err := q.exec(ctx,
		`INSERT INTO session_tokens (id, user_id, jti, issued_at, expires_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.JTI, t.IssuedAt.UTC(), t.ExpiresAt.UTC(), mapOptionalTime(t.RevokedAt),
	)
	return err
}

func (q *Queries) GetSessionTokenByJTI(ctx context.Context, jti string) (domain.SessionToken, error) {
	var (
		t         domain.SessionToken
		issuedAt  nullTime
		expiresAt nullTime
		revokedAt nullTime
	)
	err := q.queryRow(ctx,
		`SELECT id, user_id, jti, issued_at, expires_at, revoked_at FROM session_tokens WHERE jti = ?`,
		jti,
	).Scan(&t.ID, &t.UserID, &t.JTI, &issuedAt, &expiresAt, &revokedAt)
	if err != nil {
		return domain.SessionToken{}, mapNotFound(err)
	}
	t.IssuedAt = issuedAt.Time
	t.ExpiresAt = expiresAt.Time
	t.RevokedAt = revokedAt.ptr()
	return t, nil
}

func (q *Queries) RevokeSessionToken(ctx context.Context, jti string, at time.Time) (bool, error) {
	res, err := q.exec(ctx,
		`UPDATE session_tokens SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL`,
		at.UTC(), jti,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *Queries) DeleteExpiredSessionTokens(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM session_tokens WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
