package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
)

const commitmentColumns = `id, user_id, origin_hash, value, tau, vkey_id, active, created_at`

func (q *Queries) CreateCommitment(ctx context.Context, c domain.Commitment) error {
	_, err := q.exec(ctx,
		`INSERT INTO commitments (`+commitmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.OriginHash, c.Value, c.Tau, mapStringNull(c.VKeyID), c.Active, c.CreatedAt.UTC(),
	)
	return err
}

func (q *Queries) GetActiveCommitment(ctx context.Context, userID, originHash string) (domain.Commitment, error) {
	row := q.queryRow(ctx,
		`SELECT `+commitmentColumns+` FROM commitments
		WHERE user_id = ? AND origin_hash = ? AND active = TRUE`,
		userID, originHash,
	)
	c, err := scanCommitment(row)
	if err != nil {
		return domain.Commitment{}, mapNotFound(err)
	}
	return c, nil
}

func (q *Queries) DeactivateCommitment(ctx context.Context, id string) error {
	res, err := q.exec(ctx, `UPDATE commitments SET active = FALSE WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanCommitment(row *sql.Row) (domain.Commitment, error) {
	var (
		c         domain.Commitment
		vkeyID    sql.NullString
		createdAt nullTime
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.OriginHash, &c.Value, &c.Tau, &vkeyID, &c.Active, &createdAt); err != nil {
		return domain.Commitment{}, err
	}
	c.VKeyID = mapNullString(vkeyID)
	c.CreatedAt = createdAt.Time
	return c, nil
}
