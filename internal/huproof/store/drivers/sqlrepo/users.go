package sqlrepo

import (
	"context"

	"github.com/aussiebroadwan/huproof/internal/huproof/domain"
)

func (q *Queries) CreateUser(ctx context.Context, u domain.User) error {
	_, err := q.exec(ctx,
		`INSERT INTO users (id, created_at) VALUES (?, ?)`,
		u.ID, u.CreatedAt.UTC(),
	)
	return err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var (
		u         domain.User
		createdAt nullTime
	)
	err := q.queryRow(ctx, `SELECT id, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &createdAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = createdAt.Time
	return u, nil
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
