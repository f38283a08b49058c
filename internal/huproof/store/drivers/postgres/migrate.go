package postgres

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/huproof/internal/huproof/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// ApplyMigrations runs the embedded goose migrations.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(context.Background(), s.db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
