package database

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement must be idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movie_list_histories (
		id         BIGSERIAL PRIMARY KEY,
		year       INTEGER      NOT NULL,
		title      VARCHAR(300) NOT NULL,
		studios    VARCHAR(200),
		producers  VARCHAR(300),
		winner     VARCHAR(10),
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ix_movie_list_histories_year ON movie_list_histories (year)`,
}

// Migrate creates the tables the service needs
func (db *DB) Migrate(ctx context.Context) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
