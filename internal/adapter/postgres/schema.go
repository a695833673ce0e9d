package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	//go:embed sql/schema.sql
	schemaSQL string

	//go:embed sql/seed.sql
	seedSQL string
)

// EnsureSchema creates missing tables and, when seed is set, loads the demo
// data set. Both scripts are idempotent.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool, seed bool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if !seed {
		return nil
	}
	if _, err := db.Exec(ctx, seedSQL); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	return nil
}
