package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"creditflow/db/migrations"
)

// PreparePool applies the embedded schema migrations to the DSN and hands
// back a pool connected to it.
func PreparePool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if err := migrations.Up(ctx, dsn); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pool: %w", err)
	}
	return pool, nil
}
