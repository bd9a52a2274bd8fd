// Package store persists finished valuations to Postgres. The engine never
// depends on it; persistence failures are logged by callers and the
// valuation still goes out.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the connection pool from DATABASE_URL and creates the
// schema if it is missing. Safe to call more than once.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		err = ensureSchema(ctx, pool)
	})
	return err
}

func ensureSchema(ctx context.Context, p *pgxpool.Pool) error {
	_, err := p.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS valuations (
			id         UUID PRIMARY KEY,
			ticker     TEXT NOT NULL,
			result     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_valuations_ticker_created
			ON valuations (ticker, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure valuations schema: %w", err)
	}
	return nil
}

// GetPool returns the database connection pool.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
