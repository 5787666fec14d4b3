package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NextSequence atomically increments and returns the named counter in the
// tenant store. The upsert makes first use and increment a single statement,
// so concurrent callers can never observe the same value.
func NextSequence(ctx context.Context, pool *pgxpool.Pool, name string) (int64, error) {
	var seq int64
	err := pool.QueryRow(ctx, `
		INSERT INTO counters (name, seq) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1, updated_at = NOW()
		RETURNING seq`, name).Scan(&seq)
	return seq, err
}
