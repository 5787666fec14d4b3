package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const poolKey contextKey = "tenant_pool"

// WithPool binds a tenant store handle to the context. Set by the tenant
// middleware for authenticated requests, and by services like login that
// resolve the tenant themselves before any identity exists.
func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, poolKey, pool)
}

// PoolFromContext retrieves the tenant store handle from the context.
func PoolFromContext(ctx context.Context) *pgxpool.Pool {
	pool, _ := ctx.Value(poolKey).(*pgxpool.Pool)
	return pool
}
