package db

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/platform/apperr"
)

var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateTenantID rejects empty tenant identifiers, the sentinel strings a
// broken upstream serializer can produce, and anything outside the safe
// identifier alphabet.
func ValidateTenantID(tenantID string) error {
	trimmed := strings.TrimSpace(tenantID)
	if trimmed == "" || trimmed == "undefined" || trimmed == "null" {
		return apperr.E(apperr.KindInvalidTenant, "Invalid tenant identifier")
	}
	if !tenantIDPattern.MatchString(trimmed) {
		return apperr.E(apperr.KindInvalidTenant, "Invalid tenant identifier")
	}
	return nil
}

// OpenFunc opens a ready-to-use pool bound to the given tenant schema,
// creating the schema and its tables on first use.
type OpenFunc func(ctx context.Context, schema string) (*pgxpool.Pool, error)

type routerEntry struct {
	done chan struct{}
	pool *pgxpool.Pool
	err  error
}

// Router maps a tenant identifier to a lazily-created, cached, long-lived
// tenant store handle. It is the only piece of process-wide mutable state;
// construct it once in main and tear it down with CloseAll on shutdown.
//
// The registry never evicts: tenants are long-lived and the pool count is
// bounded by the number of onboarded hospitals.
type Router struct {
	mu      sync.Mutex
	entries map[string]*routerEntry

	open   OpenFunc
	prefix string
	logger zerolog.Logger
}

// NewRouter builds a Router with the given schema prefix and open function.
// Tests substitute open with a fake; production wiring uses NewTenantOpener.
func NewRouter(prefix string, open OpenFunc, logger zerolog.Logger) *Router {
	return &Router{
		entries: make(map[string]*routerEntry),
		open:    open,
		prefix:  prefix,
		logger:  logger,
	}
}

// SchemaFor derives the deterministic per-tenant schema name.
func (r *Router) SchemaFor(tenantID string) string {
	return r.prefix + strings.ReplaceAll(strings.TrimSpace(tenantID), "-", "_")
}

// Resolve returns the tenant's store handle, opening it on first use.
// Concurrent calls for the same new tenant share a single open; duplicate
// handles would split one tenant's writes across two pools.
func (r *Router) Resolve(ctx context.Context, tenantID string) (*pgxpool.Pool, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	tenantID = strings.TrimSpace(tenantID)

	r.mu.Lock()
	entry, ok := r.entries[tenantID]
	if ok {
		r.mu.Unlock()
		select {
		case <-entry.done:
			return entry.pool, entry.err
		case <-ctx.Done():
			return nil, apperr.Wrap(apperr.KindInternal, "tenant store open cancelled", ctx.Err())
		}
	}

	entry = &routerEntry{done: make(chan struct{})}
	r.entries[tenantID] = entry
	r.mu.Unlock()

	schema := r.SchemaFor(tenantID)
	r.logger.Info().Str("tenant_id", tenantID).Str("schema", schema).Msg("opening tenant store")

	entry.pool, entry.err = r.open(ctx, schema)
	if entry.err != nil {
		entry.err = apperr.Wrap(apperr.KindInternal, "failed to open tenant store", entry.err)
		r.mu.Lock()
		delete(r.entries, tenantID)
		r.mu.Unlock()
	}
	close(entry.done)

	return entry.pool, entry.err
}

// Len reports the number of open tenant handles.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CloseAll closes every open tenant handle and clears the registry. Called
// once during orderly shutdown.
func (r *Router) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*routerEntry)
	r.mu.Unlock()

	for tenantID, entry := range entries {
		// An open still in flight finishes against a cleared registry;
		// wait for it so its pool does not leak past shutdown.
		<-entry.done
		if entry.pool != nil {
			entry.pool.Close()
			r.logger.Info().Str("tenant_id", tenantID).Msg("closed tenant store")
		}
	}
}

// NewTenantOpener returns the production OpenFunc: one pool per tenant over
// the master database server, search_path pinned to the tenant schema, with
// schema and tables created idempotently before the pool is handed out.
func NewTenantOpener(databaseURL string, maxConns, minConns int32) OpenFunc {
	return func(ctx context.Context, schema string) (*pgxpool.Pool, error) {
		cfg, err := pgxpool.ParseConfig(databaseURL)
		if err != nil {
			return nil, err
		}
		cfg.MaxConns = maxConns
		cfg.MinConns = minConns
		cfg.ConnConfig.RuntimeParams["search_path"] = schema

		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}

		if err := EnsureTenantSchema(ctx, pool, schema); err != nil {
			pool.Close()
			return nil, err
		}

		return pool, nil
	}
}
