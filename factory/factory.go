package factory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	adminkit "github.com/enesj/single-tenant-template-sub005"
	"github.com/enesj/single-tenant-template-sub005/internal"
)

// NewEntityService builds the full engine stack for the given configuration:
// schema registry from the configured document, pgx pool, store adapter,
// validators and cast plans, then the orchestrator. This is the primary entry
// point for external callers.
//
// Usage:
//
//	cfg, err := adminkit.LoadConfig("config.yaml")
//	svc, cleanup, err := factory.NewEntityService(context.Background(), cfg)
//	defer cleanup()
func NewEntityService(ctx context.Context, cfg *adminkit.Config) (adminkit.EntityService, func(), error) {
	if cfg == nil {
		cfg = adminkit.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	registry, err := internal.NewSchemaRegistryFromFile(cfg.Schema.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load schema registry: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	store := internal.NewPostgresStore(pool, internal.NewQueryBuilder(registry))
	svc := NewEntityServiceWithStore(cfg, registry, store)
	return svc, pool.Close, nil
}

// NewEntityServiceWithStore assembles the orchestrator over a caller-provided
// registry and store adapter. Useful for tests and non-PostgreSQL backends.
func NewEntityServiceWithStore(cfg *adminkit.Config, registry adminkit.SchemaRegistry, store adminkit.Store) adminkit.EntityService {
	if cfg == nil {
		cfg = adminkit.DefaultConfig()
	}
	resolver := internal.NewResolver(registry)
	validator := internal.NewValidatorBuilder(registry, resolver)
	caster := internal.NewCaster(registry)
	return internal.NewEntityService(registry, store, validator, caster, cfg)
}
