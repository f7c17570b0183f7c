package internal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// entityService is the CRUD orchestrator. Every operation runs the same
// sequence: resolve metadata, validate, cast, translate keys, execute,
// translate the result back, optionally re-fetch with joins. It holds no
// per-request state; all derived schema structures are read-only.
type entityService struct {
	registry  adminkit.SchemaRegistry
	store     adminkit.Store
	validator *ValidatorBuilder
	caster    *Caster
	config    *adminkit.Config
}

// NewEntityService assembles the orchestrator from its collaborators.
func NewEntityService(
	registry adminkit.SchemaRegistry,
	store adminkit.Store,
	validator *ValidatorBuilder,
	caster *Caster,
	config *adminkit.Config,
) adminkit.EntityService {
	return &entityService{
		registry:  registry,
		store:     store,
		validator: validator,
		caster:    caster,
		config:    config,
	}
}

// resolve looks up the entity schema and its alias map; a missing entity is
// fatal at this layer.
func (s *entityService) resolve(entity string) (*adminkit.EntitySchema, *adminkit.AliasMap, error) {
	schema, err := s.registry.EntityMetadata(entity)
	if err != nil {
		return nil, nil, err
	}
	return schema, s.registry.Aliases(entity), nil
}

func (s *entityService) uniqueLookup() UniqueLookup {
	return func(ctx context.Context, entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (bool, error) {
		return s.store.Exists(ctx, entity, field, value, scope, excludeID)
	}
}

// resolveActor resolves the audit actor for a write. When no actor is
// supplied and the entity carries the given audit column, the configured
// fallback takes the first row of the fallback entity. The fallback is
// deliberate and always logged; with the fallback disabled the write
// proceeds without an actor and the store's own constraints decide.
func (s *entityService) resolveActor(ctx context.Context, schema *adminkit.EntitySchema, auditColumn, actor string) (string, error) {
	if actor != "" || !schema.HasField(auditColumn) {
		return actor, nil
	}
	if !s.config.Audit.AllowActorFallback {
		return "", nil
	}

	fallback, err := s.registry.EntityMetadata(s.config.Audit.FallbackEntity)
	if err != nil {
		return "", nil
	}
	rows, err := s.store.ListWithFilters(ctx, fallback, &adminkit.PreparedList{
		OrderBy: []adminkit.OrderBy{{Field: fallback.IDField, Order: adminkit.SortOrderAsc}},
		Limit:   1,
	})
	if err != nil {
		return "", fmt.Errorf("actor fallback lookup failed: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}

	resolved := fmt.Sprintf("%v", rows[0][fallback.IDField])
	zap.S().Warnw("no actor supplied, falling back to first row of fallback entity",
		"entity", schema.Key, "fallbackEntity", fallback.Key, "actor", resolved)
	return resolved, nil
}

// scopeMatches compares a row's scope value against the caller's scope.
// Ownership is a value comparison, not a query filter, so identifier lookups
// stay correct for entities without a scope field.
func scopeMatches(schema *adminkit.EntitySchema, record adminkit.Record, scope any) bool {
	if schema.ScopeField == "" || scope == nil {
		return true
	}
	stored, ok := record[schema.ScopeField]
	if !ok || stored == nil {
		return false
	}
	return fmt.Sprintf("%v", stored) == fmt.Sprintf("%v", scope)
}

// translateErrors maps a store-keyed field-error map to the external naming
// convention.
func translateErrors(aliases *adminkit.AliasMap, fieldErrors map[string]string) map[string]string {
	out := make(map[string]string, len(fieldErrors))
	for field, msg := range fieldErrors {
		out[aliases.ToExternal(field)] = msg
	}
	return out
}

// fetchWithJoins re-reads one row with foreign-key display fields resolved.
func (s *entityService) fetchWithJoins(ctx context.Context, schema *adminkit.EntitySchema, id any) (adminkit.Record, error) {
	rows, err := s.store.ListWithFilters(ctx, schema, &adminkit.PreparedList{
		Filters:      []adminkit.Filter{{Field: schema.IDField, Value: id}},
		IncludeJoins: true,
		Limit:        1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *entityService) ValidateEntity(ctx context.Context, scope any, entity string, data adminkit.Record) (*adminkit.ValidationResult, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	storeData := aliases.RecordToStore(data)
	result, err := s.validator.ValidateEntity(ctx, schema, storeData, scope, nil, false, s.uniqueLookup())
	if err != nil {
		return nil, adminkit.NewStoreError(entity, err)
	}
	if !result.Valid {
		result.Errors = translateErrors(aliases, result.Errors)
	}
	return result, nil
}
