package internal

import (
	"context"

	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

func (s *entityService) GetItems(ctx context.Context, scope any, entity string, opts *adminkit.ListOptions) ([]adminkit.Record, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &adminkit.ListOptions{}
	}

	prepared := &adminkit.PreparedList{
		IncludeJoins: opts.IncludeJoins,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	}
	if prepared.Limit <= 0 {
		prepared.Limit = s.config.Query.DefaultPageSize
	}
	if prepared.Limit > s.config.Query.MaxPageSize {
		prepared.Limit = s.config.Query.MaxPageSize
	}

	for _, filter := range opts.Filters {
		prepared.Filters = append(prepared.Filters, adminkit.Filter{
			Field: aliases.ToStore(filter.Field),
			Value: filter.Value,
		})
	}
	// The scope filter only applies to entities that declare a scope field.
	if schema.ScopeField != "" && scope != nil {
		prepared.Filters = append(prepared.Filters, adminkit.Filter{
			Field: schema.ScopeField,
			Value: scope,
		})
	}
	for _, order := range opts.OrderBy {
		prepared.OrderBy = append(prepared.OrderBy, adminkit.OrderBy{
			Field: aliases.ToStore(order.Field),
			Order: order.Order,
		})
	}

	rows, err := s.store.ListWithFilters(ctx, schema, prepared)
	if err != nil {
		return nil, err
	}

	records := make([]adminkit.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, aliases.RecordToExternal(row))
	}
	return records, nil
}

func (s *entityService) CountItems(ctx context.Context, scope any, entity string, filters []adminkit.Filter) (int64, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return 0, err
	}

	translated := make([]adminkit.Filter, 0, len(filters)+1)
	for _, filter := range filters {
		translated = append(translated, adminkit.Filter{
			Field: aliases.ToStore(filter.Field),
			Value: filter.Value,
		})
	}
	if schema.ScopeField != "" && scope != nil {
		translated = append(translated, adminkit.Filter{
			Field: schema.ScopeField,
			Value: scope,
		})
	}

	return s.store.Count(ctx, schema, translated)
}

func (s *entityService) GetItem(ctx context.Context, scope any, entity string, id any, opts *adminkit.ItemOptions) (adminkit.Record, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &adminkit.ItemOptions{}
	}

	var row adminkit.Record
	if opts.IncludeJoins {
		row, err = s.fetchWithJoins(ctx, schema, id)
	} else {
		row, err = s.store.FindByID(ctx, schema, id)
	}
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	// Found but outside the caller's scope reads as absent, not as an error.
	if !scopeMatches(schema, row, scope) {
		return nil, nil
	}
	return aliases.RecordToExternal(row), nil
}

func (s *entityService) CreateItem(ctx context.Context, scope any, entity string, data adminkit.Record, opts *adminkit.ItemOptions) (adminkit.Record, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &adminkit.ItemOptions{}
	}

	storeData := aliases.RecordToStore(data)
	if schema.ScopeField != "" && scope != nil {
		storeData[schema.ScopeField] = scope
	}

	actor, err := s.resolveActor(ctx, schema, "created_by", opts.Actor)
	if err != nil {
		return nil, adminkit.NewStoreError(entity, err)
	}

	result, err := s.validator.ValidateEntity(ctx, schema, storeData, scope, nil, false, s.uniqueLookup())
	if err != nil {
		return nil, adminkit.NewStoreError(entity, err)
	}
	if !result.Valid {
		return nil, adminkit.NewValidationFailedError(entity, translateErrors(aliases, result.Errors))
	}

	cast := s.caster.CastForInsert(schema, storeData, actor)
	created, err := s.store.Create(ctx, schema, cast)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("item created", "entity", entity, "id", created[schema.IDField])

	if opts.IncludeJoins {
		if joined, err := s.fetchWithJoins(ctx, schema, created[schema.IDField]); err == nil && joined != nil {
			created = joined
		}
	}
	return aliases.RecordToExternal(created), nil
}

func (s *entityService) UpdateItem(ctx context.Context, scope any, entity string, id any, data adminkit.Record, opts *adminkit.ItemOptions) (adminkit.Record, error) {
	schema, aliases, err := s.resolve(entity)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &adminkit.ItemOptions{}
	}

	// The item must already exist and be visible to the caller.
	existing, err := s.GetItem(ctx, scope, entity, id, nil)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, adminkit.NewItemNotFoundError(entity, id)
	}

	storeData := aliases.RecordToStore(data)
	delete(storeData, schema.IDField)

	actor, err := s.resolveActor(ctx, schema, "updated_by", opts.Actor)
	if err != nil {
		return nil, adminkit.NewStoreError(entity, err)
	}

	// Only supplied fields are validated and written.
	result, err := s.validator.ValidateEntity(ctx, schema, storeData, scope, id, true, s.uniqueLookup())
	if err != nil {
		return nil, adminkit.NewStoreError(entity, err)
	}
	if !result.Valid {
		return nil, adminkit.NewValidationFailedError(entity, translateErrors(aliases, result.Errors))
	}

	cast := s.caster.CastForUpdate(schema, storeData, actor)
	updated, err := s.store.UpdateRecord(ctx, schema, id, cast)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("item updated", "entity", entity, "id", id)

	if opts.IncludeJoins {
		if joined, err := s.fetchWithJoins(ctx, schema, id); err == nil && joined != nil {
			updated = joined
		}
	}
	return aliases.RecordToExternal(updated), nil
}

func (s *entityService) DeleteItem(ctx context.Context, scope any, entity string, id any, opts *adminkit.ItemOptions) error {
	schema, _, err := s.resolve(entity)
	if err != nil {
		return err
	}

	existing, err := s.GetItem(ctx, scope, entity, id, nil)
	if err != nil {
		return err
	}
	if existing == nil {
		return adminkit.NewItemNotFoundError(entity, id)
	}

	// Foreign-key violations are classified by the store adapter and
	// surface as FOREIGN_KEY_CONSTRAINT rather than a generic store error.
	if err := s.store.Delete(ctx, schema, id); err != nil {
		return err
	}
	zap.S().Debugw("item deleted", "entity", entity, "id", id)
	return nil
}
