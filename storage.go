package adminkit

import (
	"context"
)

// Store is the adapter protocol the orchestrator executes against. All data
// crossing this boundary uses store (underscored) column names and
// already-cast values. Connection pooling and per-statement isolation are the
// adapter's concern.
type Store interface {
	// FindByID fetches a single row by its identifier column, or nil when
	// no row matches.
	FindByID(ctx context.Context, entity *EntitySchema, id any) (Record, error)
	// FindAll fetches all rows of an entity.
	FindAll(ctx context.Context, entity *EntitySchema) ([]Record, error)
	// ListWithFilters fetches rows matching the prepared list options.
	ListWithFilters(ctx context.Context, entity *EntitySchema, opts *PreparedList) ([]Record, error)
	// Create inserts one row and returns it as stored (including generated
	// identifier and defaults).
	Create(ctx context.Context, entity *EntitySchema, data Record) (Record, error)
	// UpdateRecord updates the supplied columns of one row and returns the
	// stored result.
	UpdateRecord(ctx context.Context, entity *EntitySchema, id any, data Record) (Record, error)
	// Delete removes one row. Foreign-key violations are classified as
	// FOREIGN_KEY_CONSTRAINT at this boundary.
	Delete(ctx context.Context, entity *EntitySchema, id any) error
	// Count returns the number of rows matching the filters.
	Count(ctx context.Context, entity *EntitySchema, filters []Filter) (int64, error)
	// Exists reports whether a row exists with the given column value,
	// restricted to the scope when the entity is scope-partitioned and
	// optionally excluding one identifier (for update-time uniqueness).
	Exists(ctx context.Context, entity *EntitySchema, field string, value any, scope any, excludeID any) (bool, error)
}

// PreparedList is a ListOptions already translated to store column names,
// ready to execute. Filter fields and order fields are drawn from schema
// metadata only.
type PreparedList struct {
	Filters      []Filter
	OrderBy      []OrderBy
	Limit        int
	Offset       int
	IncludeJoins bool
}
