package adminkit

import (
	"context"
)

// EntityService is the uniform CRUD protocol every entity in the schema
// gains without per-entity code. All payloads and results use the external
// (hyphenated) naming convention; typed failures carry the taxonomy in
// errors.go. The service holds no per-request state and is safe for
// concurrent use; callers wrap calls in their own deadlines.
//
// scope is the optional partitioning key. It is only applied to entities
// whose schema declares a scope field; passing it for scope-agnostic
// entities is a no-op.
type EntityService interface {
	// GetItems lists rows, optionally scope-filtered, with each row's keys
	// translated to the caller convention.
	GetItems(ctx context.Context, scope any, entity string, opts *ListOptions) ([]Record, error)

	// CountItems returns the total number of rows matching the filters,
	// scope included, independent of pagination. Pairs with GetItems so
	// consumers can page.
	CountItems(ctx context.Context, scope any, entity string, filters []Filter) (int64, error)

	// GetItem fetches one row by identifier. Returns nil (not an error)
	// when the row exists but belongs to a different scope.
	GetItem(ctx context.Context, scope any, entity string, id any, opts *ItemOptions) (Record, error)

	// CreateItem validates, casts and inserts one row, injecting the scope
	// field and audit columns where the entity declares them.
	CreateItem(ctx context.Context, scope any, entity string, data Record, opts *ItemOptions) (Record, error)

	// UpdateItem updates only the supplied fields of an existing, visible
	// row; fails with ITEM_NOT_FOUND otherwise.
	UpdateItem(ctx context.Context, scope any, entity string, id any, data Record, opts *ItemOptions) (Record, error)

	// DeleteItem removes an existing, visible row. Referential violations
	// surface as FOREIGN_KEY_CONSTRAINT.
	DeleteItem(ctx context.Context, scope any, entity string, id any, opts *ItemOptions) error

	// ValidateEntity runs all field validators over the payload and collects
	// every error; identity and audit timestamp fields are skipped.
	ValidateEntity(ctx context.Context, scope any, entity string, data Record) (*ValidationResult, error)

	// BatchUpdateItems applies UpdateItem per item. The default policy
	// aborts on the first failure; BatchOptions.ContinueOnError accumulates
	// per-item errors instead and always completes.
	BatchUpdateItems(ctx context.Context, scope any, entity string, items []BatchUpdateItem, opts *BatchOptions) (*BatchUpdateResult, error)

	// BatchDeleteItems applies DeleteItem per identifier; missing rows are
	// reported in NotFoundIDs rather than raised.
	BatchDeleteItems(ctx context.Context, scope any, entity string, ids []any, opts *BatchOptions) (*BatchDeleteResult, error)
}
