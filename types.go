package adminkit

// Record is a single row keyed by field name. Which naming convention the
// keys follow depends on which side of the alias translation the record sits:
// the orchestrator accepts and returns external (hyphenated) keys, the store
// adapter works in store (underscored) keys.
type Record map[string]any

// Filter is an exact-match condition over one field.
type Filter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// SortOrder defines sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// OrderBy names a field and direction for result ordering.
type OrderBy struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order,omitempty"`
}

// ListOptions controls GetItems: exact-match filters (external keys),
// ordering, pagination and join resolution.
type ListOptions struct {
	Filters      []Filter  `json:"filters,omitempty"`
	OrderBy      []OrderBy `json:"order_by,omitempty"`
	Limit        int       `json:"limit,omitempty"`
	Offset       int       `json:"offset,omitempty"`
	IncludeJoins bool      `json:"include_joins,omitempty"`
}

// ItemOptions controls single-item operations.
type ItemOptions struct {
	// IncludeJoins re-fetches the written or read row with foreign-key
	// display fields resolved.
	IncludeJoins bool `json:"include_joins,omitempty"`
	// Actor identifies who performed the write, for audit columns. When
	// empty and the entity requires an actor, the configured fallback
	// strategy applies.
	Actor string `json:"actor,omitempty"`
}

// BatchOptions controls batch operations.
type BatchOptions struct {
	ItemOptions
	// ContinueOnError keeps processing remaining items after a failure and
	// accumulates per-item errors. The default aborts on the first failure.
	ContinueOnError bool `json:"continue_on_error,omitempty"`
}

// BatchItemError reports one failed item of a batch operation.
type BatchItemError struct {
	ID    any    `json:"id"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// BatchUpdateResult reports the outcome of BatchUpdateItems.
type BatchUpdateResult struct {
	Updated int              `json:"updated"`
	Results []Record         `json:"results"`
	Errors  []BatchItemError `json:"errors,omitempty"`
}

// BatchDeleteResult reports the outcome of BatchDeleteItems.
type BatchDeleteResult struct {
	Deleted     int              `json:"deleted"`
	NotFoundIDs []any            `json:"not_found_ids,omitempty"`
	Errors      []BatchItemError `json:"errors,omitempty"`
}

// BatchUpdateItem pairs an item identifier with its field updates
// (external keys).
type BatchUpdateItem struct {
	ID   any    `json:"id"`
	Data Record `json:"data"`
}

// ValidationResult is the outcome of whole-entity validation: all field
// errors are collected, nothing short-circuits across fields.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}
