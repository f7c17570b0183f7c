package adminkit

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeReference  ErrorType = "reference"
	ErrorTypeStore      ErrorType = "store"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes used across the engine.
const (
	ErrCodeEntityNotFound       = "ENTITY_NOT_FOUND"
	ErrCodeItemNotFound         = "ITEM_NOT_FOUND"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeForeignKeyConstraint = "FOREIGN_KEY_CONSTRAINT"
	ErrCodeUniqueConstraint     = "UNIQUE_CONSTRAINT"
	ErrCodeStoreError           = "STORE_ERROR"
	ErrCodeEmptyBatch           = "EMPTY_BATCH"
	ErrCodeSchemaInvalid        = "SCHEMA_INVALID"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// EngineError is the unified error type crossing the orchestrator boundary.
// Validation failures carry the per-field error map; store failures carry the
// classified code plus the underlying cause.
type EngineError struct {
	Type    ErrorType         `json:"type"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Entity  string            `json:"entity,omitempty"`
	Field   string            `json:"field,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
	Cause   error             `json:"-"`
}

func (e *EngineError) Error() string {
	switch {
	case e.Entity != "" && e.Field != "":
		return fmt.Sprintf("[%s:%s] %s.%s: %s", e.Type, e.Code, e.Entity, e.Field, e.Message)
	case e.Entity != "":
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Entity, e.Message)
	case e.Field != "":
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	default:
		return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	}
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *EngineError) WithCause(cause error) *EngineError {
	e.Cause = cause
	return e
}

// WithEntity attaches entity context.
func (e *EngineError) WithEntity(entity string) *EngineError {
	e.Entity = entity
	return e
}

// WithField attaches field context.
func (e *EngineError) WithField(field string) *EngineError {
	e.Field = field
	return e
}

// WithDetail attaches a single detail value.
func (e *EngineError) WithDetail(key string, value any) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// NewEngineError creates a new EngineError.
func NewEngineError(errorType ErrorType, code, message string) *EngineError {
	return &EngineError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewEntityNotFoundError reports an entity key that does not resolve in the
// schema registry.
func NewEntityNotFoundError(entity string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeEntityNotFound,
		Message: fmt.Sprintf("entity '%s' not found in schema", entity),
		Entity:  entity,
	}
}

// NewItemNotFoundError reports a row that does not exist or is not visible to
// the caller's scope.
func NewItemNotFoundError(entity string, id any) *EngineError {
	return &EngineError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeItemNotFound,
		Message: fmt.Sprintf("item '%v' not found", id),
		Entity:  entity,
		Details: map[string]any{"id": id},
	}
}

// NewValidationFailedError wraps a collected field-error map.
func NewValidationFailedError(entity string, fieldErrors map[string]string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for %d field(s)", len(fieldErrors)),
		Entity:  entity,
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError reports a single-field validation failure.
func NewFieldValidationError(entity, field, message string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeValidationFailed,
		Message: message,
		Entity:  entity,
		Field:   field,
		Errors:  map[string]string{field: message},
	}
}

// NewForeignKeyConstraintError reports a store-level referential integrity
// violation, classified at the adapter boundary.
func NewForeignKeyConstraintError(entity string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeReference,
		Code:    ErrCodeForeignKeyConstraint,
		Message: "operation violates a foreign key constraint",
		Entity:  entity,
		Cause:   cause,
	}
}

// NewUniqueConstraintError reports a store-level unique constraint violation.
func NewUniqueConstraintError(entity string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeUniqueConstraint,
		Message: "operation violates a unique constraint",
		Entity:  entity,
		Cause:   cause,
	}
}

// NewStoreError wraps any other store failure.
func NewStoreError(entity string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeStore,
		Code:    ErrCodeStoreError,
		Message: "store operation failed",
		Entity:  entity,
		Cause:   cause,
	}
}

// NewEmptyBatchError reports an empty input list to a batch operation. An
// empty batch is a caller error, not a silent no-op.
func NewEmptyBatchError(entity string) *EngineError {
	return &EngineError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeEmptyBatch,
		Message: "batch operation requires at least one item",
		Entity:  entity,
	}
}

// NewSchemaInvalidError reports a structurally invalid schema document.
func NewSchemaInvalidError(message string, cause error) *EngineError {
	return &EngineError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeSchemaInvalid,
		Message: message,
		Cause:   cause,
	}
}

// AsEngineError unwraps err to an *EngineError if there is one in the chain.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsEntityNotFound checks for an ENTITY_NOT_FOUND error.
func IsEntityNotFound(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Code == ErrCodeEntityNotFound
}

// IsItemNotFound checks for an ITEM_NOT_FOUND error.
func IsItemNotFound(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Code == ErrCodeItemNotFound
}

// IsValidationFailed checks for any validation-class error.
func IsValidationFailed(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Type == ErrorTypeValidation
}

// IsForeignKeyConstraint checks for a FOREIGN_KEY_CONSTRAINT error.
func IsForeignKeyConstraint(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Code == ErrCodeForeignKeyConstraint
}

// IsStoreError checks for a generic store failure.
func IsStoreError(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Type == ErrorTypeStore
}
