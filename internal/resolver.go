package internal

import (
	"encoding/json"
	"net/netip"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// TypeCheck is the structural check a declared field type implies: it accepts
// either a value of the target type or a representation decodable to it.
type TypeCheck func(value any) bool

// Resolver maps a field declaration to its base structural check and its
// compiled comparison constraints. Raw (store-only) checks are excluded from
// client-side validation here.
type Resolver struct {
	registry adminkit.SchemaRegistry
}

// NewResolver creates a Resolver over the given registry. The registry
// supplies enum value sets for membership checks.
func NewResolver(registry adminkit.SchemaRegistry) *Resolver {
	return &Resolver{registry: registry}
}

// BaseCheck returns the structural check for a declared field type. The
// switch is exhaustive over the closed FieldKind set.
func (r *Resolver) BaseCheck(fieldType adminkit.FieldType) TypeCheck {
	switch fieldType.Kind {
	case adminkit.FieldKindText:
		return isStringLike
	case adminkit.FieldKindVarchar:
		maxLen := fieldType.Length
		return func(value any) bool {
			s, err := cast.ToStringE(value)
			return err == nil && len([]rune(s)) <= maxLen
		}
	case adminkit.FieldKindDecimal:
		return isNumericLike
	case adminkit.FieldKindInteger:
		return isIntegerLike
	case adminkit.FieldKindBoolean:
		return isBooleanLike
	case adminkit.FieldKindUUID:
		return isUUIDLike
	case adminkit.FieldKindJSONB:
		return isJSONLike
	case adminkit.FieldKindDate, adminkit.FieldKindTimestamp:
		return isTimeLike
	case adminkit.FieldKindInet:
		return isInetLike
	case adminkit.FieldKindEnum:
		values := r.registry.EnumValues(fieldType.EnumRef)
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		return func(value any) bool {
			s, err := cast.ToStringE(value)
			return err == nil && set[s]
		}
	case adminkit.FieldKindArray:
		var elemCheck TypeCheck = func(any) bool { return true }
		if fieldType.Elem != nil {
			elemCheck = r.BaseCheck(*fieldType.Elem)
		}
		return func(value any) bool {
			items, ok := toSlice(value)
			if !ok {
				return false
			}
			for _, item := range items {
				if !elemCheck(item) {
					return false
				}
			}
			return true
		}
	default:
		// Unreachable for schemas that passed ParseFieldType; treated as
		// text so a registry built from forward-compatible data still
		// validates rather than rejecting everything.
		return isStringLike
	}
}

// Constraints compiles a field's check expression into client-side
// constraints. Compilation failures degrade to no constraints with a warning:
// the store remains the authority for expressions the client cannot parse.
func (r *Resolver) Constraints(field *adminkit.FieldDef) []Constraint {
	if field.Options.Check == "" {
		return nil
	}
	constraint, err := CompileCheck(field.Options.Check, field.Name)
	if err != nil {
		zap.S().Warnw("check expression not client-evaluable, deferring to store",
			"field", field.Name, "check", field.Options.Check, "error", err)
		return nil
	}
	return []Constraint{constraint}
}

func isStringLike(value any) bool {
	_, err := cast.ToStringE(value)
	return err == nil
}

func isNumericLike(value any) bool {
	switch v := value.(type) {
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		_, err := cast.ToFloat64E(value)
		return err == nil
	}
}

func isIntegerLike(value any) bool {
	switch v := value.(type) {
	case float64:
		return v == float64(int64(v))
	case float32:
		return v == float32(int64(v))
	case string:
		_, err := strconv.ParseInt(v, 10, 64)
		return err == nil
	default:
		_, err := cast.ToInt64E(value)
		return err == nil
	}
}

func isBooleanLike(value any) bool {
	_, err := cast.ToBoolE(value)
	return err == nil
}

func isUUIDLike(value any) bool {
	switch v := value.(type) {
	case uuid.UUID:
		return true
	case [16]byte:
		return true
	case string:
		_, err := uuid.Parse(v)
		return err == nil
	default:
		return false
	}
}

func isJSONLike(value any) bool {
	switch v := value.(type) {
	case map[string]any, []any:
		return true
	case string:
		return json.Valid([]byte(v))
	case []byte:
		return json.Valid(v)
	default:
		return false
	}
}

func isTimeLike(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return true
	case string:
		_, ok := toTimeValue(v)
		return ok
	default:
		return false
	}
}

func isInetLike(value any) bool {
	switch v := value.(type) {
	case netip.Addr, netip.Prefix:
		return true
	case string:
		if _, err := netip.ParseAddr(v); err == nil {
			return true
		}
		_, err := netip.ParsePrefix(v)
		return err == nil
	default:
		return false
	}
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
