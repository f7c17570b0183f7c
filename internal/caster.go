package internal

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// castFunc normalizes one value's representation for the store. Casting is
// idempotent and never errors: values it cannot interpret pass through
// unchanged, since validation has already ruled on them.
type castFunc func(value any) any

// Caster holds per-entity cast plans, built once from the registry.
type Caster struct {
	plans map[string]map[string]castFunc
}

// NewCaster builds cast plans for every registered entity.
func NewCaster(registry adminkit.SchemaRegistry) *Caster {
	c := &Caster{plans: make(map[string]map[string]castFunc)}
	for _, key := range registry.ListEntities() {
		schema, err := registry.EntityMetadata(key)
		if err != nil {
			continue
		}
		plan := make(map[string]castFunc, len(schema.Fields))
		for _, field := range schema.Fields {
			plan[field.Name] = castForType(field.Type)
		}
		c.plans[key] = plan
	}
	return c
}

// CastForInsert coerces a store-keyed payload for insertion, injecting the
// created_by audit column when the entity declares it and an actor resolved.
func (c *Caster) CastForInsert(entity *adminkit.EntitySchema, data adminkit.Record, actor string) adminkit.Record {
	out := c.apply(entity, data)
	if actor != "" && entity.HasField("created_by") {
		if _, supplied := out["created_by"]; !supplied {
			out["created_by"] = actor
		}
	}
	return out
}

// CastForUpdate coerces a store-keyed payload for update. updated_at is set
// unconditionally when the entity declares it; updated_by when an actor
// resolved.
func (c *Caster) CastForUpdate(entity *adminkit.EntitySchema, data adminkit.Record, actor string) adminkit.Record {
	out := c.apply(entity, data)
	if entity.HasField("updated_at") {
		out["updated_at"] = time.Now().UTC()
	}
	if actor != "" && entity.HasField("updated_by") {
		out["updated_by"] = actor
	}
	return out
}

func (c *Caster) apply(entity *adminkit.EntitySchema, data adminkit.Record) adminkit.Record {
	plan := c.plans[entity.Key]
	out := make(adminkit.Record, len(data))
	for key, value := range data {
		if value == nil {
			out[key] = nil
			continue
		}
		if fn, ok := plan[key]; ok {
			out[key] = fn(value)
		} else {
			out[key] = value
		}
	}
	return out
}

// castForType returns the coercion for a declared type. Exhaustive over the
// closed FieldKind set.
func castForType(fieldType adminkit.FieldType) castFunc {
	switch fieldType.Kind {
	case adminkit.FieldKindText, adminkit.FieldKindVarchar, adminkit.FieldKindEnum, adminkit.FieldKindInet:
		return func(value any) any {
			if s, err := cast.ToStringE(value); err == nil {
				return s
			}
			return value
		}
	case adminkit.FieldKindDecimal:
		return func(value any) any {
			if n, err := cast.ToFloat64E(value); err == nil {
				return n
			}
			return value
		}
	case adminkit.FieldKindInteger:
		return func(value any) any {
			if n, err := cast.ToInt64E(value); err == nil {
				return n
			}
			return value
		}
	case adminkit.FieldKindBoolean:
		return func(value any) any {
			if b, err := cast.ToBoolE(value); err == nil {
				return b
			}
			return value
		}
	case adminkit.FieldKindUUID:
		return func(value any) any {
			switch v := value.(type) {
			case uuid.UUID:
				return v
			case string:
				if id, err := uuid.Parse(v); err == nil {
					return id
				}
			}
			return value
		}
	case adminkit.FieldKindJSONB:
		return func(value any) any {
			switch v := value.(type) {
			case string:
				trimmed := strings.TrimSpace(v)
				var decoded any
				if json.Unmarshal([]byte(trimmed), &decoded) == nil {
					return decoded
				}
			case []byte:
				var decoded any
				if json.Unmarshal(v, &decoded) == nil {
					return decoded
				}
			}
			return value
		}
	case adminkit.FieldKindDate, adminkit.FieldKindTimestamp:
		return func(value any) any {
			switch v := value.(type) {
			case time.Time:
				return v
			case string:
				if ts, ok := toTimeValue(v); ok {
					return ts
				}
			}
			return value
		}
	case adminkit.FieldKindArray:
		var elemCast castFunc = func(value any) any { return value }
		if fieldType.Elem != nil {
			elemCast = castForType(*fieldType.Elem)
		}
		return func(value any) any {
			items, ok := toSlice(value)
			if !ok {
				return value
			}
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = elemCast(item)
			}
			return out
		}
	default:
		return func(value any) any { return value }
	}
}
