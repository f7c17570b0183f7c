package adminkit

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind enumerates the closed set of declarable field types. Every place
// that casts, validates, or builds queries switches exhaustively on this set.
type FieldKind string

const (
	FieldKindText      FieldKind = "text"
	FieldKindVarchar   FieldKind = "varchar"
	FieldKindDecimal   FieldKind = "decimal"
	FieldKindInteger   FieldKind = "integer"
	FieldKindBoolean   FieldKind = "boolean"
	FieldKindUUID      FieldKind = "uuid"
	FieldKindJSONB     FieldKind = "jsonb"
	FieldKindDate      FieldKind = "date"
	FieldKindTimestamp FieldKind = "timestamp"
	FieldKindInet      FieldKind = "inet"
	FieldKindEnum      FieldKind = "enum"
	FieldKindArray     FieldKind = "array"
)

// FieldType is a declared field type together with its parameters,
// e.g. varchar(100), decimal(12,2), enum(expense_status), array(text).
type FieldType struct {
	Kind      FieldKind  `json:"kind"`
	Length    int        `json:"length,omitempty"`    // varchar
	Precision int        `json:"precision,omitempty"` // decimal
	Scale     int        `json:"scale,omitempty"`     // decimal
	EnumRef   string     `json:"enum_ref,omitempty"`  // enum
	Elem      *FieldType `json:"elem,omitempty"`      // array
}

func (t FieldType) String() string {
	switch t.Kind {
	case FieldKindVarchar:
		return fmt.Sprintf("varchar(%d)", t.Length)
	case FieldKindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case FieldKindEnum:
		return fmt.Sprintf("enum(%s)", t.EnumRef)
	case FieldKindArray:
		if t.Elem != nil {
			return fmt.Sprintf("array(%s)", t.Elem.String())
		}
		return "array(text)"
	default:
		return string(t.Kind)
	}
}

// ParseFieldType parses a schema type declaration such as "varchar(100)" or
// "decimal(12,2)" into a FieldType. Unknown kinds are an error: the type set
// is closed.
func ParseFieldType(decl string) (FieldType, error) {
	decl = strings.TrimSpace(decl)
	name := decl
	var arg string
	if i := strings.IndexByte(decl, '('); i >= 0 {
		if !strings.HasSuffix(decl, ")") {
			return FieldType{}, fmt.Errorf("malformed type declaration %q", decl)
		}
		name = decl[:i]
		arg = decl[i+1 : len(decl)-1]
	}

	switch FieldKind(name) {
	case FieldKindText, FieldKindInteger, FieldKindBoolean, FieldKindUUID,
		FieldKindJSONB, FieldKindDate, FieldKindTimestamp, FieldKindInet:
		if arg != "" {
			return FieldType{}, fmt.Errorf("type %q takes no arguments", name)
		}
		return FieldType{Kind: FieldKind(name)}, nil
	case FieldKindVarchar:
		length, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || length <= 0 {
			return FieldType{}, fmt.Errorf("varchar requires a positive length, got %q", arg)
		}
		return FieldType{Kind: FieldKindVarchar, Length: length}, nil
	case FieldKindDecimal:
		parts := strings.Split(arg, ",")
		if len(parts) != 2 {
			return FieldType{}, fmt.Errorf("decimal requires precision and scale, got %q", arg)
		}
		precision, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		scale, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil || precision <= 0 || scale < 0 {
			return FieldType{}, fmt.Errorf("invalid decimal parameters %q", arg)
		}
		return FieldType{Kind: FieldKindDecimal, Precision: precision, Scale: scale}, nil
	case FieldKindEnum:
		ref := strings.TrimSpace(arg)
		if ref == "" {
			return FieldType{}, fmt.Errorf("enum requires a value-set reference")
		}
		return FieldType{Kind: FieldKindEnum, EnumRef: ref}, nil
	case FieldKindArray:
		if strings.TrimSpace(arg) == "" {
			return FieldType{}, fmt.Errorf("array requires an element type")
		}
		elem, err := ParseFieldType(arg)
		if err != nil {
			return FieldType{}, fmt.Errorf("array element: %w", err)
		}
		return FieldType{Kind: FieldKindArray, Elem: &elem}, nil
	default:
		return FieldType{}, fmt.Errorf("unknown field type %q", name)
	}
}

// ValidationKind drives which validator strategy and message set a field gets.
type ValidationKind string

const (
	ValidationKindText     ValidationKind = "text"
	ValidationKindEmail    ValidationKind = "email"
	ValidationKindPhone    ValidationKind = "phone"
	ValidationKindURL      ValidationKind = "url"
	ValidationKindPassword ValidationKind = "password"
	ValidationKindNumber   ValidationKind = "number"
	ValidationKindInteger  ValidationKind = "integer"
	ValidationKindBoolean  ValidationKind = "boolean"
	ValidationKindDate     ValidationKind = "date"
	ValidationKindUUID     ValidationKind = "uuid"
	ValidationKindJSON     ValidationKind = "json"
	ValidationKindEnum     ValidationKind = "enum"
)

// ValidationConstraints are the declarative constraints carried by
// ValidationMetadata. Pointer fields distinguish "absent" from zero.
type ValidationConstraints struct {
	MinLength *int     `json:"min_length,omitempty" yaml:"min-length"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max-length"`
	MinValue  *float64 `json:"min_value,omitempty" yaml:"min-value"`
	MaxValue  *float64 `json:"max_value,omitempty" yaml:"max-value"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern"`
	Values    []string `json:"values,omitempty" yaml:"values"`
}

// ValidationMetadata is the optional rich validation block a field may carry.
// When present it takes precedence over all inference.
type ValidationMetadata struct {
	Kind        ValidationKind        `json:"kind" yaml:"kind"`
	Constraints ValidationConstraints `json:"constraints" yaml:"constraints"`
	Messages    map[string]string     `json:"messages,omitempty" yaml:"messages"`
	UI          map[string]any        `json:"ui,omitempty" yaml:"ui"`
}

// ForeignKey declares a reference to another entity's field, with an optional
// display field fetched on joined reads.
type ForeignKey struct {
	Field        string `json:"field"`
	ForeignTable string `json:"foreign_table"`
	ForeignField string `json:"foreign_field"`
	DisplayField string `json:"display_field,omitempty"`
}

// FieldOptions carries the per-field declaration options.
type FieldOptions struct {
	Required   bool                `json:"required,omitempty"`
	Unique     bool                `json:"unique,omitempty"`
	Check      string              `json:"check,omitempty"`     // prefix check expression, client-evaluated
	RawCheck   string              `json:"raw_check,omitempty"` // opaque store-only expression, never client-evaluated
	ForeignKey *ForeignKey         `json:"foreign_key,omitempty"`
	Alias      string              `json:"alias,omitempty"` // store-column override
	Validation *ValidationMetadata `json:"validation,omitempty"`
}

// FieldDef is one declared field of an entity.
type FieldDef struct {
	Name    string       `json:"name"`
	Type    FieldType    `json:"type"`
	Options FieldOptions `json:"options"`
}

// EntitySchema is the loaded definition of one entity.
type EntitySchema struct {
	Key        string     `json:"key"`
	Table      string     `json:"table"`
	Fields     []FieldDef `json:"fields"`
	Indexes    []string   `json:"indexes,omitempty"`
	IDField    string     `json:"id_field"`
	ScopeField string     `json:"scope_field,omitempty"` // empty when the entity is scope-agnostic
}

// Field returns the field definition with the given store name, or nil.
func (s *EntitySchema) Field(name string) *FieldDef {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// HasField reports whether the entity declares a field with the given store name.
func (s *EntitySchema) HasField(name string) bool {
	return s.Field(name) != nil
}

// AliasMap is the per-entity bidirectional mapping between the external
// naming convention (hyphenated) and the store convention (underscored).
// Built once at registry construction; read-only afterwards.
type AliasMap struct {
	toStore    map[string]string
	toExternal map[string]string
}

// NewAliasMap builds an alias map for the given store-side field names, with
// explicit per-field overrides taking precedence over mechanical conversion.
func NewAliasMap(storeNames []string, overrides map[string]string) *AliasMap {
	m := &AliasMap{
		toStore:    make(map[string]string, len(storeNames)),
		toExternal: make(map[string]string, len(storeNames)),
	}
	for _, store := range storeNames {
		external := strings.ReplaceAll(store, "_", "-")
		if o, ok := overrides[store]; ok && o != "" {
			external = o
		}
		m.toStore[external] = store
		m.toExternal[store] = external
	}
	return m
}

// ToStore translates an external (hyphenated) key to its store column name.
// Unknown keys fall back to mechanical conversion so ad-hoc filter keys still
// translate predictably.
func (m *AliasMap) ToStore(external string) string {
	if s, ok := m.toStore[external]; ok {
		return s
	}
	return strings.ReplaceAll(external, "-", "_")
}

// ToExternal translates a store column name to the external convention.
func (m *AliasMap) ToExternal(store string) string {
	if e, ok := m.toExternal[store]; ok {
		return e
	}
	return strings.ReplaceAll(store, "_", "-")
}

// RecordToStore translates every key of an external record to store naming.
func (m *AliasMap) RecordToStore(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[m.ToStore(k)] = v
	}
	return out
}

// RecordToExternal translates every key of a store record to external naming.
func (m *AliasMap) RecordToExternal(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[m.ToExternal(k)] = v
	}
	return out
}

// SchemaRegistry provides lookup over the loaded entity schema document.
// Implementations are immutable after construction and safe for concurrent
// use. Absence is not an error at this layer except for whole entities.
type SchemaRegistry interface {
	// EntityMetadata returns the schema for an entity key, or an
	// ENTITY_NOT_FOUND error.
	EntityMetadata(entity string) (*EntitySchema, error)
	// FieldMetadata returns a field definition, or nil when either the
	// entity or the field is unknown.
	FieldMetadata(entity, field string) *FieldDef
	// ForeignKeys returns the declared foreign keys of an entity.
	ForeignKeys(entity string) []ForeignKey
	// EntityExists reports whether the entity key resolves.
	EntityExists(entity string) bool
	// EnumValues returns the value set registered under the given reference.
	EnumValues(ref string) []string
	// Aliases returns the entity's alias map, or nil for unknown entities.
	Aliases(entity string) *AliasMap
	// ListEntities returns all registered entity keys, sorted.
	ListEntities() []string
}
