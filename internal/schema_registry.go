package internal

import (
	"sort"

	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// schemaRegistry is the in-memory SchemaRegistry backed by the central schema
// document. All derived structures (alias maps, enum sets) are built here,
// once; lookups afterwards are pure and lock-free.
type schemaRegistry struct {
	entities map[string]*adminkit.EntitySchema
	enums    map[string][]string
	aliases  map[string]*adminkit.AliasMap
	keys     []string
}

// NewSchemaRegistry builds a registry from a loaded schema document.
func NewSchemaRegistry(entities map[string]*adminkit.EntitySchema, enums map[string][]string) adminkit.SchemaRegistry {
	r := &schemaRegistry{
		entities: entities,
		enums:    enums,
		aliases:  make(map[string]*adminkit.AliasMap, len(entities)),
		keys:     make([]string, 0, len(entities)),
	}
	for key, schema := range entities {
		names := make([]string, 0, len(schema.Fields))
		overrides := make(map[string]string)
		for _, field := range schema.Fields {
			names = append(names, field.Name)
			if field.Options.Alias != "" {
				overrides[field.Name] = field.Options.Alias
			}
		}
		r.aliases[key] = adminkit.NewAliasMap(names, overrides)
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	zap.S().Debugw("schema registry built", "entities", len(r.keys), "enums", len(enums))
	return r
}

// NewSchemaRegistryFromFile loads the schema document at path and builds a
// registry from it.
func NewSchemaRegistryFromFile(path string) (adminkit.SchemaRegistry, error) {
	entities, enums, err := LoadSchemaDocument(path)
	if err != nil {
		return nil, err
	}
	return NewSchemaRegistry(entities, enums), nil
}

func (r *schemaRegistry) EntityMetadata(entity string) (*adminkit.EntitySchema, error) {
	schema, ok := r.entities[entity]
	if !ok {
		return nil, adminkit.NewEntityNotFoundError(entity)
	}
	return schema, nil
}

func (r *schemaRegistry) FieldMetadata(entity, field string) *adminkit.FieldDef {
	schema, ok := r.entities[entity]
	if !ok {
		return nil
	}
	return schema.Field(field)
}

func (r *schemaRegistry) ForeignKeys(entity string) []adminkit.ForeignKey {
	schema, ok := r.entities[entity]
	if !ok {
		return nil
	}
	var fks []adminkit.ForeignKey
	for _, field := range schema.Fields {
		if field.Options.ForeignKey != nil {
			fks = append(fks, *field.Options.ForeignKey)
		}
	}
	return fks
}

func (r *schemaRegistry) EntityExists(entity string) bool {
	_, ok := r.entities[entity]
	return ok
}

func (r *schemaRegistry) EnumValues(ref string) []string {
	return r.enums[ref]
}

func (r *schemaRegistry) Aliases(entity string) *adminkit.AliasMap {
	return r.aliases[entity]
}

func (r *schemaRegistry) ListEntities() []string {
	return r.keys
}
