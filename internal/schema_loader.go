package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// schemaDocument mirrors the YAML layout of the central entity schema file.
type schemaDocument struct {
	Enums    map[string][]string       `yaml:"enums"`
	Entities map[string]entityDocument `yaml:"entities"`
}

type entityDocument struct {
	Table      string          `yaml:"table"`
	IDField    string          `yaml:"id-field"`
	ScopeField string          `yaml:"scope-field"`
	Indexes    []string        `yaml:"indexes"`
	Fields     []fieldDocument `yaml:"fields"`
}

type fieldDocument struct {
	Name       string                       `yaml:"name"`
	Type       string                       `yaml:"type"`
	Required   bool                         `yaml:"required"`
	Unique     bool                         `yaml:"unique"`
	Check      string                       `yaml:"check"`
	RawCheck   string                       `yaml:"raw-check"`
	Alias      string                       `yaml:"alias"`
	ForeignKey *foreignKeyDocument          `yaml:"foreign-key"`
	Validation *adminkit.ValidationMetadata `yaml:"validation"`
}

type foreignKeyDocument struct {
	Table   string `yaml:"table"`
	Field   string `yaml:"field"`
	Display string `yaml:"display"`
}

// LoadSchemaDocument reads and parses the central schema file into entity
// schemas and enum value sets. The result feeds NewSchemaRegistry and is
// never mutated afterwards.
func LoadSchemaDocument(path string) (map[string]*adminkit.EntitySchema, map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	return ParseSchemaDocument(data)
}

// ParseSchemaDocument parses schema YAML bytes. Exposed separately so tests
// and tooling can parse in-memory documents.
func ParseSchemaDocument(data []byte) (map[string]*adminkit.EntitySchema, map[string][]string, error) {
	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, adminkit.NewSchemaInvalidError("schema document is not valid YAML", err)
	}
	if len(doc.Entities) == 0 {
		return nil, nil, adminkit.NewSchemaInvalidError("schema document declares no entities", nil)
	}

	entities := make(map[string]*adminkit.EntitySchema, len(doc.Entities))
	for key, ed := range doc.Entities {
		schema, err := buildEntitySchema(key, ed)
		if err != nil {
			return nil, nil, err
		}
		entities[key] = schema
	}

	if err := lintSchemas(entities, doc.Enums); err != nil {
		return nil, nil, err
	}

	return entities, doc.Enums, nil
}

func buildEntitySchema(key string, ed entityDocument) (*adminkit.EntitySchema, error) {
	table := ed.Table
	if table == "" {
		table = key
	}
	idField := ed.IDField
	if idField == "" {
		idField = "id"
	}

	schema := &adminkit.EntitySchema{
		Key:        key,
		Table:      table,
		IDField:    idField,
		ScopeField: ed.ScopeField,
		Indexes:    ed.Indexes,
		Fields:     make([]adminkit.FieldDef, 0, len(ed.Fields)),
	}

	for _, fd := range ed.Fields {
		if fd.Name == "" {
			return nil, adminkit.NewSchemaInvalidError(
				fmt.Sprintf("entity '%s' declares a field without a name", key), nil)
		}
		fieldType, err := adminkit.ParseFieldType(fd.Type)
		if err != nil {
			return nil, adminkit.NewSchemaInvalidError(
				fmt.Sprintf("entity '%s' field '%s': %v", key, fd.Name, err), err)
		}

		def := adminkit.FieldDef{
			Name: fd.Name,
			Type: fieldType,
			Options: adminkit.FieldOptions{
				Required:   fd.Required,
				Unique:     fd.Unique,
				Check:      fd.Check,
				RawCheck:   fd.RawCheck,
				Alias:      fd.Alias,
				Validation: fd.Validation,
			},
		}
		if fd.ForeignKey != nil {
			foreignField := fd.ForeignKey.Field
			if foreignField == "" {
				foreignField = "id"
			}
			def.Options.ForeignKey = &adminkit.ForeignKey{
				Field:        fd.Name,
				ForeignTable: fd.ForeignKey.Table,
				ForeignField: foreignField,
				DisplayField: fd.ForeignKey.Display,
			}
		}
		schema.Fields = append(schema.Fields, def)
	}

	return schema, nil
}

// lintSchemas verifies structural consistency of the loaded document:
// duplicate field names, dangling enum references, foreign keys pointing at
// unknown entities, and declared scope fields that no field defines.
func lintSchemas(entities map[string]*adminkit.EntitySchema, enums map[string][]string) error {
	tables := make(map[string]bool, len(entities))
	for _, schema := range entities {
		tables[schema.Table] = true
	}

	for key, schema := range entities {
		seen := make(map[string]bool, len(schema.Fields))
		for _, field := range schema.Fields {
			if seen[field.Name] {
				return adminkit.NewSchemaInvalidError(
					fmt.Sprintf("entity '%s' declares field '%s' twice", key, field.Name), nil)
			}
			seen[field.Name] = true

			if field.Type.Kind == adminkit.FieldKindEnum {
				if _, ok := enums[field.Type.EnumRef]; !ok {
					return adminkit.NewSchemaInvalidError(
						fmt.Sprintf("entity '%s' field '%s' references unknown enum '%s'",
							key, field.Name, field.Type.EnumRef), nil)
				}
			}
			if fk := field.Options.ForeignKey; fk != nil {
				if _, ok := entities[fk.ForeignTable]; !ok && !tables[fk.ForeignTable] {
					return adminkit.NewSchemaInvalidError(
						fmt.Sprintf("entity '%s' field '%s' references unknown entity '%s'",
							key, field.Name, fk.ForeignTable), nil)
				}
			}
		}
		if schema.ScopeField != "" && !seen[schema.ScopeField] {
			return adminkit.NewSchemaInvalidError(
				fmt.Sprintf("entity '%s' declares scope field '%s' but does not define it",
					key, schema.ScopeField), nil)
		}
		if !seen[schema.IDField] {
			return adminkit.NewSchemaInvalidError(
				fmt.Sprintf("entity '%s' does not define its id field '%s'", key, schema.IDField), nil)
		}
	}
	return nil
}
