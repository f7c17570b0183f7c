package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/enesj/single-tenant-template-sub005/internal"
)

func runLint(args []string) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	schemaPath := fs.String("schema", "schema/entities.yaml", "path to the entity schema document")
	if err := fs.Parse(args); err != nil {
		return err
	}

	registry, err := internal.NewSchemaRegistryFromFile(*schemaPath)
	if err != nil {
		return err
	}

	entities := registry.ListEntities()
	fmt.Fprintf(os.Stdout, "schema OK: %d entities\n", len(entities))
	for _, key := range entities {
		schema, err := registry.EntityMetadata(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "  %s (table %s, %d fields", key, schema.Table, len(schema.Fields))
		if schema.ScopeField != "" {
			fmt.Fprintf(os.Stdout, ", scoped by %s", schema.ScopeField)
		}
		fmt.Fprintln(os.Stdout, ")")
	}
	return nil
}

func runDescribe(args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	schemaPath := fs.String("schema", "schema/entities.yaml", "path to the entity schema document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("describe requires exactly one entity key")
	}

	registry, err := internal.NewSchemaRegistryFromFile(*schemaPath)
	if err != nil {
		return err
	}
	entity := fs.Arg(0)
	schema, err := registry.EntityMetadata(entity)
	if err != nil {
		return err
	}
	aliases := registry.Aliases(entity)

	fmt.Fprintf(os.Stdout, "%s -> %s (id %s)\n", schema.Key, schema.Table, schema.IDField)
	for _, field := range schema.Fields {
		line := fmt.Sprintf("  %-24s %-16s", field.Name, field.Type.String())
		if field.Options.Required {
			line += " required"
		}
		if field.Options.Unique {
			line += " unique"
		}
		if field.Options.Check != "" {
			line += " check=" + field.Options.Check
		}
		if fk := field.Options.ForeignKey; fk != nil {
			line += fmt.Sprintf(" -> %s.%s", fk.ForeignTable, fk.ForeignField)
		}
		if external := aliases.ToExternal(field.Name); external != field.Name {
			line += fmt.Sprintf(" (as %s)", external)
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
