package internal

import (
	"fmt"
	"sort"
	"strings"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// SQLStatement is one parameterized statement ready for the store adapter.
type SQLStatement struct {
	SQL  string
	Args []any
}

// QueryBuilder builds parameterized statements from schema metadata. Table
// and column names come solely from the registry, never from caller input,
// so identifier positions cannot be injected through this path.
type QueryBuilder struct {
	registry adminkit.SchemaRegistry
}

// NewQueryBuilder creates a QueryBuilder over the given registry.
func NewQueryBuilder(registry adminkit.SchemaRegistry) *QueryBuilder {
	return &QueryBuilder{registry: registry}
}

// BuildSelect builds a filtered, ordered, paginated select. Filter and order
// fields must name declared store columns; IncludeJoins resolves declared
// foreign keys into left joins fetching the referenced display fields.
func (q *QueryBuilder) BuildSelect(entity *adminkit.EntitySchema, opts *adminkit.PreparedList) (*SQLStatement, error) {
	if opts == nil {
		opts = &adminkit.PreparedList{}
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT t.*")
	joins := q.joinClauses(entity, opts.IncludeJoins, &sb)
	sb.WriteString(" FROM ")
	sb.WriteString(entity.Table)
	sb.WriteString(" t")
	sb.WriteString(joins)

	if len(opts.Filters) > 0 {
		sb.WriteString(" WHERE ")
		for i, filter := range opts.Filters {
			if !entity.HasField(filter.Field) {
				return nil, fmt.Errorf("unknown filter column '%s' for entity '%s'", filter.Field, entity.Key)
			}
			if i > 0 {
				sb.WriteString(" AND ")
			}
			args = append(args, filter.Value)
			fmt.Fprintf(&sb, "t.%s = $%d", filter.Field, len(args))
		}
	}

	if len(opts.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, order := range opts.OrderBy {
			if !entity.HasField(order.Field) {
				return nil, fmt.Errorf("unknown order column '%s' for entity '%s'", order.Field, entity.Key)
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("t.")
			sb.WriteString(order.Field)
			if order.Order == adminkit.SortOrderDesc {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return &SQLStatement{SQL: sb.String(), Args: args}, nil
}

// BuildCount builds a filtered row count over store columns.
func (q *QueryBuilder) BuildCount(entity *adminkit.EntitySchema, filters []adminkit.Filter) (*SQLStatement, error) {
	var sb strings.Builder
	var args []any

	fmt.Fprintf(&sb, "SELECT COUNT(*) FROM %s t", entity.Table)
	for i, filter := range filters {
		if !entity.HasField(filter.Field) {
			return nil, fmt.Errorf("unknown filter column '%s' for entity '%s'", filter.Field, entity.Key)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, filter.Value)
		fmt.Fprintf(&sb, "t.%s = $%d", filter.Field, len(args))
	}

	return &SQLStatement{SQL: sb.String(), Args: args}, nil
}

// BuildSelectByID builds an identifier lookup, optionally with joins.
func (q *QueryBuilder) BuildSelectByID(entity *adminkit.EntitySchema, id any, includeJoins bool) *SQLStatement {
	var sb strings.Builder
	sb.WriteString("SELECT t.*")
	joins := q.joinClauses(entity, includeJoins, &sb)
	fmt.Fprintf(&sb, " FROM %s t%s WHERE t.%s = $1", entity.Table, joins, entity.IDField)
	return &SQLStatement{SQL: sb.String(), Args: []any{id}}
}

// joinClauses appends joined display-field selections to sb and returns the
// matching JOIN fragment. Display columns come back as <field>_display.
func (q *QueryBuilder) joinClauses(entity *adminkit.EntitySchema, include bool, sb *strings.Builder) string {
	if !include {
		return ""
	}
	var joins strings.Builder
	for i, fk := range q.registry.ForeignKeys(entity.Key) {
		if fk.DisplayField == "" {
			continue
		}
		foreign, err := q.registry.EntityMetadata(fk.ForeignTable)
		if err != nil || !foreign.HasField(fk.DisplayField) {
			continue
		}
		alias := fmt.Sprintf("fk%d", i)
		fmt.Fprintf(sb, ", %s.%s AS %s_display", alias, fk.DisplayField, fk.Field)
		fmt.Fprintf(&joins, " LEFT JOIN %s %s ON %s.%s = t.%s",
			foreign.Table, alias, alias, fk.ForeignField, fk.Field)
	}
	return joins.String()
}

// BuildInsert builds an insert over already-cast, already-validated,
// alias-translated data. Column order is deterministic.
func (q *QueryBuilder) BuildInsert(entity *adminkit.EntitySchema, data adminkit.Record) (*SQLStatement, error) {
	columns := make([]string, 0, len(data))
	for column := range data {
		if !entity.HasField(column) {
			return nil, fmt.Errorf("unknown column '%s' for entity '%s'", column, entity.Key)
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("insert into '%s' requires at least one column", entity.Key)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = data[column]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		entity.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return &SQLStatement{SQL: sql, Args: args}, nil
}

// BuildUpdate builds an update over the supplied columns only.
func (q *QueryBuilder) BuildUpdate(entity *adminkit.EntitySchema, id any, data adminkit.Record) (*SQLStatement, error) {
	columns := make([]string, 0, len(data))
	for column := range data {
		if column == entity.IDField {
			continue
		}
		if !entity.HasField(column) {
			return nil, fmt.Errorf("unknown column '%s' for entity '%s'", column, entity.Key)
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("update of '%s' requires at least one column", entity.Key)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		args = append(args, data[column])
		assignments[i] = fmt.Sprintf("%s = $%d", column, len(args))
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING *",
		entity.Table, strings.Join(assignments, ", "), entity.IDField, len(args))
	return &SQLStatement{SQL: sql, Args: args}, nil
}

// BuildDelete builds an identifier delete.
func (q *QueryBuilder) BuildDelete(entity *adminkit.EntitySchema, id any) *SQLStatement {
	return &SQLStatement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = $1", entity.Table, entity.IDField),
		Args: []any{id},
	}
}

// BuildExists builds the uniqueness-lookup query, optionally excluding one
// row id (update semantics) and restricting to a scope.
func (q *QueryBuilder) BuildExists(entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (*SQLStatement, error) {
	if !entity.HasField(field) {
		return nil, fmt.Errorf("unknown column '%s' for entity '%s'", field, entity.Key)
	}

	var sb strings.Builder
	args := []any{value}
	fmt.Fprintf(&sb, "SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1", entity.Table, field)
	if scope != nil && entity.ScopeField != "" {
		args = append(args, scope)
		fmt.Fprintf(&sb, " AND %s = $%d", entity.ScopeField, len(args))
	}
	if excludeID != nil {
		args = append(args, excludeID)
		fmt.Fprintf(&sb, " AND %s <> $%d", entity.IDField, len(args))
	}
	sb.WriteString(")")

	return &SQLStatement{SQL: sb.String(), Args: args}, nil
}
