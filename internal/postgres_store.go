package internal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// pgPool is the slice of pgxpool.Pool the store adapter needs; pgxmock
// satisfies it in tests.
type pgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is the pgx-backed Store adapter. It executes query-builder
// output and classifies constraint violations at this boundary so callers
// can tell "your data was wrong" from "the operation could not complete".
type PostgresStore struct {
	pool    pgPool
	builder *QueryBuilder
}

// NewPostgresStore creates a Store over a pgx pool.
func NewPostgresStore(pool pgPool, builder *QueryBuilder) *PostgresStore {
	return &PostgresStore{pool: pool, builder: builder}
}

func (s *PostgresStore) FindByID(ctx context.Context, entity *adminkit.EntitySchema, id any) (adminkit.Record, error) {
	stmt := s.builder.BuildSelectByID(entity, id, false)
	return s.queryOne(ctx, entity, stmt)
}

func (s *PostgresStore) FindAll(ctx context.Context, entity *adminkit.EntitySchema) ([]adminkit.Record, error) {
	stmt, err := s.builder.BuildSelect(entity, nil)
	if err != nil {
		return nil, adminkit.NewStoreError(entity.Key, err)
	}
	return s.queryMany(ctx, entity, stmt)
}

func (s *PostgresStore) ListWithFilters(ctx context.Context, entity *adminkit.EntitySchema, opts *adminkit.PreparedList) ([]adminkit.Record, error) {
	stmt, err := s.builder.BuildSelect(entity, opts)
	if err != nil {
		return nil, adminkit.NewStoreError(entity.Key, err)
	}
	return s.queryMany(ctx, entity, stmt)
}

func (s *PostgresStore) Create(ctx context.Context, entity *adminkit.EntitySchema, data adminkit.Record) (adminkit.Record, error) {
	stmt, err := s.builder.BuildInsert(entity, data)
	if err != nil {
		return nil, adminkit.NewStoreError(entity.Key, err)
	}
	record, err := s.queryOne(ctx, entity, stmt)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, adminkit.NewStoreError(entity.Key, errors.New("insert returned no row"))
	}
	return record, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, entity *adminkit.EntitySchema, id any, data adminkit.Record) (adminkit.Record, error) {
	stmt, err := s.builder.BuildUpdate(entity, id, data)
	if err != nil {
		return nil, adminkit.NewStoreError(entity.Key, err)
	}
	record, err := s.queryOne(ctx, entity, stmt)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, adminkit.NewItemNotFoundError(entity.Key, id)
	}
	return record, nil
}

func (s *PostgresStore) Delete(ctx context.Context, entity *adminkit.EntitySchema, id any) error {
	stmt := s.builder.BuildDelete(entity, id)
	tag, err := s.pool.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return classifyStoreError(entity.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return adminkit.NewItemNotFoundError(entity.Key, id)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context, entity *adminkit.EntitySchema, filters []adminkit.Filter) (int64, error) {
	stmt, err := s.builder.BuildCount(entity, filters)
	if err != nil {
		return 0, adminkit.NewStoreError(entity.Key, err)
	}
	var count int64
	if err := s.pool.QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&count); err != nil {
		return 0, classifyStoreError(entity.Key, err)
	}
	return count, nil
}

// Exists is the production UniqueLookup: it restricts the conflict check to
// the caller's scope when the entity is scope-partitioned.
func (s *PostgresStore) Exists(ctx context.Context, entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (bool, error) {
	stmt, err := s.builder.BuildExists(entity, field, value, scope, excludeID)
	if err != nil {
		return false, adminkit.NewStoreError(entity.Key, err)
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&exists); err != nil {
		return false, classifyStoreError(entity.Key, err)
	}
	return exists, nil
}

// UniqueLookup adapts Exists to the validator builder's signature.
func (s *PostgresStore) UniqueLookup() UniqueLookup {
	return func(ctx context.Context, entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (bool, error) {
		return s.Exists(ctx, entity, field, value, scope, excludeID)
	}
}

func (s *PostgresStore) queryOne(ctx context.Context, entity *adminkit.EntitySchema, stmt *SQLStatement) (adminkit.Record, error) {
	records, err := s.queryMany(ctx, entity, stmt)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (s *PostgresStore) queryMany(ctx context.Context, entity *adminkit.EntitySchema, stmt *SQLStatement) ([]adminkit.Record, error) {
	zap.S().Debugw("executing statement", "entity", entity.Key, "sql", stmt.SQL)
	rows, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, classifyStoreError(entity.Key, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := make([]adminkit.Record, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyStoreError(entity.Key, err)
		}
		record := make(adminkit.Record, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = normalizeValue(values[i])
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError(entity.Key, err)
	}
	return records, nil
}

// normalizeValue maps pgx wire representations onto the engine's value types.
// uuid columns come back as raw 16-byte arrays; records carry them as
// uuid.UUID so scope comparisons and key translation see canonical strings.
func normalizeValue(value any) any {
	if b, ok := value.([16]byte); ok {
		return uuid.UUID(b)
	}
	return value
}

// classifyStoreError maps PostgreSQL constraint violations onto the engine's
// error taxonomy; everything else stays a generic store error.
func classifyStoreError(entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return adminkit.NewForeignKeyConstraintError(entity, err)
		case "23505":
			return adminkit.NewUniqueConstraintError(entity, err)
		}
	}
	return adminkit.NewStoreError(entity, err)
}
