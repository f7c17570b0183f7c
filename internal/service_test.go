package internal

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminkit "github.com/enesj/single-tenant-template-sub005"
)

// fakeStore is an in-memory Store with just enough semantics for the
// orchestrator: exact-match filtering, scope-aware uniqueness, and injectable
// per-id failures.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string][]adminkit.Record

	// lastList captures the most recent prepared list per entity so tests
	// can assert on what the orchestrator sent down.
	lastList map[string]*adminkit.PreparedList

	// joinDisplay is merged into rows returned with IncludeJoins, standing
	// in for the SQL join the real adapter performs.
	joinDisplay map[string]adminkit.Record

	// failFor makes Delete and UpdateRecord fail for specific ids.
	failFor map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:        make(map[string][]adminkit.Record),
		lastList:    make(map[string]*adminkit.PreparedList),
		joinDisplay: make(map[string]adminkit.Record),
		failFor:     make(map[string]error),
	}
}

func sameValue(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func cloneRecord(r adminkit.Record) adminkit.Record {
	out := make(adminkit.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (f *fakeStore) FindByID(_ context.Context, entity *adminkit.EntitySchema, id any) (adminkit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows[entity.Key] {
		if sameValue(row[entity.IDField], id) {
			return cloneRecord(row), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindAll(_ context.Context, entity *adminkit.EntitySchema) ([]adminkit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]adminkit.Record, 0, len(f.rows[entity.Key]))
	for _, row := range f.rows[entity.Key] {
		out = append(out, cloneRecord(row))
	}
	return out, nil
}

func (f *fakeStore) ListWithFilters(_ context.Context, entity *adminkit.EntitySchema, opts *adminkit.PreparedList) ([]adminkit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList[entity.Key] = opts

	var out []adminkit.Record
	for _, row := range f.rows[entity.Key] {
		matches := true
		for _, filter := range opts.Filters {
			if !sameValue(row[filter.Field], filter.Value) {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}
		clone := cloneRecord(row)
		if opts.IncludeJoins {
			for k, v := range f.joinDisplay[entity.Key] {
				clone[k] = v
			}
		}
		out = append(out, clone)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			out = nil
		} else {
			out = out[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, entity *adminkit.EntitySchema, data adminkit.Record) (adminkit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := cloneRecord(data)
	if _, ok := row[entity.IDField]; !ok {
		row[entity.IDField] = uuid.NewString()
	}
	f.rows[entity.Key] = append(f.rows[entity.Key], row)
	return cloneRecord(row), nil
}

func (f *fakeStore) UpdateRecord(_ context.Context, entity *adminkit.EntitySchema, id any, data adminkit.Record) (adminkit.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[fmt.Sprintf("%v", id)]; err != nil {
		return nil, err
	}
	for i, row := range f.rows[entity.Key] {
		if sameValue(row[entity.IDField], id) {
			for k, v := range data {
				row[k] = v
			}
			f.rows[entity.Key][i] = row
			return cloneRecord(row), nil
		}
	}
	return nil, adminkit.NewItemNotFoundError(entity.Key, id)
}

func (f *fakeStore) Delete(_ context.Context, entity *adminkit.EntitySchema, id any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[fmt.Sprintf("%v", id)]; err != nil {
		return err
	}
	for i, row := range f.rows[entity.Key] {
		if sameValue(row[entity.IDField], id) {
			f.rows[entity.Key] = append(f.rows[entity.Key][:i], f.rows[entity.Key][i+1:]...)
			return nil
		}
	}
	return adminkit.NewItemNotFoundError(entity.Key, id)
}

func (f *fakeStore) Exists(_ context.Context, entity *adminkit.EntitySchema, field string, value any, scope any, excludeID any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows[entity.Key] {
		if !sameValue(row[field], value) {
			continue
		}
		if scope != nil && entity.ScopeField != "" && !sameValue(row[entity.ScopeField], scope) {
			continue
		}
		if excludeID != nil && sameValue(row[entity.IDField], excludeID) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeStore) Count(_ context.Context, entity *adminkit.EntitySchema, filters []adminkit.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows[entity.Key] {
		matches := true
		for _, filter := range filters {
			if !sameValue(row[filter.Field], filter.Value) {
				matches = false
				break
			}
		}
		if matches {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) count(entity string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[entity])
}

func (f *fakeStore) row(entity string, id any) adminkit.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows[entity] {
		if sameValue(row["id"], id) {
			return cloneRecord(row)
		}
	}
	return nil
}

func newTestService(cfg *adminkit.Config) (adminkit.EntityService, *fakeStore) {
	registry := newTestRegistry()
	store := newFakeStore()
	if cfg == nil {
		cfg = adminkit.DefaultConfig()
	}
	svc := NewEntityService(registry, store,
		NewValidatorBuilder(registry, NewResolver(registry)), NewCaster(registry), cfg)
	return svc, store
}

func TestCreateItemTranslatesKeysAndInjectsScope(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	created, err := svc.CreateItem(ctx, scope, "suppliers", adminkit.Record{
		"display-name":  "Acme Corp",
		"contact-email": "billing@acme.example",
	}, nil)
	require.NoError(t, err)

	// The caller sees external keys.
	assert.Equal(t, "Acme Corp", created["display-name"])
	assert.Equal(t, scope, fmt.Sprintf("%v", created["account-id"]))
	assert.NotEmpty(t, created["id"])

	// The store holds underscored keys.
	stored := store.row("suppliers", created["id"])
	require.NotNil(t, stored)
	assert.Equal(t, "Acme Corp", stored["display_name"])
	assert.Equal(t, "billing@acme.example", stored["contact_email"])
}

func TestCreateItemValidationFailure(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	_, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": "-5"}, nil)
	require.Error(t, err)
	require.True(t, adminkit.IsValidationFailed(err))
	ee, _ := adminkit.AsEngineError(err)
	assert.Equal(t, "must be greater than 0", ee.Errors["amount"])
	assert.Zero(t, store.count("expenses"))

	// Field errors come back under external keys.
	_, err = svc.CreateItem(ctx, scope, "suppliers", adminkit.Record{"display-name": ""}, nil)
	require.Error(t, err)
	ee, _ = adminkit.AsEngineError(err)
	assert.Equal(t, "supplier name is required", ee.Errors["display-name"])
}

func TestCreateItemUniquenessIsScopePartitioned(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	scopeA, scopeB := uuid.NewString(), uuid.NewString()

	_, err := svc.CreateItem(ctx, scopeA, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)

	// The same name collides within the scope.
	_, err = svc.CreateItem(ctx, scopeA, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.Error(t, err)
	ee, _ := adminkit.AsEngineError(err)
	assert.Equal(t, "already taken", ee.Errors["display-name"])

	// Another scope is free to reuse it.
	_, err = svc.CreateItem(ctx, scopeB, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)
}

func TestUpdateItemExcludesSelfFromUniqueness(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	created, err := svc.CreateItem(ctx, scope, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)

	// Re-writing its own name is not a conflict.
	_, err = svc.UpdateItem(ctx, scope, "suppliers", created["id"], adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)
}

func TestGetItemScopeVisibility(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	scopeA, scopeB := uuid.NewString(), uuid.NewString()

	created, err := svc.CreateItem(ctx, scopeA, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)

	got, err := svc.GetItem(ctx, scopeA, "suppliers", created["id"], nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got["display-name"])

	// Another scope reads it as absent, not as an error.
	got, err = svc.GetItem(ctx, scopeB, "suppliers", created["id"], nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetItem(ctx, scopeA, "suppliers", "no-such-id", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetItemScopeAgnosticEntity(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, nil, "audits", adminkit.Record{"action": "login"}, nil)
	require.NoError(t, err)

	// Entities without a scope field are visible to any caller.
	got, err := svc.GetItem(ctx, uuid.NewString(), "audits", created["id"], nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "login", got["action"])
}

func TestGetItemsScopeFilterAndPagination(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scopeA, scopeB := uuid.NewString(), uuid.NewString()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateItem(ctx, scopeA, "expenses", adminkit.Record{"amount": 10 + i}, nil)
		require.NoError(t, err)
	}
	_, err := svc.CreateItem(ctx, scopeB, "expenses", adminkit.Record{"amount": 99}, nil)
	require.NoError(t, err)

	rows, err := svc.GetItems(ctx, scopeA, "expenses", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, scopeA, fmt.Sprintf("%v", row["account-id"]))
	}

	// Nil options get the default page size; oversized limits are capped.
	assert.Equal(t, 50, store.lastList["expenses"].Limit)

	_, err = svc.GetItems(ctx, scopeA, "expenses", &adminkit.ListOptions{Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 500, store.lastList["expenses"].Limit)

	rows, err = svc.GetItems(ctx, scopeA, "expenses", &adminkit.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGetItemsTranslatesFilterAndOrderKeys(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	_, err := svc.GetItems(ctx, scope, "expenses", &adminkit.ListOptions{
		Filters: []adminkit.Filter{{Field: "incurred-on", Value: "2024-06-15"}},
		OrderBy: []adminkit.OrderBy{{Field: "incurred-on", Order: adminkit.SortOrderDesc}},
	})
	require.NoError(t, err)

	prepared := store.lastList["expenses"]
	require.Len(t, prepared.Filters, 2)
	assert.Equal(t, "incurred_on", prepared.Filters[0].Field)
	assert.Equal(t, "account_id", prepared.Filters[1].Field)
	assert.Equal(t, scope, prepared.Filters[1].Value)
	require.Len(t, prepared.OrderBy, 1)
	assert.Equal(t, "incurred_on", prepared.OrderBy[0].Field)
}

func TestCountItemsScopeAndFilterTranslation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	scopeA, scopeB := uuid.NewString(), uuid.NewString()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateItem(ctx, scopeA, "expenses", adminkit.Record{"amount": 10 + i, "status": "draft"}, nil)
		require.NoError(t, err)
	}
	_, err := svc.CreateItem(ctx, scopeA, "expenses", adminkit.Record{"amount": 50, "status": "approved"}, nil)
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, scopeB, "expenses", adminkit.Record{"amount": 99, "status": "draft"}, nil)
	require.NoError(t, err)

	count, err := svc.CountItems(ctx, scopeA, "expenses", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	// Filter keys arrive in the external convention and count within scope.
	count, err = svc.CountItems(ctx, scopeA, "expenses", []adminkit.Filter{
		{Field: "status", Value: "draft"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = svc.CountItems(ctx, nil, "widgets", nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsEntityNotFound(err))
}

func TestGetItemsUnknownEntity(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.GetItems(context.Background(), nil, "widgets", nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsEntityNotFound(err))
}

func TestUpdateItemPartialValidationAndAudit(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
	require.NoError(t, err)

	// Updating status alone must not re-demand required fields.
	updated, err := svc.UpdateItem(ctx, scope, "expenses", created["id"], adminkit.Record{
		"status": "approved",
	}, &adminkit.ItemOptions{Actor: "admin@acme.example"})
	require.NoError(t, err)
	assert.Equal(t, "approved", updated["status"])

	stored := store.row("expenses", created["id"])
	_, ok := stored["updated_at"].(time.Time)
	assert.True(t, ok)
	assert.Equal(t, "admin@acme.example", stored["updated_by"])

	// A supplied field is still validated.
	_, err = svc.UpdateItem(ctx, scope, "expenses", created["id"], adminkit.Record{"amount": -1}, nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsValidationFailed(err))
}

func TestUpdateItemNotFoundAndWrongScope(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	scopeA, scopeB := uuid.NewString(), uuid.NewString()

	_, err := svc.UpdateItem(ctx, scopeA, "expenses", "missing", adminkit.Record{"amount": 1}, nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsItemNotFound(err))

	created, err := svc.CreateItem(ctx, scopeA, "expenses", adminkit.Record{"amount": 10}, nil)
	require.NoError(t, err)

	// Rows outside the caller's scope update as if absent.
	_, err = svc.UpdateItem(ctx, scopeB, "expenses", created["id"], adminkit.Record{"amount": 20}, nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsItemNotFound(err))
}

func TestDeleteItem(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()

	created, err := svc.CreateItem(ctx, scope, "suppliers", adminkit.Record{"display-name": "Acme"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(ctx, scope, "suppliers", created["id"], nil))
	assert.Zero(t, store.count("suppliers"))

	err = svc.DeleteItem(ctx, scope, "suppliers", created["id"], nil)
	require.Error(t, err)
	assert.True(t, adminkit.IsItemNotFound(err))
}

func TestCreateItemIncludeJoins(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	scope := uuid.NewString()
	store.joinDisplay["expenses"] = adminkit.Record{"supplier_id_display": "Acme"}

	created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10},
		&adminkit.ItemOptions{IncludeJoins: true})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created["supplier-id-display"])
}

func TestActorFallback(t *testing.T) {
	ctx := context.Background()
	scope := uuid.NewString()

	t.Run("falls back to first user", func(t *testing.T) {
		svc, store := newTestService(nil)
		userID := uuid.NewString()
		store.rows["users"] = []adminkit.Record{{"id": userID, "account_id": scope, "email": "root@acme.example"}}

		created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		stored := store.row("expenses", created["id"])
		assert.Equal(t, userID, stored["created_by"])
	})

	t.Run("disabled fallback writes without an actor", func(t *testing.T) {
		cfg := adminkit.DefaultConfig()
		cfg.Audit.AllowActorFallback = false
		svc, store := newTestService(cfg)

		created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		stored := store.row("expenses", created["id"])
		_, ok := stored["created_by"]
		assert.False(t, ok)
	})

	t.Run("supplied actor wins", func(t *testing.T) {
		svc, store := newTestService(nil)
		store.rows["users"] = []adminkit.Record{{"id": uuid.NewString()}}

		created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10},
			&adminkit.ItemOptions{Actor: "admin@acme.example"})
		require.NoError(t, err)
		stored := store.row("expenses", created["id"])
		assert.Equal(t, "admin@acme.example", stored["created_by"])
	})
}

func TestValidateEntityOperation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	result, err := svc.ValidateEntity(ctx, nil, "suppliers", adminkit.Record{"display-name": ""})
	require.NoError(t, err)
	require.False(t, result.Valid)
	assert.Equal(t, "supplier name is required", result.Errors["display-name"])

	result, err = svc.ValidateEntity(ctx, nil, "suppliers", adminkit.Record{"display-name": "Acme Corp"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	_, err = svc.ValidateEntity(ctx, nil, "widgets", adminkit.Record{})
	require.Error(t, err)
	assert.True(t, adminkit.IsEntityNotFound(err))
}

func TestBatchUpdateItems(t *testing.T) {
	ctx := context.Background()
	scope := uuid.NewString()

	seed := func(t *testing.T, svc adminkit.EntityService, n int) []any {
		t.Helper()
		ids := make([]any, 0, n)
		for i := 0; i < n; i++ {
			created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
			require.NoError(t, err)
			ids = append(ids, created["id"])
		}
		return ids
	}

	t.Run("aborts on first failure by default", func(t *testing.T) {
		svc, store := newTestService(nil)
		ids := seed(t, svc, 3)

		_, err := svc.BatchUpdateItems(ctx, scope, "expenses", []adminkit.BatchUpdateItem{
			{ID: ids[0], Data: adminkit.Record{"amount": 20}},
			{ID: ids[1], Data: adminkit.Record{"amount": -1}},
			{ID: ids[2], Data: adminkit.Record{"amount": 30}},
		}, nil)
		require.Error(t, err)
		assert.True(t, adminkit.IsValidationFailed(err))

		// Items updated before the failure stay applied; later items do not run.
		assert.Equal(t, 20.0, store.row("expenses", ids[0])["amount"])
		assert.Equal(t, 10.0, store.row("expenses", ids[2])["amount"])
	})

	t.Run("continue on error accumulates failures", func(t *testing.T) {
		svc, _ := newTestService(nil)
		ids := seed(t, svc, 3)

		result, err := svc.BatchUpdateItems(ctx, scope, "expenses", []adminkit.BatchUpdateItem{
			{ID: ids[0], Data: adminkit.Record{"amount": 20}},
			{ID: ids[1], Data: adminkit.Record{"amount": -1}},
			{ID: ids[2], Data: adminkit.Record{"amount": 30}},
		}, &adminkit.BatchOptions{ContinueOnError: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Updated)
		assert.Len(t, result.Results, 2)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ids[1], result.Errors[0].ID)
		assert.Equal(t, adminkit.ErrCodeValidationFailed, result.Errors[0].Code)
	})

	t.Run("empty batch is a caller error", func(t *testing.T) {
		svc, _ := newTestService(nil)
		_, err := svc.BatchUpdateItems(ctx, scope, "expenses", nil, nil)
		require.Error(t, err)
		ee, _ := adminkit.AsEngineError(err)
		assert.Equal(t, adminkit.ErrCodeEmptyBatch, ee.Code)
		assert.True(t, adminkit.IsValidationFailed(err))
	})

	t.Run("unknown entity", func(t *testing.T) {
		svc, _ := newTestService(nil)
		_, err := svc.BatchUpdateItems(ctx, scope, "widgets",
			[]adminkit.BatchUpdateItem{{ID: "x", Data: adminkit.Record{}}}, nil)
		require.Error(t, err)
		assert.True(t, adminkit.IsEntityNotFound(err))
	})
}

func TestBatchDeleteItems(t *testing.T) {
	ctx := context.Background()
	scope := uuid.NewString()

	t.Run("missing ids are reported not raised", func(t *testing.T) {
		svc, store := newTestService(nil)
		created, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)

		result, err := svc.BatchDeleteItems(ctx, scope, "expenses", []any{created["id"], "missing"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.Equal(t, []any{"missing"}, result.NotFoundIDs)
		assert.Empty(t, result.Errors)
		assert.Zero(t, store.count("expenses"))
	})

	t.Run("store failures abort by default", func(t *testing.T) {
		svc, store := newTestService(nil)
		first, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		second, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		store.failFor[fmt.Sprintf("%v", second["id"])] = adminkit.NewForeignKeyConstraintError("expenses", nil)

		_, err = svc.BatchDeleteItems(ctx, scope, "expenses", []any{first["id"], second["id"]}, nil)
		require.Error(t, err)
		assert.True(t, adminkit.IsForeignKeyConstraint(err))
	})

	t.Run("continue on error accumulates store failures", func(t *testing.T) {
		svc, store := newTestService(nil)
		first, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		second, err := svc.CreateItem(ctx, scope, "expenses", adminkit.Record{"amount": 10}, nil)
		require.NoError(t, err)
		store.failFor[fmt.Sprintf("%v", second["id"])] = adminkit.NewForeignKeyConstraintError("expenses", nil)

		result, err := svc.BatchDeleteItems(ctx, scope, "expenses",
			[]any{first["id"], second["id"], "missing"}, &adminkit.BatchOptions{ContinueOnError: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.Equal(t, []any{"missing"}, result.NotFoundIDs)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, adminkit.ErrCodeForeignKeyConstraint, result.Errors[0].Code)
	})

	t.Run("empty batch is a caller error", func(t *testing.T) {
		svc, _ := newTestService(nil)
		_, err := svc.BatchDeleteItems(ctx, scope, "expenses", nil, nil)
		require.Error(t, err)
		ee, _ := adminkit.AsEngineError(err)
		assert.Equal(t, adminkit.ErrCodeEmptyBatch, ee.Code)
	})
}
