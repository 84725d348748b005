package entity

import (
	"context"
	"errors"
	"testing"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-datagrid/core/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userCatalog() *catalog.Catalog {
	return catalog.New(map[string]catalog.Column{
		"id":       {DBName: "id", Type: catalog.ColumnTypeInteger},
		"name":     {DBName: "full_name", Type: catalog.ColumnTypeText, Required: true},
		"age":      {DBName: "age", Type: catalog.ColumnTypeInteger},
		"isActive": {DBName: "is_active", Type: catalog.ColumnTypeBoolean},
	})
}

func newUser(t *testing.T) *Entity {
	t.Helper()
	e, err := New("users", "id", userCatalog(), nil)
	require.NoError(t, err)
	return e
}

type fakeStore struct {
	gotQuery *grid.Query
	affected int64
	err      error
}

func (f *fakeStore) Exec(_ context.Context, q *grid.Query) (int64, error) {
	f.gotQuery = q
	return f.affected, f.err
}

func TestNew_Validation(t *testing.T) {
	t.Run("missing catalog", func(t *testing.T) {
		_, err := New("users", "id", nil, nil)
		assert.ErrorIs(t, err, grid.ErrCatalogMissing)
	})

	t.Run("key field must be cataloged", func(t *testing.T) {
		_, err := New("users", "uuid", userCatalog(), nil)
		assert.ErrorContains(t, err, "not in the catalog")
	})
}

func TestEntity_StateMachine(t *testing.T) {
	e := newUser(t)
	assert.Equal(t, StateNew, e.State())

	require.NoError(t, e.Set("name", "Ada"))
	assert.Equal(t, StateNew, e.State(), "setting fields on a new entity keeps it new")

	e.Load(grid.Row{"id": int64(1), "full_name": "Ada", "age": int64(36)})
	assert.Equal(t, StateLoaded, e.State())
	assert.Empty(t, e.Dirty())

	require.NoError(t, e.Set("age", int64(37)))
	assert.Equal(t, StateModified, e.State())
	assert.Equal(t, []string{"age"}, e.Dirty())

	e.MarkDeleted()
	assert.Equal(t, StateDeleted, e.State())
	assert.ErrorContains(t, e.Set("age", int64(38)), "deleted")
}

func TestEntity_Load_ResolvesDBColumnNames(t *testing.T) {
	e := newUser(t)
	e.Load(grid.Row{
		"id":        int64(7),
		"full_name": "Grace",
		"is_active": true,
		"unknown":   "dropped",
	})

	name, ok := e.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Grace", name)

	active, ok := e.Get("isActive")
	require.True(t, ok)
	assert.Equal(t, true, active)

	_, ok = e.Get("unknown")
	assert.False(t, ok)
}

func TestEntity_Set_RejectsUnknownField(t *testing.T) {
	e := newUser(t)
	assert.ErrorContains(t, e.Set("ghost", "x"), "not in the catalog")
}

func TestEntity_Validate(t *testing.T) {
	t.Run("required field missing", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("age", int64(30)))
		issues := e.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "name", issues[0].Field)
		assert.Contains(t, issues[0].Message, "required")
	})

	t.Run("type mismatch", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("name", "Ada"))
		require.NoError(t, e.Set("age", "not a number"))
		issues := e.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "age", issues[0].Field)
	})

	t.Run("key field is exempt from required checks", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("name", "Ada"))
		assert.Empty(t, e.Validate())
	})
}

func TestEntity_BuildInsert(t *testing.T) {
	e := newUser(t)
	require.NoError(t, e.Set("name", "Ada"))
	require.NoError(t, e.Set("age", int64(36)))

	q, err := e.BuildInsert()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (age, full_name) VALUES (:p0, :p1)", q.SQL)
	assert.Equal(t, map[string]any{":p0": int64(36), ":p1": "Ada"}, q.Params)
}

func TestEntity_BuildInsert_Rejections(t *testing.T) {
	t.Run("wrong state", func(t *testing.T) {
		e := newUser(t)
		e.Load(grid.Row{"id": int64(1), "full_name": "Ada"})
		_, err := e.BuildInsert()
		assert.ErrorContains(t, err, "insert requires state")
	})

	t.Run("validation failure", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("age", int64(30)))
		_, err := e.BuildInsert()
		assert.ErrorContains(t, err, "validation failed")
	})

	t.Run("nothing set", func(t *testing.T) {
		e, err := New("tags", "id", catalog.New(map[string]catalog.Column{
			"id": {DBName: "id"},
		}), nil)
		require.NoError(t, err)
		_, err = e.BuildInsert()
		assert.ErrorContains(t, err, "no fields set")
	})
}

func TestEntity_BuildUpdate(t *testing.T) {
	e := newUser(t)
	e.Load(grid.Row{"id": int64(5), "full_name": "Ada", "age": int64(36)})
	require.NoError(t, e.Set("age", int64(37)))
	require.NoError(t, e.Set("isActive", true))

	q, err := e.BuildUpdate()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET age = :p0, is_active = :p1 WHERE id = :p2", q.SQL)
	assert.Equal(t, map[string]any{":p0": int64(37), ":p1": true, ":p2": int64(5)}, q.Params)
}

func TestEntity_BuildUpdate_Rejections(t *testing.T) {
	t.Run("wrong state", func(t *testing.T) {
		e := newUser(t)
		_, err := e.BuildUpdate()
		assert.ErrorContains(t, err, "update requires state")
	})

	t.Run("missing key value", func(t *testing.T) {
		e := newUser(t)
		e.Load(grid.Row{"full_name": "Ada"})
		require.NoError(t, e.Set("age", int64(30)))
		_, err := e.BuildUpdate()
		assert.ErrorContains(t, err, "has no value")
	})
}

func TestEntity_BuildDelete(t *testing.T) {
	e := newUser(t)
	e.Load(grid.Row{"id": int64(9), "full_name": "Ada"})
	e.MarkDeleted()

	q, err := e.BuildDelete()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE id = :p0", q.SQL)
	assert.Equal(t, map[string]any{":p0": int64(9)}, q.Params)
}

func TestEntity_Save(t *testing.T) {
	t.Run("loaded entity saves as a no-op", func(t *testing.T) {
		e := newUser(t)
		e.Load(grid.Row{"id": int64(1), "full_name": "Ada"})
		store := &fakeStore{}
		require.NoError(t, e.Save(context.Background(), store))
		assert.Nil(t, store.gotQuery)
	})

	t.Run("new entity inserts and becomes loaded", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("name", "Ada"))
		store := &fakeStore{affected: 1}

		require.NoError(t, e.Save(context.Background(), store))
		require.NotNil(t, store.gotQuery)
		assert.Contains(t, store.gotQuery.SQL, "INSERT INTO users")
		assert.Equal(t, StateLoaded, e.State())
		assert.Empty(t, e.Dirty())
	})

	t.Run("modified entity updates and becomes loaded", func(t *testing.T) {
		e := newUser(t)
		e.Load(grid.Row{"id": int64(1), "full_name": "Ada"})
		require.NoError(t, e.Set("name", "Ada L."))
		store := &fakeStore{affected: 1}

		require.NoError(t, e.Save(context.Background(), store))
		require.NotNil(t, store.gotQuery)
		assert.Contains(t, store.gotQuery.SQL, "UPDATE users SET")
		assert.Equal(t, StateLoaded, e.State())
	})

	t.Run("deleted entity stays deleted after save", func(t *testing.T) {
		e := newUser(t)
		e.Load(grid.Row{"id": int64(1), "full_name": "Ada"})
		e.MarkDeleted()
		store := &fakeStore{affected: 1}

		require.NoError(t, e.Save(context.Background(), store))
		require.NotNil(t, store.gotQuery)
		assert.Contains(t, store.gotQuery.SQL, "DELETE FROM users")
		assert.Equal(t, StateDeleted, e.State())
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		e := newUser(t)
		require.NoError(t, e.Set("name", "Ada"))
		storeErr := errors.New("disk full")
		store := &fakeStore{err: storeErr}

		err := e.Save(context.Background(), store)
		assert.ErrorIs(t, err, storeErr)
		assert.Equal(t, StateNew, e.State(), "failed save must not advance the state")
	})
}
