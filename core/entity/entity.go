// Package entity provides catalog-backed record lifecycle tracking:
// an explicit state machine over load/set/save/delete with dirty-field
// tracking and validation before any write SQL is generated. It shares
// the grid engine's named-parameter convention, so the same executors
// run its statements.
package entity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-datagrid/core/grid"
	"go.uber.org/zap"
)

// State is the lifecycle position of an entity.
type State string

const (
	StateNew      State = "new"      // Never persisted; saving inserts
	StateLoaded   State = "loaded"   // Persisted and unchanged
	StateModified State = "modified" // Persisted with unsaved changes; saving updates
	StateDeleted  State = "deleted"  // Marked for removal; saving deletes
)

// Issue describes a single validation problem found before a save.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Store executes write statements produced by an entity. Both the
// sqlite and postgres executors satisfy it.
type Store interface {
	Exec(ctx context.Context, q *grid.Query) (int64, error)
}

// Entity is one catalog-backed database record. Field access goes
// through the catalog, so an entity can never write a column the grid
// owner has not whitelisted.
type Entity struct {
	table    string
	keyField string
	catalog  *catalog.Catalog
	values   map[string]any
	dirty    map[string]struct{}
	state    State
	logger   *zap.Logger
}

// New creates an empty entity in StateNew for the given table. The key
// field names the catalog field used in UPDATE and DELETE predicates.
func New(table, keyField string, cat *catalog.Catalog, logger *zap.Logger) (*Entity, error) {
	if cat == nil {
		return nil, grid.ErrCatalogMissing
	}
	if !cat.Has(keyField) {
		return nil, fmt.Errorf("entity: key field %q is not in the catalog", keyField)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Entity{
		table:    table,
		keyField: keyField,
		catalog:  cat,
		values:   map[string]any{},
		dirty:    map[string]struct{}{},
		state:    StateNew,
		logger:   logger,
	}, nil
}

// State returns the entity's lifecycle state.
func (e *Entity) State() State {
	return e.state
}

// Load replaces the entity's values with a freshly read row and moves
// it to StateLoaded. Row keys resolve through the catalog by database
// column name; unknown columns are dropped.
func (e *Entity) Load(row grid.Row) {
	e.values = make(map[string]any, len(row))
	e.dirty = map[string]struct{}{}
	for _, field := range e.catalog.Fields() {
		col, _ := e.catalog.Lookup(field)
		if value, ok := row[col.DBName]; ok {
			e.values[field] = value
		}
	}
	e.state = StateLoaded
}

// Get returns the current value of a field.
func (e *Entity) Get(field string) (any, bool) {
	value, ok := e.values[field]
	return value, ok
}

// Set assigns a field value, marks the field dirty and advances the
// state machine: a loaded entity becomes modified, a new one stays new.
// Setting a field the catalog does not know, or mutating a deleted
// entity, is an error.
func (e *Entity) Set(field string, value any) error {
	if e.state == StateDeleted {
		return fmt.Errorf("entity: cannot modify a deleted record")
	}
	if !e.catalog.Has(field) {
		return fmt.Errorf("entity: field %q is not in the catalog", field)
	}
	e.values[field] = value
	e.dirty[field] = struct{}{}
	if e.state == StateLoaded {
		e.state = StateModified
	}
	return nil
}

// MarkDeleted moves the entity to StateDeleted. Subsequent Save calls
// generate a DELETE.
func (e *Entity) MarkDeleted() {
	e.state = StateDeleted
}

// Dirty returns the names of fields changed since the last load or
// save, in sorted order.
func (e *Entity) Dirty() []string {
	fields := make([]string, 0, len(e.dirty))
	for field := range e.dirty {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Validate checks the entity's values against the catalog: required
// columns must be present and non-nil, and typed columns must hold a
// value of the declared type. It never panics or errors; problems come
// back as issues.
func (e *Entity) Validate() []Issue {
	var issues []Issue
	for _, field := range e.catalog.Fields() {
		col, _ := e.catalog.Lookup(field)
		value, ok := e.values[field]
		if !ok || value == nil {
			if col.Required && field != e.keyField {
				issues = append(issues, Issue{Field: field, Message: "required field is missing"})
			}
			continue
		}
		if !typeMatches(col.Type, value) {
			issues = append(issues, Issue{
				Field:   field,
				Message: fmt.Sprintf("value of type %T does not match column type %s", value, col.Type),
			})
		}
	}
	return issues
}

// typeMatches reports whether a Go value is acceptable for a column
// type. Untyped columns accept anything.
func typeMatches(columnType catalog.ColumnType, value any) bool {
	switch columnType {
	case catalog.ColumnTypeText:
		_, ok := value.(string)
		return ok
	case catalog.ColumnTypeInteger:
		switch value.(type) {
		case int, int32, int64:
			return true
		}
		return false
	case catalog.ColumnTypeReal:
		switch value.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case catalog.ColumnTypeBoolean:
		_, ok := value.(bool)
		return ok
	case catalog.ColumnTypeTime:
		switch value.(type) {
		case time.Time, string:
			return true
		}
		return false
	default:
		return true
	}
}

// BuildInsert generates a parameterized INSERT for all set fields. The
// entity must be in StateNew and must validate cleanly.
func (e *Entity) BuildInsert() (*grid.Query, error) {
	if e.state != StateNew {
		return nil, fmt.Errorf("entity: insert requires state %s, have %s", StateNew, e.state)
	}
	if issues := e.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("entity: validation failed: %s", formatIssues(issues))
	}

	fields := e.setFields()
	if len(fields) == 0 {
		return nil, fmt.Errorf("entity: no fields set for insert")
	}

	columns := make([]string, 0, len(fields))
	placeholders := make([]string, 0, len(fields))
	params := make(map[string]any, len(fields))
	for i, field := range fields {
		col, _ := e.catalog.Lookup(field)
		name := fmt.Sprintf(":p%d", i)
		columns = append(columns, col.DBName)
		placeholders = append(placeholders, name)
		params[name] = e.values[field]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return &grid.Query{SQL: sql, Params: params}, nil
}

// BuildUpdate generates a parameterized UPDATE touching only dirty
// fields, keyed on the entity's key field. The entity must be in
// StateModified and must validate cleanly.
func (e *Entity) BuildUpdate() (*grid.Query, error) {
	if e.state != StateModified {
		return nil, fmt.Errorf("entity: update requires state %s, have %s", StateModified, e.state)
	}
	if issues := e.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("entity: validation failed: %s", formatIssues(issues))
	}
	key, ok := e.values[e.keyField]
	if !ok {
		return nil, fmt.Errorf("entity: key field %q has no value", e.keyField)
	}

	fields := e.Dirty()
	assignments := make([]string, 0, len(fields))
	params := make(map[string]any, len(fields)+1)
	next := 0
	for _, field := range fields {
		if field == e.keyField {
			continue
		}
		col, _ := e.catalog.Lookup(field)
		name := fmt.Sprintf(":p%d", next)
		next++
		assignments = append(assignments, fmt.Sprintf("%s = %s", col.DBName, name))
		params[name] = e.values[field]
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("entity: no dirty fields for update")
	}

	keyCol, _ := e.catalog.Lookup(e.keyField)
	keyName := fmt.Sprintf(":p%d", next)
	params[keyName] = key

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		e.table, strings.Join(assignments, ", "), keyCol.DBName, keyName)
	return &grid.Query{SQL: sql, Params: params}, nil
}

// BuildDelete generates a parameterized DELETE keyed on the entity's
// key field. The entity must be in StateDeleted.
func (e *Entity) BuildDelete() (*grid.Query, error) {
	if e.state != StateDeleted {
		return nil, fmt.Errorf("entity: delete requires state %s, have %s", StateDeleted, e.state)
	}
	key, ok := e.values[e.keyField]
	if !ok {
		return nil, fmt.Errorf("entity: key field %q has no value", e.keyField)
	}

	keyCol, _ := e.catalog.Lookup(e.keyField)
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = :p0", e.table, keyCol.DBName)
	return &grid.Query{SQL: sql, Params: map[string]any{":p0": key}}, nil
}

// Save generates and executes the statement the current state calls
// for: insert when new, update when modified, delete when deleted. A
// loaded, unchanged entity saves as a no-op. After a successful write
// the state machine advances: new/modified become loaded.
func (e *Entity) Save(ctx context.Context, store Store) error {
	var q *grid.Query
	var err error

	switch e.state {
	case StateLoaded:
		return nil
	case StateNew:
		q, err = e.BuildInsert()
	case StateModified:
		q, err = e.BuildUpdate()
	case StateDeleted:
		q, err = e.BuildDelete()
	default:
		return fmt.Errorf("entity: unknown state %q", e.state)
	}
	if err != nil {
		return err
	}

	e.logger.Debug("Saving entity", zap.String("table", e.table), zap.String("sql", q.SQL))
	affected, err := store.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("entity: save failed for table %q: %w", e.table, err)
	}
	e.logger.Debug("Entity saved", zap.String("table", e.table), zap.Int64("affected", affected))

	if e.state != StateDeleted {
		e.state = StateLoaded
		e.dirty = map[string]struct{}{}
	}
	return nil
}

// setFields returns the names of fields with values, in sorted order.
func (e *Entity) setFields() []string {
	fields := make([]string, 0, len(e.values))
	for field := range e.values {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func formatIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = fmt.Sprintf("%s: %s", issue.Field, issue.Message)
	}
	return strings.Join(parts, "; ")
}
