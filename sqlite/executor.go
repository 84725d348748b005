// Package sqlite provides a grid.Executor backed by a SQLite database.
// It binds the engine's :pN parameters through database/sql named
// arguments and converts scanned values using the catalog's column
// type metadata.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-datagrid/core/grid"
	"go.uber.org/zap"
)

// Executor runs grid queries and entity write statements against a
// SQLite database. Grids using it should be configured with the
// LIMIT/OFFSET paging style, since SQLite has no FETCH clause.
type Executor struct {
	db      *sql.DB
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// Ensure Executor satisfies the engine's execution boundary.
var _ grid.Executor = (*Executor)(nil)

// NewExecutor creates a SQLite executor over an open database handle.
func NewExecutor(db *sql.DB, cat *catalog.Catalog, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{db: db, catalog: cat, logger: logger}
}

// Query executes an assembled grid query and scans the result rows.
func (e *Executor) Query(ctx context.Context, q *grid.Query) ([]grid.Row, error) {
	e.logger.Debug("Executing SQL SELECT", zap.String("sql", q.SQL), zap.Any("params", q.Params))

	rows, err := e.db.QueryContext(ctx, q.SQL, namedArgs(q.Params)...)
	if err != nil {
		e.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", q.SQL))
		return nil, fmt.Errorf("sqlite: failed to execute query: %w", err)
	}
	defer rows.Close()
	return readRows(e.logger, e.catalog, rows)
}

// Exec executes a write statement and returns the number of affected
// rows. It satisfies entity.Store.
func (e *Executor) Exec(ctx context.Context, q *grid.Query) (int64, error) {
	e.logger.Debug("Executing SQL statement", zap.String("sql", q.SQL), zap.Any("params", q.Params))

	result, err := e.db.ExecContext(ctx, q.SQL, namedArgs(q.Params)...)
	if err != nil {
		e.logger.Error("Failed to execute statement", zap.Error(err), zap.String("sql", q.SQL))
		return 0, fmt.Errorf("sqlite: failed to execute statement: %w", err)
	}
	return result.RowsAffected()
}

// namedArgs converts the engine's :name parameter map into
// database/sql named arguments. The driver matches them by name, so
// ordering does not matter.
func namedArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, sql.Named(strings.TrimPrefix(name, ":"), value))
	}
	return args
}

// readRows scans all result rows into grid.Row maps, converting values
// according to the catalog's column types: booleans stored as integers
// come back as bools, text stored as []byte comes back as string.
// Columns the catalog does not describe pass through unchanged.
func readRows(logger *zap.Logger, cat *catalog.Catalog, rows *sql.Rows) ([]grid.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get columns: %w", err)
	}

	var results []grid.Row
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan row: %w", err)
		}

		row := make(grid.Row, len(columns))
		for i, name := range columns {
			row[name] = convertValue(logger, cat, name, values[i])
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: error after scanning rows: %w", err)
	}
	return results, nil
}

func convertValue(logger *zap.Logger, cat *catalog.Catalog, column string, value any) any {
	if value == nil {
		return nil
	}
	col, ok := cat.ColumnByDBName(column)
	if !ok {
		logger.Debug("Column not described by catalog, using raw value", zap.String("column", column))
		return value
	}

	switch col.Type {
	case catalog.ColumnTypeBoolean:
		if intVal, isInt := value.(int64); isInt {
			return intVal != 0
		}
	case catalog.ColumnTypeText:
		if byteVal, isBytes := value.([]byte); isBytes {
			return string(byteVal)
		}
	case catalog.ColumnTypeInteger:
		if floatVal, isFloat := value.(float64); isFloat {
			return int64(floatVal)
		}
	case catalog.ColumnTypeReal:
		if intVal, isInt := value.(int64); isInt {
			return float64(intVal)
		}
	}
	return value
}
