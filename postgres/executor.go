// Package postgres provides a grid.Executor backed by a PostgreSQL
// connection pool. pgx binds arguments positionally, so the engine's
// :pN references are rewritten to $k placeholders before execution.
package postgres

import (
	"context"
	"fmt"
	"regexp"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-datagrid/core/grid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// placeholderPattern matches the engine's :pN parameter references.
var placeholderPattern = regexp.MustCompile(`:p\d+`)

// Executor runs grid queries and entity write statements against a
// PostgreSQL database.
type Executor struct {
	pool    *pgxpool.Pool
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// Ensure Executor satisfies the engine's execution boundary.
var _ grid.Executor = (*Executor)(nil)

// NewExecutor creates a PostgreSQL executor over a pgx connection pool.
func NewExecutor(pool *pgxpool.Pool, cat *catalog.Catalog, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{pool: pool, catalog: cat, logger: logger}
}

// rewriteQuery converts :pN references into positional $k placeholders
// and collects the matching arguments in placeholder order. Repeated
// references to the same parameter reuse one placeholder.
func rewriteQuery(q *grid.Query) (string, []any) {
	args := make([]any, 0, len(q.Params))
	positions := make(map[string]int, len(q.Params))

	sql := placeholderPattern.ReplaceAllStringFunc(q.SQL, func(name string) string {
		if pos, ok := positions[name]; ok {
			return fmt.Sprintf("$%d", pos)
		}
		args = append(args, q.Params[name])
		positions[name] = len(args)
		return fmt.Sprintf("$%d", len(args))
	})
	return sql, args
}

// Query executes an assembled grid query and scans the result rows.
func (e *Executor) Query(ctx context.Context, q *grid.Query) ([]grid.Row, error) {
	sql, args := rewriteQuery(q)
	e.logger.Debug("Executing SQL SELECT", zap.String("sql", sql), zap.Any("args", args))

	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		e.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sql))
		return nil, fmt.Errorf("postgres: failed to execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var results []grid.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to read row values: %w", err)
		}
		row := make(grid.Row, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: error after scanning rows: %w", err)
	}
	return results, nil
}

// Exec executes a write statement and returns the number of affected
// rows. It satisfies entity.Store.
func (e *Executor) Exec(ctx context.Context, q *grid.Query) (int64, error) {
	sql, args := rewriteQuery(q)
	e.logger.Debug("Executing SQL statement", zap.String("sql", sql), zap.Any("args", args))

	tag, err := e.pool.Exec(ctx, sql, args...)
	if err != nil {
		e.logger.Error("Failed to execute statement", zap.Error(err), zap.String("sql", sql))
		return 0, fmt.Errorf("postgres: failed to execute statement: %w", err)
	}
	return tag.RowsAffected(), nil
}
