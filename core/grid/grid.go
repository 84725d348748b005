package grid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/asaidimu/go-events"
	"go.uber.org/zap"
)

// Query is one assembled SQL statement plus the named parameters it
// references. Parameter names follow the :p0, :p1, … convention and are
// not stable across repeated builds with different inputs.
type Query struct {
	SQL    string
	Params map[string]any
}

// Row is a single result row keyed by database column name.
type Row = map[string]any

// Executor runs an assembled grid query and returns its rows. The
// translation engine never executes SQL itself; implementations live in
// the sqlite and postgres packages.
type Executor interface {
	Query(ctx context.Context, q *Query) ([]Row, error)
}

// Config configures a Grid.
type Config struct {
	// Catalog is the column whitelist. Required.
	Catalog *catalog.Catalog
	// BaseSelect is the caller-supplied SELECT statement the generated
	// clauses are appended to, e.g. "SELECT id, name FROM users". Required.
	BaseSelect string
	// DefaultSortField substitutes for sort fields the catalog does not
	// know.
	DefaultSortField string
	// PagingStyle selects the paging syntax; defaults to OFFSET/FETCH.
	PagingStyle PagingStyle
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Grid orchestrates one grid configuration: it threads untrusted
// Options through the filter, sort and paging builders and assembles
// the final query. A Grid is immutable after construction and safe for
// concurrent use; each BuildQuery call works on its own state only.
type Grid struct {
	baseSelect string
	filter     *FilterClauseBuilder
	sort       *SortClauseBuilder
	paging     *PagingClauseBuilder
	logger     *zap.Logger
	subs       *subscriptions
}

// New creates a Grid from the given configuration.
func New(cfg Config) (*Grid, error) {
	if cfg.Catalog == nil {
		return nil, ErrCatalogMissing
	}
	if strings.TrimSpace(cfg.BaseSelect) == "" {
		return nil, fmt.Errorf("grid: base select statement is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("grid: could not initialize event bus: %w", err)
	}

	return &Grid{
		baseSelect: strings.TrimSpace(cfg.BaseSelect),
		filter:     NewFilterClauseBuilder(cfg.Catalog, logger),
		sort:       NewSortClauseBuilder(cfg.Catalog, cfg.DefaultSortField, logger),
		paging:     NewPagingClauseBuilder(cfg.Catalog, cfg.PagingStyle),
		logger:     logger,
		subs:       newSubscriptions(bus),
	}, nil
}

// BuildQuery translates untrusted grid options into one executable
// query: base SELECT, AND-joined WHERE clauses, ORDER BY fragment and
// paging fragment, with every filter value bound through a named
// parameter. A nil options value builds the bare base SELECT.
func (g *Grid) BuildQuery(opts *Options) (*Query, error) {
	startTime := time.Now()
	g.subs.emit(newEvent(QueryBuildStart, nil, 0, nil, startTime))

	q, err := g.buildQuery(opts)
	if err != nil {
		errStr := err.Error()
		g.subs.emit(newEvent(QueryBuildFailed, nil, 0, &errStr, startTime))
		return nil, err
	}

	g.logger.Debug("Built grid query", zap.String("sql", q.SQL), zap.Any("params", q.Params))
	g.subs.emit(newEvent(QueryBuildSuccess, q, 0, nil, startTime))
	return q, nil
}

func (g *Grid) buildQuery(opts *Options) (*Query, error) {
	if opts == nil {
		opts = &Options{}
	}

	whereClauses, params, err := g.filter.Build(opts.Groups)
	if err != nil {
		return nil, err
	}

	var sortField, sortOrder string
	if opts.Sort != nil {
		sortField, sortOrder = opts.Sort.Field, opts.Sort.Order
	}
	orderBy, err := g.sort.Build(sortField, sortOrder)
	if err != nil {
		return nil, err
	}

	pagingSQL, err := g.paging.Build(opts.Paging)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(g.baseSelect)
	if len(whereClauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(whereClauses, " AND "))
	}
	if orderBy != "" {
		sb.WriteString(" ")
		sb.WriteString(orderBy)
	}
	if pagingSQL != "" {
		sb.WriteString(" ")
		sb.WriteString(pagingSQL)
	}

	return &Query{SQL: sb.String(), Params: params}, nil
}

// Execute builds the query for the given options and runs it through
// the executor.
func (g *Grid) Execute(ctx context.Context, opts *Options, executor Executor) ([]Row, error) {
	q, err := g.BuildQuery(opts)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	g.subs.emit(newEvent(QueryExecuteStart, q, 0, nil, startTime))

	rows, err := executor.Query(ctx, q)
	if err != nil {
		errStr := err.Error()
		g.subs.emit(newEvent(QueryExecuteFailed, q, 0, &errStr, startTime))
		return nil, fmt.Errorf("grid: query execution failed: %w", err)
	}

	g.subs.emit(newEvent(QueryExecuteSuccess, q, len(rows), nil, startTime))
	return rows, nil
}

// Subscribe registers a callback for a grid event type and returns a
// subscription id for later removal.
func (g *Grid) Subscribe(eventType EventType, cb EventCallback) string {
	return g.subs.subscribe(eventType, cb)
}

// Unsubscribe removes a subscription by id. Unknown ids are ignored.
func (g *Grid) Unsubscribe(id string) {
	g.subs.unsubscribe(id)
}
