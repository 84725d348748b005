package grid

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"go.uber.org/zap"
)

// conditionSQL pairs a condition kind with its SQL operator and the
// transform applied to the client value before binding. Bare conditions
// (IS NULL / IS NOT NULL) take no value at all.
type conditionSQL struct {
	operator  string
	transform func(string) string
	bare      bool
}

func passthrough(value string) string { return value }

// conditionTable is the closed mapping from condition kinds to SQL.
// Kinds absent from this table are skipped at build time.
var conditionTable = map[ConditionKind]conditionSQL{
	ConditionContains:       {operator: "LIKE", transform: func(v string) string { return "%" + v + "%" }},
	ConditionNotContains:    {operator: "NOT LIKE", transform: func(v string) string { return "%" + v + "%" }},
	ConditionEqual:          {operator: "=", transform: passthrough},
	ConditionNotEqual:       {operator: "<>", transform: passthrough},
	ConditionGreaterThan:    {operator: ">", transform: passthrough},
	ConditionLessThan:       {operator: "<", transform: passthrough},
	ConditionGreaterOrEqual: {operator: ">=", transform: passthrough},
	ConditionLessOrEqual:    {operator: "<=", transform: passthrough},
	ConditionStartsWith:     {operator: "LIKE", transform: func(v string) string { return v + "%" }},
	ConditionEndsWith:       {operator: "LIKE", transform: func(v string) string { return "%" + v }},
	ConditionNull:           {operator: "IS NULL", bare: true},
	ConditionNotNull:        {operator: "IS NOT NULL", bare: true},
}

// FilterClauseBuilder translates untrusted filter groups into
// parenthesized SQL boolean expressions plus a named-parameter map.
// Values are always bound through parameters, never concatenated into
// the clause text.
type FilterClauseBuilder struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewFilterClauseBuilder creates a filter clause builder bound to a
// column catalog.
func NewFilterClauseBuilder(cat *catalog.Catalog, logger *zap.Logger) *FilterClauseBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterClauseBuilder{catalog: cat, logger: logger}
}

// Build produces one parenthesized clause per filter group, in input
// order, plus the parameter map referenced by those clauses. Parameter
// names are :p0, :p1, … assigned in processing order and unique across
// the whole call; the counter is local, so concurrent builds never
// interfere.
//
// Groups on fields absent from the catalog are dropped, as are
// conditions with an unknown kind; neither is an error. The caller is
// responsible for AND-joining the returned clauses into a final
// predicate.
func (b *FilterClauseBuilder) Build(groups []FilterGroup) ([]string, map[string]any, error) {
	if b.catalog == nil {
		return nil, nil, ErrCatalogMissing
	}

	clauses := make([]string, 0, len(groups))
	params := make(map[string]any)
	next := 0

	for _, group := range groups {
		col, ok := b.catalog.Lookup(group.Field)
		if !ok {
			b.logger.Debug("Dropping filter group for unknown field", zap.String("field", group.Field))
			continue
		}

		var sb strings.Builder
		for _, cond := range group.Filters {
			sql, ok := conditionTable[cond.Kind]
			if !ok {
				b.logger.Debug("Dropping condition with unknown kind",
					zap.String("field", group.Field),
					zap.String("kind", string(cond.Kind)))
				continue
			}

			// The first surviving condition carries no join prefix.
			if sb.Len() > 0 {
				if cond.Join == JoinOr {
					sb.WriteString(" OR ")
				} else {
					sb.WriteString(" AND ")
				}
			}

			sb.WriteString(col.DBName)
			sb.WriteString(" ")
			sb.WriteString(sql.operator)

			if !sql.bare {
				if value := sql.transform(cond.Value); value != "" {
					name := fmt.Sprintf(":p%d", next)
					next++
					params[name] = value
					sb.WriteString(" ")
					sb.WriteString(name)
				}
			}
		}

		if sb.Len() == 0 {
			continue
		}
		clauses = append(clauses, "("+sb.String()+")")
	}

	return clauses, params, nil
}
