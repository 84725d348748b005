package grid

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"go.uber.org/zap"
)

// SortClauseBuilder produces ORDER BY fragments from untrusted sort
// requests. It is deliberately lenient: a sort field the catalog does
// not know falls back to a configured default field, and any order
// other than ASC is treated as DESC. Strict validation lives in
// SortSpec instead.
type SortClauseBuilder struct {
	catalog      *catalog.Catalog
	defaultField string
	logger       *zap.Logger
}

// NewSortClauseBuilder creates a sort clause builder bound to a column
// catalog and a default sort field for catalog misses.
func NewSortClauseBuilder(cat *catalog.Catalog, defaultField string, logger *zap.Logger) *SortClauseBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SortClauseBuilder{catalog: cat, defaultField: defaultField, logger: logger}
}

// Build returns an "ORDER BY <column> <ASC|DESC>" fragment, or the
// empty string when either the field or the order is absent. The
// requested field resolves through the catalog; an unknown field is
// replaced by the default field rather than rejected.
func (b *SortClauseBuilder) Build(field, order string) (string, error) {
	if b.catalog == nil {
		return "", ErrCatalogMissing
	}
	if field == "" || order == "" {
		return "", nil
	}

	resolved := field
	if !b.catalog.Has(field) {
		b.logger.Debug("Substituting default sort field",
			zap.String("requested", field),
			zap.String("default", b.defaultField))
		resolved = b.defaultField
	}
	column := resolved
	if col, ok := b.catalog.Lookup(resolved); ok {
		column = col.DBName
	}

	direction := "DESC"
	if strings.EqualFold(order, "ASC") {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction), nil
}
