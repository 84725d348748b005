package grid

import (
	"fmt"

	"github.com/asaidimu/go-datagrid/core/catalog"
)

// PagingStyle selects the SQL syntax used for offset-based paging.
type PagingStyle string

const (
	// PagingOffsetFetch emits "OFFSET n ROWS FETCH NEXT m ROWS ONLY".
	PagingOffsetFetch PagingStyle = "offset-fetch"
	// PagingLimitOffset emits "LIMIT m OFFSET n" for engines without
	// FETCH support, such as SQLite.
	PagingLimitOffset PagingStyle = "limit-offset"
)

// PagingClauseBuilder produces paging fragments from page size and
// 0-based page number. It enforces no upper bound on the page size;
// callers wanting denial-of-service protection must clamp it before
// invocation.
type PagingClauseBuilder struct {
	catalog *catalog.Catalog
	style   PagingStyle
}

// NewPagingClauseBuilder creates a paging clause builder. An empty
// style defaults to PagingOffsetFetch.
func NewPagingClauseBuilder(cat *catalog.Catalog, style PagingStyle) *PagingClauseBuilder {
	if style == "" {
		style = PagingOffsetFetch
	}
	return &PagingClauseBuilder{catalog: cat, style: style}
}

// Build returns the paging fragment for the given spec, or the empty
// string when either the size or the number is absent. The offset is
// size * number.
func (b *PagingClauseBuilder) Build(paging *PagingSpec) (string, error) {
	if b.catalog == nil {
		return "", ErrCatalogMissing
	}
	if paging == nil || paging.Size == nil || paging.Number == nil {
		return "", nil
	}

	size := *paging.Size
	offset := size * *paging.Number
	switch b.style {
	case PagingLimitOffset:
		return fmt.Sprintf("LIMIT %d OFFSET %d", size, offset), nil
	default:
		return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, size), nil
	}
}
