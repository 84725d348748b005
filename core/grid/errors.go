package grid

import "errors"

// Error kinds surfaced by the translation engine. Everything else the
// engine encounters in untrusted input degrades silently: unknown
// filter fields drop their group, unknown condition kinds drop the
// condition, unknown sort fields fall back to the configured default.
var (
	// ErrCatalogMissing reports a build attempt against an unconfigured
	// column catalog. Fatal to the current build call, never retried.
	ErrCatalogMissing = errors.New("grid: column catalog is not configured")

	// ErrInvalidSortOrder reports an unrecognized order on the strict
	// SortSpec value object. Raised at assignment time, not at use time.
	ErrInvalidSortOrder = errors.New("grid: invalid sort order")
)
