// Package catalog defines the column whitelist that grid queries are
// validated against. Only fields registered in a Catalog may ever appear
// in generated SQL; everything else is dropped by the builders.
package catalog

import (
	"sort"
)

// ColumnType describes the storage type of a column. It is optional
// metadata: executors use it to convert scanned values, and the entity
// layer uses it to validate values before a save.
type ColumnType string

const (
	ColumnTypeText    ColumnType = "text"    // Text data
	ColumnTypeInteger ColumnType = "integer" // Whole numbers
	ColumnTypeReal    ColumnType = "real"    // Floating point numbers
	ColumnTypeBoolean ColumnType = "boolean" // True/false values
	ColumnTypeTime    ColumnType = "time"    // Timestamps
)

// Column describes a single queryable column: the database name it
// resolves to plus optional type metadata.
type Column struct {
	DBName   string     `json:"dbName"`
	Type     ColumnType `json:"type,omitempty"`
	Required bool       `json:"required,omitempty"`
}

// Catalog maps client-facing field names to database columns. It is the
// authority for "is this field allowed to be queried". A Catalog is
// constructed once per grid configuration and never mutated afterwards,
// so it is safe to share across concurrent query builds without locking.
type Catalog struct {
	columns  map[string]Column
	byDBName map[string]Column
}

// New builds a Catalog from a field-name to column mapping. The input
// map is copied, so later mutation of the argument does not affect the
// catalog.
func New(columns map[string]Column) *Catalog {
	owned := make(map[string]Column, len(columns))
	byDBName := make(map[string]Column, len(columns))
	for field, col := range columns {
		owned[field] = col
		byDBName[col.DBName] = col
	}
	return &Catalog{columns: owned, byDBName: byDBName}
}

// Lookup resolves a client field name to its column definition. A
// missing field is an ordinary outcome, not an error.
func (c *Catalog) Lookup(field string) (Column, bool) {
	col, ok := c.columns[field]
	return col, ok
}

// Has reports whether a client field name is registered.
func (c *Catalog) Has(field string) bool {
	_, ok := c.columns[field]
	return ok
}

// ColumnByDBName resolves a database column name back to its
// definition. Executors use this when scanning result rows.
func (c *Catalog) ColumnByDBName(name string) (Column, bool) {
	col, ok := c.byDBName[name]
	return col, ok
}

// Fields returns the registered client field names in sorted order.
func (c *Catalog) Fields() []string {
	fields := make([]string, 0, len(c.columns))
	for field := range c.columns {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Len returns the number of registered fields.
func (c *Catalog) Len() int {
	return len(c.columns)
}
