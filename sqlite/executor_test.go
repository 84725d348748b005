package sqlite

import (
	"database/sql"
	"testing"

	"github.com/asaidimu/go-datagrid/core/catalog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNamedArgs(t *testing.T) {
	args := namedArgs(map[string]any{":p0": "x", ":p1": int64(7)})
	assert.Len(t, args, 2)

	byName := map[string]any{}
	for _, arg := range args {
		named, ok := arg.(sql.NamedArg)
		assert.True(t, ok)
		byName[named.Name] = named.Value
	}
	assert.Equal(t, map[string]any{"p0": "x", "p1": int64(7)}, byName)
}

func TestConvertValue(t *testing.T) {
	cat := catalog.New(map[string]catalog.Column{
		"name":     {DBName: "full_name", Type: catalog.ColumnTypeText},
		"age":      {DBName: "age", Type: catalog.ColumnTypeInteger},
		"score":    {DBName: "score", Type: catalog.ColumnTypeReal},
		"isActive": {DBName: "is_active", Type: catalog.ColumnTypeBoolean},
	})
	logger := zap.NewNop()

	tests := []struct {
		name   string
		column string
		value  any
		want   any
	}{
		{name: "boolean stored as integer", column: "is_active", value: int64(1), want: true},
		{name: "boolean zero is false", column: "is_active", value: int64(0), want: false},
		{name: "text stored as bytes", column: "full_name", value: []byte("Ada"), want: "Ada"},
		{name: "integer stored as float", column: "age", value: float64(36), want: int64(36)},
		{name: "real stored as integer", column: "score", value: int64(4), want: float64(4)},
		{name: "already correct type passes through", column: "age", value: int64(36), want: int64(36)},
		{name: "uncataloged column passes through", column: "rowid", value: int64(9), want: int64(9)},
		{name: "nil stays nil", column: "age", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertValue(logger, cat, tt.column, tt.value))
		})
	}
}
