package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestPagingClauseBuilder_Build(t *testing.T) {
	tests := []struct {
		name   string
		style  PagingStyle
		paging *PagingSpec
		want   string
	}{
		{
			name:   "offset is size times 0-based page number",
			paging: &PagingSpec{Size: intPtr(25), Number: intPtr(2)},
			want:   "OFFSET 50 ROWS FETCH NEXT 25 ROWS ONLY",
		},
		{
			name:   "page zero starts at offset zero",
			paging: &PagingSpec{Size: intPtr(10), Number: intPtr(0)},
			want:   "OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY",
		},
		{
			name:   "limit-offset style",
			style:  PagingLimitOffset,
			paging: &PagingSpec{Size: intPtr(25), Number: intPtr(2)},
			want:   "LIMIT 25 OFFSET 50",
		},
		{
			name:   "nil spec means no paging",
			paging: nil,
			want:   "",
		},
		{
			name:   "missing size means no paging",
			paging: &PagingSpec{Number: intPtr(2)},
			want:   "",
		},
		{
			name:   "missing number means no paging, not page zero",
			paging: &PagingSpec{Size: intPtr(25)},
			want:   "",
		},
		{
			name:   "page size is not clamped",
			paging: &PagingSpec{Size: intPtr(1000000), Number: intPtr(1)},
			want:   "OFFSET 1000000 ROWS FETCH NEXT 1000000 ROWS ONLY",
		},
	}

	cat := testCatalog()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewPagingClauseBuilder(cat, tt.style)
			got, err := b.Build(tt.paging)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPagingClauseBuilder_MissingCatalog(t *testing.T) {
	b := NewPagingClauseBuilder(nil, PagingOffsetFetch)
	got, err := b.Build(&PagingSpec{Size: intPtr(10), Number: intPtr(0)})
	assert.ErrorIs(t, err, ErrCatalogMissing)
	assert.Equal(t, "", got)
}
