package grid

import (
	"fmt"
	"strings"
)

// SortSpec is a strict sort value object. Unlike SortClauseBuilder,
// which interprets untrusted request input leniently, SortSpec rejects
// anything but ASC, DESC or empty at assignment time. Use it where
// explicit validation is wanted, for example in server-side grid
// configuration.
type SortSpec struct {
	field string
	order string
}

// NewSortSpec creates a SortSpec, validating the order immediately.
func NewSortSpec(field, order string) (*SortSpec, error) {
	s := &SortSpec{field: field}
	if err := s.SetOrder(order); err != nil {
		return nil, err
	}
	return s, nil
}

// Field returns the sort field name.
func (s *SortSpec) Field() string {
	return s.field
}

// SetField replaces the sort field name.
func (s *SortSpec) SetField(field string) {
	s.field = field
}

// Order returns the normalized sort order: "ASC", "DESC" or "".
func (s *SortSpec) Order() string {
	return s.order
}

// SetOrder normalizes the order to upper case and accepts only ASC,
// DESC or empty. Any other input fails with ErrInvalidSortOrder and
// leaves the current order unchanged.
func (s *SortSpec) SetOrder(order string) error {
	normalized := strings.ToUpper(order)
	switch normalized {
	case "ASC", "DESC", "":
		s.order = normalized
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortOrder, order)
	}
}
