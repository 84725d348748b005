// Package grid implements the server-side grid query translation engine.
// It converts untrusted, client-supplied filtering, sorting and paging
// instructions into parameterized SQL fragments, validated against a
// server-defined column catalog. Values never reach the SQL text: every
// comparison binds a named parameter.
package grid

// JoinOperator combines a condition with the preceding condition inside
// a filter group. The operator on the first condition of a group is
// never consulted.
type JoinOperator string

const (
	JoinAnd JoinOperator = "AND"
	JoinOr  JoinOperator = "OR"
)

// ConditionKind is the fixed vocabulary of comparison operators the
// engine supports. Any other value causes the condition to be skipped.
type ConditionKind string

const (
	ConditionContains       ConditionKind = "CONTAINS"
	ConditionNotContains    ConditionKind = "DOES_NOT_CONTAIN"
	ConditionEqual          ConditionKind = "EQUAL"
	ConditionNotEqual       ConditionKind = "NOT_EQUAL"
	ConditionGreaterThan    ConditionKind = "GREATER_THAN"
	ConditionLessThan       ConditionKind = "LESS_THAN"
	ConditionGreaterOrEqual ConditionKind = "GREATER_THAN_OR_EQUAL"
	ConditionLessOrEqual    ConditionKind = "LESS_THAN_OR_EQUAL"
	ConditionStartsWith     ConditionKind = "STARTS_WITH"
	ConditionEndsWith       ConditionKind = "ENDS_WITH"
	ConditionNull           ConditionKind = "NULL"
	ConditionNotNull        ConditionKind = "NOT_NULL"
)

// FilterCondition is a single comparison within a filter group.
type FilterCondition struct {
	Kind  ConditionKind `json:"kind"`
	Value string        `json:"value"`
	Join  JoinOperator  `json:"join"`
}

// FilterGroup is an ordered set of conditions on one catalog field,
// combined into one parenthesized boolean expression. Multiple groups
// may target the same field.
type FilterGroup struct {
	Field   string            `json:"field"`
	Filters []FilterCondition `json:"filters"`
}

// SortRequest is the requested sort field/order pair. Both parts must
// be present for ordering to apply.
type SortRequest struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// PagingSpec describes offset-based paging. The page number is 0-based;
// absence of either attribute means "no paging", not "page 0".
type PagingSpec struct {
	Size   *int `json:"size,omitempty"`
	Number *int `json:"number,omitempty"`
}

// Options is the aggregate request threaded through the three clause
// builders. It is constructed fresh per request from untrusted input
// and owned by a single query-building pass.
type Options struct {
	Groups []FilterGroup `json:"groups,omitempty"`
	Sort   *SortRequest  `json:"sort,omitempty"`
	Paging *PagingSpec   `json:"paging,omitempty"`
}

// OptionsBuilder provides a fluent API for assembling Options, mostly
// useful in tests and server-side callers that construct grid requests
// programmatically.
type OptionsBuilder struct {
	opts Options
}

// NewOptionsBuilder creates a new, empty options builder.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{}
}

// Build returns the assembled Options.
func (b *OptionsBuilder) Build() Options {
	return b.opts
}

// SortBy sets the requested sort field and order.
func (b *OptionsBuilder) SortBy(field, order string) *OptionsBuilder {
	b.opts.Sort = &SortRequest{Field: field, Order: order}
	return b
}

// Page sets the page size and 0-based page number.
func (b *OptionsBuilder) Page(size, number int) *OptionsBuilder {
	b.opts.Paging = &PagingSpec{Size: &size, Number: &number}
	return b
}

// Filter begins a filter group on the given field.
func (b *OptionsBuilder) Filter(field string) *GroupBuilder {
	return &GroupBuilder{
		parent: b,
		group:  FilterGroup{Field: field},
	}
}

// GroupBuilder accumulates conditions for one filter group. Conditions
// join with AND unless Or is called immediately before them.
type GroupBuilder struct {
	parent   *OptionsBuilder
	group    FilterGroup
	nextJoin JoinOperator
}

// Or makes the next condition join with OR instead of AND.
func (g *GroupBuilder) Or() *GroupBuilder {
	g.nextJoin = JoinOr
	return g
}

func (g *GroupBuilder) add(kind ConditionKind, value string) *GroupBuilder {
	join := g.nextJoin
	if join == "" {
		join = JoinAnd
	}
	g.group.Filters = append(g.group.Filters, FilterCondition{
		Kind:  kind,
		Value: value,
		Join:  join,
	})
	g.nextJoin = ""
	return g
}

// Equal adds an equality condition to the group.
func (g *GroupBuilder) Equal(value string) *GroupBuilder {
	return g.add(ConditionEqual, value)
}

// NotEqual adds a not-equal condition to the group.
func (g *GroupBuilder) NotEqual(value string) *GroupBuilder {
	return g.add(ConditionNotEqual, value)
}

// Contains adds a substring-match condition to the group.
func (g *GroupBuilder) Contains(value string) *GroupBuilder {
	return g.add(ConditionContains, value)
}

// NotContains adds a negative substring-match condition to the group.
func (g *GroupBuilder) NotContains(value string) *GroupBuilder {
	return g.add(ConditionNotContains, value)
}

// GreaterThan adds a greater-than condition to the group.
func (g *GroupBuilder) GreaterThan(value string) *GroupBuilder {
	return g.add(ConditionGreaterThan, value)
}

// LessThan adds a less-than condition to the group.
func (g *GroupBuilder) LessThan(value string) *GroupBuilder {
	return g.add(ConditionLessThan, value)
}

// GreaterOrEqual adds a greater-than-or-equal condition to the group.
func (g *GroupBuilder) GreaterOrEqual(value string) *GroupBuilder {
	return g.add(ConditionGreaterOrEqual, value)
}

// LessOrEqual adds a less-than-or-equal condition to the group.
func (g *GroupBuilder) LessOrEqual(value string) *GroupBuilder {
	return g.add(ConditionLessOrEqual, value)
}

// StartsWith adds a prefix-match condition to the group.
func (g *GroupBuilder) StartsWith(value string) *GroupBuilder {
	return g.add(ConditionStartsWith, value)
}

// EndsWith adds a suffix-match condition to the group.
func (g *GroupBuilder) EndsWith(value string) *GroupBuilder {
	return g.add(ConditionEndsWith, value)
}

// Null adds an IS NULL condition to the group.
func (g *GroupBuilder) Null() *GroupBuilder {
	return g.add(ConditionNull, "")
}

// NotNull adds an IS NOT NULL condition to the group.
func (g *GroupBuilder) NotNull() *GroupBuilder {
	return g.add(ConditionNotNull, "")
}

// End finalizes the group and appends it to the options.
func (g *GroupBuilder) End() *OptionsBuilder {
	g.parent.opts.Groups = append(g.parent.opts.Groups, g.group)
	return g.parent
}
