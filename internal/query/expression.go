package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/value"
)

var (
	ErrUnknownField       = errors.New("unknown field")
	ErrUnresolvedSubquery = errors.New("subquery has not been resolved")
)

// Expression is an operand in a condition: a constant, a field, an aggregate
// result or a subquery.
type Expression interface {
	// Evaluate returns the value of the expression for the given row.
	Evaluate(row Row) (value.Value, error)
	String() string
}

var (
	_ Expression = (*Constant)(nil)
	_ Expression = (*FieldRef)(nil)
	_ Expression = (*AggregateRef)(nil)
	_ Expression = (*Subquery)(nil)
)

// Constant is a literal value.
type Constant struct {
	val value.Value
}

// NewConstant creates a new Constant expression.
func NewConstant(val value.Value) *Constant {
	return &Constant{val: val}
}

// Value returns the literal.
func (c *Constant) Value() value.Value {
	return c.val
}

func (c *Constant) Evaluate(Row) (value.Value, error) {
	return c.val, nil
}

func (c *Constant) String() string {
	if c.val.IsNumber() {
		return c.val.String()
	}
	return "'" + strings.ReplaceAll(c.val.String(), "'", "''") + "'"
}

// FieldRef names a column of the row being evaluated.
type FieldRef struct {
	name string
}

// NewFieldRef creates a new field reference.
func NewFieldRef(name string) *FieldRef {
	return &FieldRef{name: name}
}

// Name returns the referenced field name as written.
func (f *FieldRef) Name() string {
	return f.name
}

func (f *FieldRef) Evaluate(row Row) (value.Value, error) {
	v, ok := row.Lookup(f.name)
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownField, f.name)
	}
	return v, nil
}

func (f *FieldRef) String() string {
	return f.name
}

// AggregateRef reads an already computed aggregate out of a grouped row,
// e.g. COUNT(*) inside HAVING.
type AggregateRef struct {
	agg Aggregate
}

// NewAggregateRef creates a reference to an aggregate result.
func NewAggregateRef(agg Aggregate) *AggregateRef {
	return &AggregateRef{agg: agg}
}

// Aggregate returns the referenced aggregate.
func (a *AggregateRef) Aggregate() Aggregate {
	return a.agg
}

func (a *AggregateRef) Evaluate(row Row) (value.Value, error) {
	v, ok := row.Lookup(a.agg.Label())
	if !ok {
		return value.Value{}, fmt.Errorf("%w: %s", ErrUnknownField, a.agg.Label())
	}
	return v, nil
}

func (a *AggregateRef) String() string {
	return a.agg.Label()
}

// Subquery is a nested SELECT. It has to be resolved into constants
// (see ResolveSubqueries) before the enclosing condition can be evaluated.
type Subquery struct {
	stmt fmt.Stringer
}

// NewSubquery wraps a parsed statement.
func NewSubquery(stmt fmt.Stringer) *Subquery {
	return &Subquery{stmt: stmt}
}

// Statement returns the wrapped statement.
func (s *Subquery) Statement() fmt.Stringer {
	return s.stmt
}

func (s *Subquery) Evaluate(Row) (value.Value, error) {
	return value.Value{}, ErrUnresolvedSubquery
}

func (s *Subquery) String() string {
	return "(" + s.stmt.String() + ")"
}
