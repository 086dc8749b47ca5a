package query

import (
	"fmt"

	"github.com/yashagw/relcore/internal/value"
)

// Operator is a comparison operator.
type Operator string

const (
	OpEq Operator = "="
	OpNe Operator = "!="
	OpLt Operator = "<"
	OpGt Operator = ">"
	OpLe Operator = "<="
	OpGe Operator = ">="
)

// ParseOperator maps the operator spellings accepted in conditions,
// including "<>" and "==", onto an Operator.
func ParseOperator(s string) (Operator, bool) {
	switch s {
	case "=", "==":
		return OpEq, true
	case "!=", "<>":
		return OpNe, true
	case "<":
		return OpLt, true
	case ">":
		return OpGt, true
	case "<=":
		return OpLe, true
	case ">=":
		return OpGe, true
	}
	return "", false
}

// Apply compares two values with the operator. Equality is loose. Ordering
// is numeric when both sides read as numbers and lexicographic when neither
// does; text never orders against a number, so such comparisons are false.
func (op Operator) Apply(l, r value.Value) bool {
	switch op {
	case OpLt, OpGt, OpLe, OpGe:
		_, okL := l.AsNumber()
		_, okR := r.AsNumber()
		if okL != okR {
			return false
		}
	}
	switch op {
	case OpEq:
		return value.Equal(l, r)
	case OpNe:
		return !value.Equal(l, r)
	case OpLt:
		return value.Compare(l, r) < 0
	case OpGt:
		return value.Compare(l, r) > 0
	case OpLe:
		return value.Compare(l, r) <= 0
	case OpGe:
		return value.Compare(l, r) >= 0
	}
	return false
}

// Term represents a comparison between two expressions
// (e.g., field = constant, field > field, COUNT(*) > 1).
type Term struct {
	left  Expression
	op    Operator
	right Expression
}

// NewTerm creates a new Term.
func NewTerm(left Expression, op Operator, right Expression) *Term {
	return &Term{
		left:  left,
		op:    op,
		right: right,
	}
}

// String returns a string representation of the term
func (t *Term) String() string {
	return fmt.Sprintf("%s %s %s", t.left.String(), t.op, t.right.String())
}

// IsSatisfied checks if the term is true for the given row.
func (t *Term) IsSatisfied(row Row) (bool, error) {
	lhsVal, err := t.left.Evaluate(row)
	if err != nil {
		return false, err
	}
	rhsVal, err := t.right.Evaluate(row)
	if err != nil {
		return false, err
	}
	return t.op.Apply(lhsVal, rhsVal), nil
}

func (t *Term) GetLHS() Expression {
	return t.left
}

func (t *Term) GetRHS() Expression {
	return t.right
}

func (t *Term) Op() Operator {
	return t.op
}
