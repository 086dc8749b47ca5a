package query

import (
	"regexp"
	"strings"

	"github.com/yashagw/relcore/internal/value"
)

// Condition is a boolean expression over a row.
type Condition interface {
	// IsSatisfied reports whether the row matches. An error means the
	// condition could not be evaluated for this row at all.
	IsSatisfied(row Row) (bool, error)
	String() string
}

var (
	_ Condition = (*Term)(nil)
	_ Condition = (*Predicate)(nil)
	_ Condition = (*Disjunction)(nil)
	_ Condition = (*Negation)(nil)
	_ Condition = (*BoolConstant)(nil)
	_ Condition = (*Truthy)(nil)
	_ Condition = (*InList)(nil)
	_ Condition = (*Like)(nil)
)

// Predicate represents a conjunction of conditions (ANDed together).
type Predicate struct {
	terms []Condition
}

// NewPredicate creates a new Predicate with a single condition.
func NewPredicate(c Condition) *Predicate {
	return &Predicate{
		terms: []Condition{c},
	}
}

// ConjunctWith adds all conditions from another predicate to this one (AND operation).
func (p *Predicate) ConjunctWith(other *Predicate) {
	p.terms = append(p.terms, other.terms...)
}

// IsSatisfied checks if all conditions hold, stopping at the first false one.
func (p *Predicate) IsSatisfied(row Row) (bool, error) {
	for _, t := range p.terms {
		satisfied, err := t.IsSatisfied(row)
		if err != nil {
			return false, err
		}
		if !satisfied {
			return false, nil
		}
	}
	return true, nil
}

// String returns a string representation of the predicate.
func (p *Predicate) String() string {
	return joinConditions(p.terms, " and ")
}

// GetTerms returns a copy of the conditions slice
func (p *Predicate) GetTerms() []Condition {
	result := make([]Condition, len(p.terms))
	copy(result, p.terms)
	return result
}

// Disjunction is a set of conditions ORed together.
type Disjunction struct {
	terms []Condition
}

// NewDisjunction creates a disjunction of the given conditions.
func NewDisjunction(terms ...Condition) *Disjunction {
	return &Disjunction{terms: terms}
}

func (d *Disjunction) IsSatisfied(row Row) (bool, error) {
	for _, t := range d.terms {
		satisfied, err := t.IsSatisfied(row)
		if err != nil {
			return false, err
		}
		if satisfied {
			return true, nil
		}
	}
	return false, nil
}

func (d *Disjunction) GetTerms() []Condition {
	result := make([]Condition, len(d.terms))
	copy(result, d.terms)
	return result
}

func (d *Disjunction) String() string {
	return "(" + joinConditions(d.terms, " or ") + ")"
}

// Negation inverts a condition.
type Negation struct {
	inner Condition
}

func NewNegation(inner Condition) *Negation {
	return &Negation{inner: inner}
}

func (n *Negation) Inner() Condition {
	return n.inner
}

func (n *Negation) IsSatisfied(row Row) (bool, error) {
	ok, err := n.inner.IsSatisfied(row)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n *Negation) String() string {
	if _, ok := n.inner.(*Predicate); ok {
		return "not (" + n.inner.String() + ")"
	}
	return "not " + n.inner.String()
}

// BoolConstant is a bare true or false.
type BoolConstant struct {
	val bool
}

func NewBoolConstant(val bool) *BoolConstant {
	return &BoolConstant{val: val}
}

func (b *BoolConstant) IsSatisfied(Row) (bool, error) {
	return b.val, nil
}

func (b *BoolConstant) String() string {
	if b.val {
		return "true"
	}
	return "false"
}

// Truthy uses an operand on its own as a condition: non-zero numbers and
// non-empty strings match.
type Truthy struct {
	expr Expression
}

func NewTruthy(expr Expression) *Truthy {
	return &Truthy{expr: expr}
}

func (t *Truthy) Expr() Expression {
	return t.expr
}

func (t *Truthy) IsSatisfied(row Row) (bool, error) {
	v, err := t.expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

func (t *Truthy) String() string {
	return t.expr.String()
}

// InList matches when the operand loosely equals any list element.
type InList struct {
	expr    Expression
	list    []Expression
	negated bool
}

func NewInList(expr Expression, list []Expression, negated bool) *InList {
	return &InList{expr: expr, list: list, negated: negated}
}

func (in *InList) Expr() Expression {
	return in.expr
}

func (in *InList) List() []Expression {
	result := make([]Expression, len(in.list))
	copy(result, in.list)
	return result
}

func (in *InList) Negated() bool {
	return in.negated
}

func (in *InList) IsSatisfied(row Row) (bool, error) {
	v, err := in.expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	for _, e := range in.list {
		candidate, err := e.Evaluate(row)
		if err != nil {
			return false, err
		}
		if value.Equal(v, candidate) {
			return !in.negated, nil
		}
	}
	return in.negated, nil
}

func (in *InList) String() string {
	parts := make([]string, len(in.list))
	for i, e := range in.list {
		parts[i] = e.String()
	}
	op := " in ("
	if in.negated {
		op = " not in ("
	}
	return in.expr.String() + op + strings.Join(parts, ", ") + ")"
}

// Like is a case-insensitive SQL pattern match: % matches any run of
// characters and _ exactly one. The whole value has to match.
type Like struct {
	expr    Expression
	pattern string
	negated bool
	re      *regexp.Regexp
}

func NewLike(expr Expression, pattern string, negated bool) *Like {
	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return &Like{
		expr:    expr,
		pattern: pattern,
		negated: negated,
		re:      regexp.MustCompile(sb.String()),
	}
}

func (l *Like) Expr() Expression {
	return l.expr
}

func (l *Like) Pattern() string {
	return l.pattern
}

func (l *Like) Negated() bool {
	return l.negated
}

func (l *Like) IsSatisfied(row Row) (bool, error) {
	v, err := l.expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	return l.re.MatchString(v.String()) != l.negated, nil
}

func (l *Like) String() string {
	op := " like '"
	if l.negated {
		op = " not like '"
	}
	return l.expr.String() + op + l.pattern + "'"
}

func joinConditions(terms []Condition, sep string) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
