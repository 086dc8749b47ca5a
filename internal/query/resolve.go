package query

import (
	"github.com/yashagw/relcore/internal/value"
)

// SubqueryResolver evaluates nested statements on behalf of ResolveSubqueries.
type SubqueryResolver interface {
	// Scalar evaluates a subquery that is used as a single value.
	Scalar(sq *Subquery) (value.Value, error)
	// List evaluates a subquery used as the body of an IN list.
	List(sq *Subquery) ([]value.Value, error)
}

// HasSubquery reports whether the condition still contains a nested SELECT.
func HasSubquery(c Condition) bool {
	found := false
	walkExpressions(c, func(e Expression) {
		if _, ok := e.(*Subquery); ok {
			found = true
		}
	})
	return found
}

// Aggregates lists the distinct aggregate calls a condition refers to, in
// order of appearance.
func Aggregates(c Condition) []Aggregate {
	var out []Aggregate
	seen := map[string]bool{}
	walkExpressions(c, func(e Expression) {
		ref, ok := e.(*AggregateRef)
		if !ok || seen[ref.agg.Label()] {
			return
		}
		seen[ref.agg.Label()] = true
		out = append(out, ref.agg)
	})
	return out
}

// ResolveSubqueries returns a copy of c in which every subquery has been
// replaced by constants: a single value where an operand is expected, or
// the list of values for IN (SELECT ...). The input is not modified.
func ResolveSubqueries(c Condition, r SubqueryResolver) (Condition, error) {
	switch n := c.(type) {
	case *Term:
		left, err := resolveScalar(n.left, r)
		if err != nil {
			return nil, err
		}
		right, err := resolveScalar(n.right, r)
		if err != nil {
			return nil, err
		}
		return NewTerm(left, n.op, right), nil
	case *Predicate:
		terms, err := resolveAll(n.terms, r)
		if err != nil {
			return nil, err
		}
		return &Predicate{terms: terms}, nil
	case *Disjunction:
		terms, err := resolveAll(n.terms, r)
		if err != nil {
			return nil, err
		}
		return &Disjunction{terms: terms}, nil
	case *Negation:
		inner, err := ResolveSubqueries(n.inner, r)
		if err != nil {
			return nil, err
		}
		return NewNegation(inner), nil
	case *Truthy:
		expr, err := resolveScalar(n.expr, r)
		if err != nil {
			return nil, err
		}
		return NewTruthy(expr), nil
	case *Like:
		expr, err := resolveScalar(n.expr, r)
		if err != nil {
			return nil, err
		}
		return NewLike(expr, n.pattern, n.negated), nil
	case *InList:
		expr, err := resolveScalar(n.expr, r)
		if err != nil {
			return nil, err
		}
		var list []Expression
		for _, e := range n.list {
			sq, ok := e.(*Subquery)
			if !ok {
				list = append(list, e)
				continue
			}
			vals, err := r.List(sq)
			if err != nil {
				return nil, err
			}
			for _, v := range vals {
				list = append(list, NewConstant(v))
			}
		}
		return NewInList(expr, list, n.negated), nil
	default:
		return c, nil
	}
}

func resolveAll(terms []Condition, r SubqueryResolver) ([]Condition, error) {
	out := make([]Condition, len(terms))
	for i, t := range terms {
		resolved, err := ResolveSubqueries(t, r)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

func resolveScalar(e Expression, r SubqueryResolver) (Expression, error) {
	sq, ok := e.(*Subquery)
	if !ok {
		return e, nil
	}
	v, err := r.Scalar(sq)
	if err != nil {
		return nil, err
	}
	return NewConstant(v), nil
}

func walkExpressions(c Condition, fn func(Expression)) {
	switch n := c.(type) {
	case *Term:
		fn(n.left)
		fn(n.right)
	case *Predicate:
		for _, t := range n.terms {
			walkExpressions(t, fn)
		}
	case *Disjunction:
		for _, t := range n.terms {
			walkExpressions(t, fn)
		}
	case *Negation:
		walkExpressions(n.inner, fn)
	case *Truthy:
		fn(n.expr)
	case *Like:
		fn(n.expr)
	case *InList:
		fn(n.expr)
		for _, e := range n.list {
			fn(e)
		}
	}
}
