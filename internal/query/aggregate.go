package query

import (
	"fmt"
	"strings"
)

// AggFunc is one of the supported aggregate functions.
type AggFunc string

const (
	Count AggFunc = "COUNT"
	Sum   AggFunc = "SUM"
	Avg   AggFunc = "AVG"
	Min   AggFunc = "MIN"
	Max   AggFunc = "MAX"
)

// ParseAggFunc recognizes an aggregate function name in any case.
func ParseAggFunc(name string) (AggFunc, bool) {
	switch f := AggFunc(strings.ToUpper(name)); f {
	case Count, Sum, Avg, Min, Max:
		return f, true
	}
	return "", false
}

// Aggregate is one aggregate call of a select list, e.g. SUM(salary).
// Column is "*" for COUNT(*).
type Aggregate struct {
	Func   AggFunc
	Column string
}

// Label is the output column name of the aggregate: FUNC(column), with the
// column lower-cased.
func (a Aggregate) Label() string {
	return fmt.Sprintf("%s(%s)", a.Func, strings.ToLower(a.Column))
}

func (a Aggregate) String() string {
	return a.Label()
}
