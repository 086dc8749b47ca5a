package parserdata

import (
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/query"
)

// Statement is a parsed SELECT or a set operation over two statements.
type Statement interface {
	fmt.Stringer
	statement()
}

var (
	_ Statement = (*QueryData)(nil)
	_ Statement = (*SetOpData)(nil)
)

// QueryData holds a single SELECT: its select list, source table and
// optional WHERE, GROUP BY, HAVING, ORDER BY and LIMIT clauses.
type QueryData struct {
	table      string
	fields     []string
	star       bool
	aggregates []query.Aggregate
	predicate  query.Condition
	groupBy    string
	having     query.Condition
	orderBy    string
	desc       bool
	limit      int
}

// NewQueryData creates a query over table. An empty fields list together
// with no aggregates means SELECT *.
func NewQueryData(table string, fields []string, aggregates []query.Aggregate, predicate query.Condition) *QueryData {
	return &QueryData{
		table:      table,
		fields:     fields,
		star:       len(fields) == 0 && len(aggregates) == 0,
		aggregates: aggregates,
		predicate:  predicate,
		limit:      -1,
	}
}

func (q *QueryData) statement() {}

func (q *QueryData) Table() string {
	return q.table
}

func (q *QueryData) Fields() []string {
	return q.fields
}

// Star reports whether the select list is *.
func (q *QueryData) Star() bool {
	return q.star
}

func (q *QueryData) Aggregates() []query.Aggregate {
	return q.aggregates
}

// Predicate returns the WHERE condition, or nil.
func (q *QueryData) Predicate() query.Condition {
	return q.predicate
}

func (q *QueryData) SetPredicate(c query.Condition) {
	q.predicate = c
}

func (q *QueryData) GroupBy() string {
	return q.groupBy
}

func (q *QueryData) SetGroupBy(field string) {
	q.groupBy = field
}

// Having returns the HAVING condition, or nil.
func (q *QueryData) Having() query.Condition {
	return q.having
}

func (q *QueryData) SetHaving(c query.Condition) {
	q.having = c
}

func (q *QueryData) OrderBy() (field string, desc bool) {
	return q.orderBy, q.desc
}

func (q *QueryData) SetOrderBy(field string, desc bool) {
	q.orderBy = field
	q.desc = desc
}

// Limit returns the LIMIT count, or -1 when there is none.
func (q *QueryData) Limit() int {
	return q.limit
}

func (q *QueryData) SetLimit(n int) {
	q.limit = n
}

func (q *QueryData) String() string {
	var sb strings.Builder
	sb.WriteString("select ")
	if q.star {
		sb.WriteString("*")
	} else {
		items := make([]string, 0, len(q.fields)+len(q.aggregates))
		items = append(items, q.fields...)
		for _, a := range q.aggregates {
			items = append(items, a.Label())
		}
		sb.WriteString(strings.Join(items, ", "))
	}
	sb.WriteString(" from ")
	sb.WriteString(q.table)
	if q.predicate != nil {
		sb.WriteString(" where ")
		sb.WriteString(q.predicate.String())
	}
	if q.groupBy != "" {
		sb.WriteString(" group by ")
		sb.WriteString(q.groupBy)
	}
	if q.having != nil {
		sb.WriteString(" having ")
		sb.WriteString(q.having.String())
	}
	if q.orderBy != "" {
		sb.WriteString(" order by ")
		sb.WriteString(q.orderBy)
		if q.desc {
			sb.WriteString(" desc")
		}
	}
	if q.limit >= 0 {
		fmt.Fprintf(&sb, " limit %d", q.limit)
	}
	return sb.String()
}
