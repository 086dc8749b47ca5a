package plan

import (
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/parse/parserdata"
	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/relation"
	"github.com/yashagw/relcore/internal/value"
)

var (
	_ QueryPlanner = (*BasicQueryPlanner)(nil)
)

// BasicQueryPlanner turns a single SELECT into a plan. The stages run in a
// fixed order: WHERE, then either the aggregate row, the grouping with its
// HAVING filter, or ORDER BY, LIMIT and the select list.
type BasicQueryPlanner struct {
	runner StatementRunner
}

func NewBasicQueryPlanner(runner StatementRunner) *BasicQueryPlanner {
	return &BasicQueryPlanner{
		runner: runner,
	}
}

func (p *BasicQueryPlanner) CreatePlan(queryData *parserdata.QueryData, catalog *metadata.Catalog) (Plan, error) {
	tablePlan, err := NewTablePlan(queryData.Table(), catalog)
	if err != nil {
		return nil, err
	}
	rel := tablePlan.rel
	resolver := &subqueryResolver{runner: p.runner, catalog: catalog}

	// Phase 1: WHERE, with nested SELECTs evaluated first
	var plan Plan = tablePlan
	if pred := queryData.Predicate(); pred != nil {
		if len(query.Aggregates(pred)) > 0 {
			return nil, fmt.Errorf("%w: aggregate functions are not allowed in WHERE", ErrUnsupportedQuery)
		}
		pred, err = query.ResolveSubqueries(pred, resolver)
		if err != nil {
			return nil, err
		}
		plan = NewSelectPlan(plan, pred)
	}

	fields, err := declaredNames(rel, queryData.Fields())
	if err != nil {
		return nil, err
	}
	aggs, err := checkAggregates(rel, queryData.Aggregates())
	if err != nil {
		return nil, err
	}

	// Phase 2: grouping or a single aggregate row
	if queryData.GroupBy() != "" {
		return p.groupPlan(plan, rel, queryData, fields, aggs, resolver)
	}
	if queryData.Having() != nil {
		return nil, fmt.Errorf("%w: HAVING requires GROUP BY", ErrUnsupportedQuery)
	}
	if len(aggs) > 0 {
		if len(fields) > 0 {
			return nil, fmt.Errorf("%w: column %s must appear in GROUP BY", ErrUnsupportedQuery, fields[0])
		}
		return NewAggregatePlan(plan, aggs), nil
	}

	// Phase 3: ORDER BY, LIMIT, then the select list
	if field, desc := queryData.OrderBy(); field != "" {
		names, err := declaredNames(rel, []string{field})
		if err != nil {
			return nil, err
		}
		plan = NewSortPlan(plan, names[0], desc)
	}
	if n := queryData.Limit(); n >= 0 {
		plan = NewLimitPlan(plan, n)
	}
	if !queryData.Star() {
		plan = NewProjectPlan(plan, fields)
	}
	return plan, nil
}

// groupPlan builds GROUP BY with an optional HAVING. HAVING may use
// aggregates missing from the select list; those are computed and dropped
// again afterwards. ORDER BY and LIMIT do not apply to grouped results.
func (p *BasicQueryPlanner) groupPlan(plan Plan, rel *relation.Relation, queryData *parserdata.QueryData,
	fields []string, aggs []query.Aggregate, resolver query.SubqueryResolver) (Plan, error) {
	names, err := declaredNames(rel, []string{queryData.GroupBy()})
	if err != nil {
		return nil, err
	}
	group := names[0]
	for _, f := range fields {
		if !strings.EqualFold(f, group) {
			return nil, fmt.Errorf("%w: column %s must appear in GROUP BY", ErrUnsupportedQuery, f)
		}
	}

	all := aggs
	having := queryData.Having()
	if having != nil {
		if _, ok := having.(*query.Term); !ok {
			return nil, fmt.Errorf("%w: HAVING supports a single comparison, got %s", ErrUnsupportedQuery, having)
		}
		having, err = query.ResolveSubqueries(having, resolver)
		if err != nil {
			return nil, err
		}
		all, err = checkAggregates(rel, append(append([]query.Aggregate{}, aggs...), query.Aggregates(having)...))
		if err != nil {
			return nil, err
		}
	}

	plan = NewGroupPlan(plan, group, all)
	if having != nil {
		plan = NewSelectPlan(plan, having)
	}
	if len(all) > len(aggs) {
		plan = NewProjectPlan(plan, append([]string{group}, labels(aggs)...))
	}
	return plan, nil
}

// declaredNames resolves column references to the names the table declares.
func declaredNames(rel *relation.Relation, fields []string) ([]string, error) {
	cols := rel.Columns()
	out := make([]string, len(fields))
	for i, f := range fields {
		j, err := rel.ColumnIndex(f)
		if err != nil {
			return nil, err
		}
		out[i] = cols[j]
	}
	return out, nil
}

// checkAggregates verifies aggregate arguments and drops repeated calls.
func checkAggregates(rel *relation.Relation, aggs []query.Aggregate) ([]query.Aggregate, error) {
	var out []query.Aggregate
	seen := map[string]bool{}
	for _, a := range aggs {
		if a.Column != "*" {
			if _, err := rel.ColumnIndex(a.Column); err != nil {
				return nil, err
			}
		}
		if seen[a.Label()] {
			continue
		}
		seen[a.Label()] = true
		out = append(out, a)
	}
	return out, nil
}

// subqueryResolver evaluates nested SELECTs against the same catalog.
type subqueryResolver struct {
	runner  StatementRunner
	catalog *metadata.Catalog
}

func (r *subqueryResolver) column(sq *query.Subquery) (*relation.Relation, error) {
	stmt, ok := sq.Statement().(parserdata.Statement)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSubquery, sq)
	}
	rel, err := r.runner.Run(stmt, r.catalog)
	if err != nil {
		return nil, fmt.Errorf("subquery %s: %w", sq, err)
	}
	if rel.Arity() != 1 {
		return nil, fmt.Errorf("%w: %s returns %d columns, expected 1", ErrSubquery, sq, rel.Arity())
	}
	return rel, nil
}

// Scalar requires exactly one row.
func (r *subqueryResolver) Scalar(sq *query.Subquery) (value.Value, error) {
	rel, err := r.column(sq)
	if err != nil {
		return value.Value{}, err
	}
	if rel.Len() != 1 {
		return value.Value{}, fmt.Errorf("%w: %s returns %d rows where a single value is expected", ErrSubquery, sq, rel.Len())
	}
	return rel.Row(0)[0], nil
}

func (r *subqueryResolver) List(sq *query.Subquery) ([]value.Value, error) {
	rel, err := r.column(sq)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, rel.Len())
	for i := range out {
		out[i] = rel.Row(i)[0]
	}
	return out, nil
}
