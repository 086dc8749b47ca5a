package plan

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/relation"
	"github.com/yashagw/relcore/internal/value"
)

var (
	_ Plan = (*AggregatePlan)(nil)
	_ Plan = (*GroupPlan)(nil)
)

// AggregatePlan collapses its input into a single row of aggregate values.
type AggregatePlan struct {
	p    Plan
	aggs []query.Aggregate
}

func NewAggregatePlan(p Plan, aggs []query.Aggregate) *AggregatePlan {
	return &AggregatePlan{
		p:    p,
		aggs: aggs,
	}
}

func (ap *AggregatePlan) Open() (*relation.Relation, error) {
	rel, err := ap.p.Open()
	if err != nil {
		return nil, err
	}
	all := make([]int, rel.Len())
	for i := range all {
		all[i] = i
	}
	row, err := aggregateRow(rel, all, ap.aggs)
	if err != nil {
		return nil, err
	}
	return relation.FromRows(rel.Name(), ap.Columns(), [][]value.Value{row})
}

func (ap *AggregatePlan) Columns() []string {
	return labels(ap.aggs)
}

func (ap *AggregatePlan) String() string {
	return describe("Aggregate("+strings.Join(labels(ap.aggs), ", ")+")", ap.p)
}

// GroupPlan partitions its input by one column and computes the aggregates
// per group. Groups come out in order of first appearance; the output has
// the grouping column followed by one column per aggregate.
type GroupPlan struct {
	p     Plan
	field string
	aggs  []query.Aggregate
}

func NewGroupPlan(p Plan, field string, aggs []query.Aggregate) *GroupPlan {
	return &GroupPlan{
		p:     p,
		field: field,
		aggs:  aggs,
	}
}

func (gp *GroupPlan) Open() (*relation.Relation, error) {
	rel, err := gp.p.Open()
	if err != nil {
		return nil, err
	}
	col, err := rel.ColumnIndex(gp.field)
	if err != nil {
		return nil, err
	}

	// Group on the display form so 20 and "20" fall in the same group
	var keys []string
	first := map[string]value.Value{}
	members := map[string][]int{}
	for i := 0; i < rel.Len(); i++ {
		v := rel.Row(i)[col]
		k := v.String()
		if _, ok := members[k]; !ok {
			keys = append(keys, k)
			first[k] = v
		}
		members[k] = append(members[k], i)
	}

	out, err := relation.New(rel.Name(), gp.Columns())
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		row, err := aggregateRow(rel, members[k], gp.aggs)
		if err != nil {
			return nil, err
		}
		if err := out.AddRow(append([]value.Value{first[k]}, row...)...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (gp *GroupPlan) Columns() []string {
	return append([]string{gp.field}, labels(gp.aggs)...)
}

func (gp *GroupPlan) String() string {
	label := "Group(" + gp.field
	if len(gp.aggs) > 0 {
		label += "; " + strings.Join(labels(gp.aggs), ", ")
	}
	return describe(label+")", gp.p)
}

func labels(aggs []query.Aggregate) []string {
	out := make([]string, len(aggs))
	for i, a := range aggs {
		out[i] = a.Label()
	}
	return out
}

func aggregateRow(rel *relation.Relation, rows []int, aggs []query.Aggregate) ([]value.Value, error) {
	out := make([]value.Value, len(aggs))
	for i, a := range aggs {
		v, err := aggregate(rel, rows, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// aggregate computes one aggregate over the given rows of rel.
//
// COUNT counts rows whatever its argument. SUM and AVG treat values that
// don't read as numbers as 0; AVG is rendered with two decimals. MIN and MAX
// consider numeric values only and are 0 when there are none.
func aggregate(rel *relation.Relation, rows []int, a query.Aggregate) (value.Value, error) {
	if a.Func == query.Count {
		return value.Int(len(rows)), nil
	}

	col, err := rel.ColumnIndex(a.Column)
	if err != nil {
		return value.Value{}, err
	}

	switch a.Func {
	case query.Sum, query.Avg:
		sum := decimal.Zero
		for _, i := range rows {
			f, ok := rel.Row(i)[col].AsNumber()
			if ok {
				sum = sum.Add(decimal.NewFromFloat(f))
			}
		}
		if a.Func == query.Sum {
			return value.Num(sum.InexactFloat64()), nil
		}
		if len(rows) == 0 {
			return value.Str(decimal.Zero.StringFixed(2)), nil
		}
		return value.Str(sum.Div(decimal.NewFromInt(int64(len(rows)))).StringFixed(2)), nil
	case query.Min, query.Max:
		var best float64
		found := false
		for _, i := range rows {
			f, ok := rel.Row(i)[col].AsNumber()
			if !ok {
				continue
			}
			if !found || (a.Func == query.Min && f < best) || (a.Func == query.Max && f > best) {
				best = f
				found = true
			}
		}
		return value.Num(best), nil
	}
	return value.Value{}, nil
}
