package plan

import (
	"fmt"

	"github.com/yashagw/relcore/internal/relation"
)

var (
	_ Plan = (*SortPlan)(nil)
	_ Plan = (*LimitPlan)(nil)
)

// SortPlan is the Plan for ORDER BY.
type SortPlan struct {
	p     Plan
	field string
	desc  bool
}

func NewSortPlan(p Plan, field string, desc bool) *SortPlan {
	return &SortPlan{
		p:     p,
		field: field,
		desc:  desc,
	}
}

func (sp *SortPlan) Open() (*relation.Relation, error) {
	rel, err := sp.p.Open()
	if err != nil {
		return nil, err
	}
	return rel.OrderBy(sp.field, sp.desc)
}

func (sp *SortPlan) Columns() []string {
	return sp.p.Columns()
}

func (sp *SortPlan) String() string {
	dir := "asc"
	if sp.desc {
		dir = "desc"
	}
	return describe(fmt.Sprintf("Sort(%s %s)", sp.field, dir), sp.p)
}

// LimitPlan is the Plan for LIMIT.
type LimitPlan struct {
	p Plan
	n int
}

func NewLimitPlan(p Plan, n int) *LimitPlan {
	return &LimitPlan{
		p: p,
		n: n,
	}
}

func (lp *LimitPlan) Open() (*relation.Relation, error) {
	rel, err := lp.p.Open()
	if err != nil {
		return nil, err
	}
	return rel.Limit(lp.n), nil
}

func (lp *LimitPlan) Columns() []string {
	return lp.p.Columns()
}

func (lp *LimitPlan) String() string {
	return describe(fmt.Sprintf("Limit(%d)", lp.n), lp.p)
}
