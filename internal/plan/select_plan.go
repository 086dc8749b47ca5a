package plan

import (
	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/relation"
)

var (
	_ Plan = (*SelectPlan)(nil)
)

// SelectPlan is the Plan for a selection (WHERE or HAVING clause). Rows on
// which the condition can't be evaluated are dropped.
type SelectPlan struct {
	p    Plan
	cond query.Condition
}

func NewSelectPlan(p Plan, cond query.Condition) *SelectPlan {
	return &SelectPlan{
		p:    p,
		cond: cond,
	}
}

func (sp *SelectPlan) Open() (*relation.Relation, error) {
	rel, err := sp.p.Open()
	if err != nil {
		return nil, err
	}
	return rel.Where(sp.cond).Rename(rel.Name()), nil
}

func (sp *SelectPlan) Columns() []string {
	return sp.p.Columns()
}

func (sp *SelectPlan) String() string {
	return describe("Select("+sp.cond.String()+")", sp.p)
}
