package plan

import (
	"strings"

	"github.com/yashagw/relcore/internal/relation"
)

var (
	_ Plan = (*ProjectPlan)(nil)
)

// ProjectPlan is the Plan for the SELECT list. Unlike the relational
// projection it keeps duplicate rows.
type ProjectPlan struct {
	p      Plan
	fields []string
}

func NewProjectPlan(p Plan, fields []string) *ProjectPlan {
	return &ProjectPlan{
		p:      p,
		fields: fields,
	}
}

func (pp *ProjectPlan) Open() (*relation.Relation, error) {
	rel, err := pp.p.Open()
	if err != nil {
		return nil, err
	}
	return rel.Pick(pp.fields...)
}

func (pp *ProjectPlan) Columns() []string {
	return pp.fields
}

func (pp *ProjectPlan) String() string {
	return describe("Project("+strings.Join(pp.fields, ", ")+")", pp.p)
}
