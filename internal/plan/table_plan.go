package plan

import (
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/relation"
)

var (
	_ Plan = (*TablePlan)(nil)
)

// TablePlan is the Plan for a base table.
type TablePlan struct {
	rel *relation.Relation
}

func NewTablePlan(tableName string, catalog *metadata.Catalog) (*TablePlan, error) {
	rel, err := catalog.Get(tableName)
	if err != nil {
		return nil, err
	}
	return &TablePlan{
		rel: rel,
	}, nil
}

func (p *TablePlan) Open() (*relation.Relation, error) {
	return p.rel, nil
}

func (p *TablePlan) Columns() []string {
	return p.rel.Columns()
}

func (p *TablePlan) String() string {
	return "Table(" + p.rel.Name() + ")"
}
