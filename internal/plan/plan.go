package plan

import (
	"strings"

	"github.com/yashagw/relcore/internal/relation"
)

// Plan is a node of a query plan. Plans are built once per statement and
// evaluated bottom-up.
type Plan interface {
	// Open evaluates the plan and returns the relation it produces.
	Open() (*relation.Relation, error)
	// Columns returns the names of the output columns.
	Columns() []string
	// String describes the plan tree, one node per line.
	String() string
}

// describe renders a node above its indented child.
func describe(label string, child Plan) string {
	return label + "\n" + indent(child.String())
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
