package plan

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/yashagw/relcore/internal/relation"
	"github.com/yashagw/relcore/internal/value"
)

// Kind tells a tabular result from a single row of aggregates.
type Kind string

const (
	Tabular   Kind = "table"
	Aggregate Kind = "aggregate"
)

// Result is the outcome of one statement. Tabular results carry Rows;
// aggregate results carry Values, one per column.
type Result struct {
	Kind    Kind            `json:"type"`
	Columns []string        `json:"columns"`
	Rows    [][]value.Value `json:"rows,omitempty"`
	Values  []value.Value   `json:"values,omitempty"`
}

func newResult(kind Kind, rel *relation.Relation) *Result {
	res := &Result{
		Kind:    kind,
		Columns: rel.Columns(),
	}
	if kind == Aggregate && rel.Len() == 1 {
		res.Values = rel.Row(0)
		return res
	}
	res.Kind = Tabular
	res.Rows = rel.Rows()
	if res.Rows == nil {
		res.Rows = [][]value.Value{}
	}
	return res
}

// Len is the number of result rows.
func (r *Result) Len() int {
	if r.Kind == Aggregate {
		return 1
	}
	return len(r.Rows)
}

// Table returns the result rows, aggregate values as the single row.
func (r *Result) Table() [][]value.Value {
	if r.Kind == Aggregate {
		return [][]value.Value{r.Values}
	}
	return r.Rows
}

// ToRelation copies the result into a new relation, e.g. to save it as a table.
func (r *Result) ToRelation(name string) (*relation.Relation, error) {
	return relation.FromRows(name, r.Columns, r.Table())
}

// Records is the result as a header row followed by one record per row.
func (r *Result) Records() [][]string {
	rows := r.Table()
	records := make([][]string, 0, len(rows)+1)
	records = append(records, r.Columns)
	for _, row := range rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.String()
		}
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes Records as CSV.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Records()); err != nil {
		return fmt.Errorf("write result as csv: %w", err)
	}
	return nil
}
