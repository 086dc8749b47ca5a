package relation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"
)

// Records is the relation as a header row followed by one record per row.
func (r *Relation) Records() [][]string {
	records := make([][]string, 0, len(r.rows)+1)
	records = append(records, r.Columns())
	for _, row := range r.rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.String()
		}
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes Records as CSV.
func (r *Relation) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Records()); err != nil {
		return fmt.Errorf("write %s as csv: %w", r.name, err)
	}
	return nil
}

// String renders the relation as a boxed text table.
func (r *Relation) String() string {
	s := new(bytes.Buffer)
	w := new(tabwriter.Writer)
	// \xff escapes cell text so tabs inside values don't break alignment
	w.Init(s, 1, 1, 1, ' ', tabwriter.StripEscape)

	for _, c := range r.columns {
		fmt.Fprintf(w, "|\t \xff%s\xff ", c)
	}
	fmt.Fprintf(w, "\t|\n")
	for _, row := range r.rows {
		for _, v := range row {
			fmt.Fprintf(w, "|\t \xff%s\xff ", v)
		}
		fmt.Fprintf(w, "\t|\n")
	}
	w.Flush()
	return s.String()
}
