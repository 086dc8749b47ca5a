package relation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/value"
)

var (
	ErrRowArity        = errors.New("row arity does not match columns")
	ErrColumnNotFound  = errors.New("column not found")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrConditionFormat = errors.New("malformed condition")
	ErrArityMismatch   = errors.New("relations have different numbers of columns")
)

// Relation is a named table: ordered column names and rows aligned to them.
// Operators never modify their inputs; each returns a new Relation.
type Relation struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]value.Value
}

// New creates an empty relation. Column names must be unique, ignoring case.
func New(name string, columns []string) (*Relation, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		key := strings.ToLower(c)
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, c)
		}
		index[key] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Relation{
		name:    name,
		columns: cols,
		index:   index,
	}, nil
}

// FromRows creates a relation and adds every row, failing on the first row
// with the wrong arity.
func FromRows(name string, columns []string, rows [][]value.Value) (*Relation, error) {
	r, err := New(name, columns)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := r.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// derive makes an empty relation that shares nothing with r except the
// column layout. Column names of derived relations may repeat (self joins),
// lookups then resolve to the first match.
func derive(name string, columns []string) *Relation {
	index := make(map[string]int, len(columns))
	for i := len(columns) - 1; i >= 0; i-- {
		index[strings.ToLower(columns[i])] = i
	}
	return &Relation{
		name:    name,
		columns: columns,
		index:   index,
	}
}

func (r *Relation) Name() string {
	return r.name
}

// Columns returns a copy of the column names.
func (r *Relation) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Arity is the number of columns.
func (r *Relation) Arity() int {
	return len(r.columns)
}

// Len is the number of rows.
func (r *Relation) Len() int {
	return len(r.rows)
}

// Row returns a copy of row i.
func (r *Relation) Row(i int) []value.Value {
	row := make([]value.Value, len(r.rows[i]))
	copy(row, r.rows[i])
	return row
}

// Rows returns a copy of all rows.
func (r *Relation) Rows() [][]value.Value {
	rows := make([][]value.Value, len(r.rows))
	for i := range r.rows {
		rows[i] = r.Row(i)
	}
	return rows
}

// AddRow appends a row. The number of values must equal the number of columns.
func (r *Relation) AddRow(values ...value.Value) error {
	if len(values) != len(r.columns) {
		return fmt.Errorf("%w: %s has %d columns, got %d values", ErrRowArity, r.name, len(r.columns), len(values))
	}
	row := make([]value.Value, len(values))
	copy(row, values)
	r.rows = append(r.rows, row)
	return nil
}

// AddStrings appends a row of user input; numeric text becomes a number.
func (r *Relation) AddStrings(values ...string) error {
	row := make([]value.Value, len(values))
	for i, s := range values {
		row[i] = value.Parse(s)
	}
	return r.AddRow(row...)
}

// AddAny appends a row of Go values as produced by database drivers or JSON decoding.
func (r *Relation) AddAny(values ...any) error {
	row := make([]value.Value, len(values))
	for i, raw := range values {
		row[i] = value.FromAny(raw)
	}
	return r.AddRow(row...)
}

// RemoveRow deletes row i. Out of range indexes are ignored.
func (r *Relation) RemoveRow(i int) {
	if i < 0 || i >= len(r.rows) {
		return
	}
	rows := make([][]value.Value, 0, len(r.rows)-1)
	rows = append(rows, r.rows[:i]...)
	r.rows = append(rows, r.rows[i+1:]...)
}

// Clone copies the relation under the name "<name>_copy".
func (r *Relation) Clone() *Relation {
	return r.Rename(r.name + "_copy")
}

// Rename returns a copy of the relation with a new name.
func (r *Relation) Rename(name string) *Relation {
	out := derive(name, r.Columns())
	out.rows = append(out.rows, r.rows...)
	return out
}

// ColumnIndex resolves a column name, ignoring case. Besides an exact match
// a name may refer to a qualified column by its unqualified suffix
// ("id" for "Students.id") as long as that is unambiguous, and a qualified
// name may refer to an unqualified column.
func (r *Relation) ColumnIndex(name string) (int, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if i, ok := r.index[key]; ok {
		return i, nil
	}

	found := -1
	for i, c := range r.columns {
		if strings.HasSuffix(strings.ToLower(c), "."+key) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %s is ambiguous in %s", ErrColumnNotFound, name, r.name)
			}
			found = i
		}
	}
	if found >= 0 {
		return found, nil
	}

	if dot := strings.LastIndexByte(key, '.'); dot >= 0 {
		if i, ok := r.index[key[dot+1:]]; ok {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s in %s", ErrColumnNotFound, name, r.name)
}

// resolve maps column names onto indexes and their declared spelling.
func (r *Relation) resolve(names []string) ([]int, []string, error) {
	idx := make([]int, len(names))
	cols := make([]string, len(names))
	for i, n := range names {
		j, err := r.ColumnIndex(n)
		if err != nil {
			return nil, nil, err
		}
		idx[i] = j
		cols[i] = r.columns[j]
	}
	return idx, cols, nil
}

// RowView exposes row i to condition evaluation.
func (r *Relation) RowView(i int) query.Row {
	return rowView{rel: r, row: r.rows[i]}
}

type rowView struct {
	rel *Relation
	row []value.Value
}

func (v rowView) Lookup(name string) (value.Value, bool) {
	i, err := v.rel.ColumnIndex(name)
	if err != nil {
		return value.Value{}, false
	}
	return v.row[i], true
}
