package relation

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/yashagw/relcore/internal/parse"
	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/utils"
	"github.com/yashagw/relcore/internal/value"
)

// Select keeps the rows for which the condition holds, e.g. "Age > 20".
// A row on which the condition cannot be evaluated, for instance because
// it names a column the relation doesn't have, is treated as not matching.
func (r *Relation) Select(condition string) (*Relation, error) {
	cond, err := parse.ParseCondition(condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConditionFormat, err)
	}
	if query.HasSubquery(cond) {
		return nil, fmt.Errorf("%w: subqueries are not allowed in a selection", ErrConditionFormat)
	}
	out := r.Where(cond)
	out.name = fmt.Sprintf("σ(%s)(%s)", strings.TrimSpace(condition), r.name)
	return out, nil
}

// Where is Select for an already parsed condition.
func (r *Relation) Where(cond query.Condition) *Relation {
	out := derive(fmt.Sprintf("σ(%s)(%s)", cond, r.name), r.Columns())
	for i, row := range r.rows {
		ok, err := cond.IsSatisfied(r.RowView(i))
		if err != nil || !ok {
			continue
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Project keeps the named columns and drops duplicate rows, keeping the
// first occurrence.
func (r *Relation) Project(columns ...string) (*Relation, error) {
	idx, cols, err := r.resolve(columns)
	if err != nil {
		return nil, err
	}
	out := derive(fmt.Sprintf("π(%s)(%s)", strings.Join(cols, ", "), r.name), cols)
	seen := make(map[string]bool, len(r.rows))
	for _, row := range r.rows {
		projected := pick(row, idx)
		key := utils.RowKey(projected)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.rows = append(out.rows, projected)
	}
	return out, nil
}

// Pick keeps the named columns, in the given order, without removing
// duplicates. The relation keeps its name.
func (r *Relation) Pick(columns ...string) (*Relation, error) {
	idx, cols, err := r.resolve(columns)
	if err != nil {
		return nil, err
	}
	out := derive(r.name, cols)
	for _, row := range r.rows {
		out.rows = append(out.rows, pick(row, idx))
	}
	return out, nil
}

func pick(row []value.Value, idx []int) []value.Value {
	out := make([]value.Value, len(idx))
	for i, j := range idx {
		out[i] = row[j]
	}
	return out
}

// OrderBy sorts rows by a column. Two values that both read as numbers
// compare numerically, anything else compares as text using the root
// collation. The sort is stable.
func (r *Relation) OrderBy(column string, desc bool) (*Relation, error) {
	col, err := r.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	out := derive(r.name, r.Columns())
	out.rows = append(out.rows, r.rows...)

	coll := collate.New(language.Und)
	sort.SliceStable(out.rows, func(i, j int) bool {
		c := compareForSort(coll, out.rows[i][col], out.rows[j][col])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func compareForSort(coll *collate.Collator, a, b value.Value) int {
	fa, okA := a.AsNumber()
	fb, okB := b.AsNumber()
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return coll.CompareString(a.String(), b.String())
}

// Limit keeps the first n rows. A negative n keeps everything.
func (r *Relation) Limit(n int) *Relation {
	out := derive(r.name, r.Columns())
	if n < 0 || n > len(r.rows) {
		n = len(r.rows)
	}
	out.rows = append(out.rows, r.rows[:n]...)
	return out
}

func (r *Relation) checkArity(other *Relation) error {
	if len(r.columns) != len(other.columns) {
		return fmt.Errorf("%w: %s has %d, %s has %d", ErrArityMismatch, r.name, len(r.columns), other.name, len(other.columns))
	}
	return nil
}

func rowKeys(r *Relation) map[string]bool {
	keys := make(map[string]bool, len(r.rows))
	for _, row := range r.rows {
		keys[utils.RowKey(row)] = true
	}
	return keys
}

// Union returns the rows of r followed by the rows of other that are not
// already present. Duplicates are removed; columns are taken from r.
func (r *Relation) Union(other *Relation) (*Relation, error) {
	if err := r.checkArity(other); err != nil {
		return nil, err
	}
	out := derive(fmt.Sprintf("%s ∪ %s", r.name, other.name), r.Columns())
	seen := make(map[string]bool, len(r.rows)+len(other.rows))
	for _, rows := range [][][]value.Value{r.rows, other.rows} {
		for _, row := range rows {
			key := utils.RowKey(row)
			if seen[key] {
				continue
			}
			seen[key] = true
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Difference returns the rows of r that do not appear in other.
func (r *Relation) Difference(other *Relation) (*Relation, error) {
	if err := r.checkArity(other); err != nil {
		return nil, err
	}
	out := derive(fmt.Sprintf("%s − %s", r.name, other.name), r.Columns())
	exclude := rowKeys(other)
	for _, row := range r.rows {
		if !exclude[utils.RowKey(row)] {
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Intersect returns the distinct rows of r that also appear in other.
func (r *Relation) Intersect(other *Relation) (*Relation, error) {
	if err := r.checkArity(other); err != nil {
		return nil, err
	}
	out := derive(fmt.Sprintf("%s ∩ %s", r.name, other.name), r.Columns())
	keep := rowKeys(other)
	seen := make(map[string]bool)
	for _, row := range r.rows {
		key := utils.RowKey(row)
		if keep[key] && !seen[key] {
			seen[key] = true
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// SameRows reports whether both relations hold the same set of rows,
// ignoring order and duplicates.
func (r *Relation) SameRows(other *Relation) bool {
	if len(r.columns) != len(other.columns) {
		return false
	}
	a, b := rowKeys(r), rowKeys(other)
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
