package relation

import (
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/utils"
	"github.com/yashagw/relcore/internal/value"
)

// Join is an equi-join on a condition of the form "Table.Col = Table.Col".
// Output columns are the columns of both sides qualified by their relation
// name. Values match under loose equality, so "20" joins with 20.
//
// Each operand's qualifier is matched against the relation names; when the
// condition names other first, the sides are swapped. Otherwise the left
// operand belongs to r and the right one to other.
func (r *Relation) Join(other *Relation, condition string) (*Relation, error) {
	lq, lc, rq, rc, err := parseJoinCondition(condition)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(lq, r.name) && strings.EqualFold(lq, other.name) && strings.EqualFold(rq, r.name) {
		lq, lc, rq, rc = rq, rc, lq, lc
	}

	li, err := joinColumn(r, lq, lc)
	if err != nil {
		return nil, err
	}
	ri, err := joinColumn(other, rq, rc)
	if err != nil {
		return nil, err
	}

	out := derive(fmt.Sprintf("%s ⋈ %s", r.name, other.name), joinColumns(r, other))

	// Bucket the right side by hash, keeping row order inside each bucket
	// so the output order matches a nested loop over r then other.
	buckets := make(map[uint64][]int, len(other.rows))
	for j, row := range other.rows {
		h := utils.HashValue(row[ri])
		buckets[h] = append(buckets[h], j)
	}
	for _, left := range r.rows {
		for _, j := range buckets[utils.HashValue(left[li])] {
			right := other.rows[j]
			if value.Equal(left[li], right[ri]) {
				out.rows = append(out.rows, concat(left, right))
			}
		}
	}
	return out, nil
}

// joinColumn prefers the fully qualified name so that joining a join result
// picks the right one of two equally named columns.
func joinColumn(r *Relation, table, column string) (int, error) {
	if i, err := r.ColumnIndex(table + "." + column); err == nil {
		return i, nil
	}
	return r.ColumnIndex(column)
}

func parseJoinCondition(condition string) (lq, lc, rq, rc string, err error) {
	if strings.Count(condition, "=") != 1 {
		return "", "", "", "", fmt.Errorf("%w: join needs exactly one Table.Col = Table.Col, got %q", ErrConditionFormat, condition)
	}
	left, right, _ := strings.Cut(condition, "=")
	lq, lc, okL := splitQualified(left)
	rq, rc, okR := splitQualified(right)
	if !okL || !okR {
		return "", "", "", "", fmt.Errorf("%w: join operands must be Table.Col, got %q", ErrConditionFormat, condition)
	}
	return lq, lc, rq, rc, nil
}

func splitQualified(s string) (table, column string, ok bool) {
	s = strings.TrimSpace(s)
	table, column, found := strings.Cut(s, ".")
	if !found || table == "" || column == "" || strings.Contains(column, ".") ||
		strings.ContainsAny(s, " \t") {
		return "", "", false
	}
	return table, column, true
}

func joinColumns(a, b *Relation) []string {
	cols := make([]string, 0, len(a.columns)+len(b.columns))
	for _, c := range a.columns {
		cols = append(cols, a.name+"."+c)
	}
	for _, c := range b.columns {
		cols = append(cols, b.name+"."+c)
	}
	return cols
}

func concat(a, b []value.Value) []value.Value {
	row := make([]value.Value, 0, len(a)+len(b))
	row = append(row, a...)
	return append(row, b...)
}

// NaturalJoin joins on every column name the two relations share, ignoring
// case. The shared columns appear once, in r's position; other's remaining
// columns follow. Without shared columns the result is the cross product.
func (r *Relation) NaturalJoin(other *Relation) *Relation {
	var shared [][2]int
	var rest []int
	for j, c := range other.columns {
		if i, ok := r.index[strings.ToLower(c)]; ok {
			shared = append(shared, [2]int{i, j})
			continue
		}
		rest = append(rest, j)
	}

	cols := r.Columns()
	for _, j := range rest {
		cols = append(cols, other.columns[j])
	}
	out := derive(fmt.Sprintf("%s ⋈ %s", r.name, other.name), cols)

	key := func(row []value.Value, side int) string {
		vals := make([]value.Value, len(shared))
		for k, p := range shared {
			vals[k] = row[p[side]]
		}
		return utils.LooseRowKey(vals)
	}

	buckets := make(map[string][]int, len(other.rows))
	for j, row := range other.rows {
		k := key(row, 1)
		buckets[k] = append(buckets[k], j)
	}
	for _, left := range r.rows {
		for _, j := range buckets[key(left, 0)] {
			right := other.rows[j]
			row := make([]value.Value, 0, len(cols))
			row = append(row, left...)
			for _, c := range rest {
				row = append(row, right[c])
			}
			out.rows = append(out.rows, row)
		}
	}
	return out
}
