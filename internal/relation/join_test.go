package relation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/relcore/internal/utils"
	"github.com/yashagw/relcore/internal/value"
)

func TestJoin(t *testing.T) {
	s, g := students(t), grades(t)

	out, err := s.Join(g, "Students.ID = Grades.StudentID")
	require.NoError(t, err)
	assert.Equal(t, "Students ⋈ Grades", out.Name())
	assert.Equal(t, []string{
		"Students.ID", "Students.Name", "Students.Age", "Students.Major",
		"Grades.StudentID", "Grades.CourseID", "Grades.Grade",
	}, out.Columns())
	assert.Equal(t, []string{"1", "1", "2", "3", "5", "5"}, column(out, "Students.ID"))
	assert.Equal(t, []string{"CS101", "MATH201", "MATH201", "CS101", "CS101", "PHY101"}, column(out, "CourseID"))

	// operands may be written in either order
	swapped, err := s.Join(g, "Grades.StudentID = Students.ID")
	require.NoError(t, err)
	assert.Equal(t, out.Rows(), swapped.Rows())
}

func TestJoinLooseEquality(t *testing.T) {
	s := students(t)
	g, err := New("Grades", []string{"StudentID", "Grade"})
	require.NoError(t, err)
	require.NoError(t, g.AddAny("4", "A"))
	require.NoError(t, g.AddAny("4.0", "B"))
	require.NoError(t, g.AddAny("four", "C"))

	out, err := s.Join(g, "Students.ID = Grades.StudentID")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, column(out, "Grade"))
}

func TestJoinErrors(t *testing.T) {
	s, g := students(t), grades(t)

	for _, cond := range []string{
		"Students.ID == Grades.StudentID",
		"ID = StudentID",
		"Students.ID = ",
		"Students.ID = Grades.StudentID = Grades.CourseID",
		"Students.ID > Grades.StudentID",
		".ID = Grades.StudentID",
	} {
		_, err := s.Join(g, cond)
		assert.ErrorIs(t, err, ErrConditionFormat, cond)
	}

	_, err := s.Join(g, "Students.Nope = Grades.StudentID")
	assert.ErrorIs(t, err, ErrColumnNotFound)
	_, err = s.Join(g, "Students.ID = Grades.Nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestJoinCommutesUpToColumnOrder(t *testing.T) {
	s, g := students(t), grades(t)

	ab, err := s.Join(g, "Students.ID = Grades.StudentID")
	require.NoError(t, err)
	ba, err := g.Join(s, "Grades.StudentID = Students.ID")
	require.NoError(t, err)
	require.Equal(t, ab.Len(), ba.Len())

	n := s.Arity()
	want := map[string]bool{}
	for _, row := range ab.Rows() {
		reordered := append(append([]value.Value{}, row[n:]...), row[:n]...)
		want[utils.RowKey(reordered)] = true
	}
	assert.Equal(t, want, rowKeys(ba))
}

// nestedLoopJoin is the reference the hash join must agree with, order included.
func nestedLoopJoin(a, b *Relation, ai, bi int) [][]value.Value {
	var out [][]value.Value
	for _, l := range a.rows {
		for _, r := range b.rows {
			if value.Equal(l[ai], r[bi]) {
				out = append(out, concat(l, r))
			}
		}
	}
	return out
}

func TestHashJoinMatchesNestedLoop(t *testing.T) {
	cells := []string{"1", "1.0", "2", "02", "x", "X", ""}
	build := func(name string, n int) *Relation {
		r, err := New(name, []string{"k", "v"})
		require.NoError(t, err)
		for i := 0; i < n; i++ {
			require.NoError(t, r.AddAny(cells[rand.IntN(len(cells))], i))
		}
		return r
	}

	for round := 0; round < 25; round++ {
		a, b := build("A", rand.IntN(12)), build("B", rand.IntN(12))
		out, err := a.Join(b, "A.k = B.k")
		require.NoError(t, err)
		want := nestedLoopJoin(a, b, 0, 0)
		if len(want) == 0 {
			assert.Equal(t, 0, out.Len())
			continue
		}
		assert.Equal(t, want, out.Rows())
	}
}

func TestNaturalJoin(t *testing.T) {
	s := students(t)
	m, err := New("Majors", []string{"major", "Building"})
	require.NoError(t, err)
	require.NoError(t, m.AddStrings("CS", "Turing Hall"))
	require.NoError(t, m.AddStrings("Math", "Euler Hall"))

	out := s.NaturalJoin(m)
	assert.Equal(t, "Students ⋈ Majors", out.Name())
	assert.Equal(t, []string{"ID", "Name", "Age", "Major", "Building"}, out.Columns())
	assert.Equal(t, []string{"1", "2", "3", "5", "6"}, column(out, "ID"))
	assert.Equal(t, "Turing Hall", out.Row(0)[4].String())

	// no shared columns: cross product
	g := grades(t)
	cross := m.NaturalJoin(g)
	assert.Equal(t, m.Len()*g.Len(), cross.Len())
}

func TestNaturalJoinKeysDoNotBleedAcrossColumns(t *testing.T) {
	a, err := New("A", []string{"x", "y", "id"})
	require.NoError(t, err)
	require.NoError(t, a.AddStrings("a\x1fs:b", "c", "1"))
	b, err := New("B", []string{"x", "y", "tag"})
	require.NoError(t, err)
	require.NoError(t, b.AddStrings("a", "b\x1fs:c", "t"))
	require.NoError(t, b.AddStrings("a\x1fs:b", "c", "u"))

	out := a.NaturalJoin(b)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "u", out.Row(0)[3].String())
}

func TestNaturalJoinReconstructsProjections(t *testing.T) {
	s := students(t)
	left, err := s.Project("ID", "Name")
	require.NoError(t, err)
	right, err := s.Project("ID", "Age", "Major")
	require.NoError(t, err)

	joined := left.NaturalJoin(right)
	reordered, err := joined.Pick(s.Columns()...)
	require.NoError(t, err)
	assert.True(t, reordered.SameRows(s))
}
