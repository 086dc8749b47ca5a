package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashagw/relcore/internal/parse/parserdata"
	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/value"
)

func TestParserField(t *testing.T) {
	p := NewParser(NewLexer("MyField students.Name"))
	require.NotNil(t, p)

	f, err := p.field()
	require.NoError(t, err)
	assert.Equal(t, "myfield", f)

	f, err = p.field()
	require.NoError(t, err)
	assert.Equal(t, "students.name", f)

	// Next token should not be an id; expect error
	_, err = p.field()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestParserConstant(t *testing.T) {
	val, err := NewParser(NewLexer("123")).constant()
	require.NoError(t, err)
	assert.Equal(t, value.Int(123), val)

	val, err = NewParser(NewLexer("-7.5")).constant()
	require.NoError(t, err)
	assert.Equal(t, value.Num(-7.5), val)

	val, err = NewParser(NewLexer("'hello'")).constant()
	require.NoError(t, err)
	assert.Equal(t, value.Str("hello"), val)

	val, err = NewParser(NewLexer(`"world"`)).constant()
	require.NoError(t, err)
	assert.Equal(t, value.Str("world"), val)

	// Numeric-looking strings stay strings
	val, err = NewParser(NewLexer("'42'")).constant()
	require.NoError(t, err)
	assert.Equal(t, value.StringKind, val.Kind())

	_, err = NewParser(NewLexer("select")).constant()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestParserExpression(t *testing.T) {
	e, err := NewParser(NewLexer("name")).expression()
	require.NoError(t, err)
	assert.IsType(t, &query.FieldRef{}, e)

	e, err = NewParser(NewLexer("COUNT(*)")).expression()
	require.NoError(t, err)
	ref, ok := e.(*query.AggregateRef)
	require.True(t, ok)
	assert.Equal(t, query.Aggregate{Func: query.Count, Column: "*"}, ref.Aggregate())

	e, err = NewParser(NewLexer("(select avg(salary) from employees)")).expression()
	require.NoError(t, err)
	sq, ok := e.(*query.Subquery)
	require.True(t, ok)
	assert.Equal(t, "select AVG(salary) from employees", sq.Statement().String())

	// "count" without a call is an ordinary column
	e, err = NewParser(NewLexer("count")).expression()
	require.NoError(t, err)
	assert.IsType(t, &query.FieldRef{}, e)
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"age > 20", "age > 20"},
		{"Age>20 AND Major='CS'", "age > 20 and major = 'CS'"},
		{"a = 1 or b = 2 and c = 3", "(a = 1 or b = 2 and c = 3)"},
		{"(a = 1 or b = 2) and c = 3", "(a = 1 or b = 2) and c = 3"},
		{"not a = 1 and b <> 2", "not a = 1 and b != 2"},
		{"not (a = 1 and b = 2)", "not (a = 1 and b = 2)"},
		{"major in ('CS', 'Math')", "major in ('CS', 'Math')"},
		{"id not in (1, 2)", "id not in (1, 2)"},
		{"name like 'A%'", "name like 'A%'"},
		{"name not like '_r%'", "name not like '_r%'"},
		{"true", "true"},
		{"active", "active"},
		{"s.id = g.id", "s.id = g.id"},
		{"x >= -3", "x >= -3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCondition(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestParseConditionErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"age >",
		"age > 20 and",
		"(age > 20",
		"age > 20)",
		"name = 'unterminated",
		"a ! b",
		"name like 5",
		"x in ()",
	} {
		_, err := ParseCondition(in)
		assert.ErrorIs(t, err, ErrBadSyntax, in)
	}
}

func TestParseConditionEvaluates(t *testing.T) {
	c, err := ParseCondition("age >= 20 and (major = 'cs' or major = 'CS') and not name like '%kumar'")
	require.NoError(t, err)

	row := query.MapRow{"name": value.Str("Arjun Sharma"), "age": value.Int(20), "major": value.Str("CS")}
	ok, err := c.IsSatisfied(row)
	require.NoError(t, err)
	assert.True(t, ok)

	row["name"] = value.Str("Rahul Kumar")
	ok, err = c.IsSatisfied(row)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParserQuery(t *testing.T) {
	stmt, err := ParseStatement("SELECT name, age FROM students WHERE age > 20 ORDER BY age DESC LIMIT 2;")
	require.NoError(t, err)

	qd, ok := stmt.(*parserdata.QueryData)
	require.True(t, ok)
	assert.Equal(t, "students", qd.Table())
	assert.Equal(t, []string{"name", "age"}, qd.Fields())
	assert.False(t, qd.Star())
	assert.Empty(t, qd.Aggregates())
	require.NotNil(t, qd.Predicate())
	assert.Equal(t, "age > 20", qd.Predicate().String())
	field, desc := qd.OrderBy()
	assert.Equal(t, "age", field)
	assert.True(t, desc)
	assert.Equal(t, 2, qd.Limit())
	assert.Equal(t, "select name, age from students where age > 20 order by age desc limit 2", qd.String())
}

func TestParserQueryDefaults(t *testing.T) {
	p := NewParserFromString("select * from employees")
	qd, err := p.Query()
	require.NoError(t, err)

	assert.True(t, qd.Star())
	assert.Nil(t, qd.Predicate())
	assert.Empty(t, qd.GroupBy())
	assert.Nil(t, qd.Having())
	assert.Equal(t, -1, qd.Limit())
	field, _ := qd.OrderBy()
	assert.Empty(t, field)
}

func TestParserAggregates(t *testing.T) {
	stmt, err := ParseStatement("select department, count(*), avg(salary) from employees group by department having count(*) > 1")
	require.NoError(t, err)

	qd := stmt.(*parserdata.QueryData)
	assert.Equal(t, []string{"department"}, qd.Fields())
	assert.Equal(t, []query.Aggregate{
		{Func: query.Count, Column: "*"},
		{Func: query.Avg, Column: "salary"},
	}, qd.Aggregates())
	assert.Equal(t, "department", qd.GroupBy())
	require.NotNil(t, qd.Having())
	assert.Equal(t, "COUNT(*) > 1", qd.Having().String())

	_, err = ParseStatement("select sum(*) from employees")
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestParserClauseOrder(t *testing.T) {
	stmt, err := ParseStatement("select * from t limit 3 where x = 1")
	require.NoError(t, err)
	qd := stmt.(*parserdata.QueryData)
	assert.Equal(t, 3, qd.Limit())
	assert.Equal(t, "x = 1", qd.Predicate().String())

	_, err = ParseStatement("select * from t where x = 1 where y = 2")
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestParserSetOperations(t *testing.T) {
	stmt, err := ParseStatement("select name from a union select name from b intersect select name from c except select name from d")
	require.NoError(t, err)

	// union is loosest, except binds tightest
	union, ok := stmt.(*parserdata.SetOpData)
	require.True(t, ok)
	assert.Equal(t, parserdata.Union, union.Op())
	assert.IsType(t, &parserdata.QueryData{}, union.Left())

	intersect, ok := union.Right().(*parserdata.SetOpData)
	require.True(t, ok)
	assert.Equal(t, parserdata.Intersect, intersect.Op())

	except, ok := intersect.Right().(*parserdata.SetOpData)
	require.True(t, ok)
	assert.Equal(t, parserdata.Except, except.Op())

	// left-associative
	stmt, err = ParseStatement("select x from a except select x from b except select x from c")
	require.NoError(t, err)
	outer := stmt.(*parserdata.SetOpData)
	assert.IsType(t, &parserdata.SetOpData{}, outer.Left())
	assert.IsType(t, &parserdata.QueryData{}, outer.Right())

	// parentheses override precedence and round-trip through String
	stmt, err = ParseStatement("(select x from a union select x from b) except select x from c")
	require.NoError(t, err)
	assert.Equal(t, "(select x from a union select x from b) except select x from c", stmt.String())
	again, err := ParseStatement(stmt.String())
	require.NoError(t, err)
	assert.Equal(t, stmt.String(), again.String())
}

func TestParserSubqueries(t *testing.T) {
	stmt, err := ParseStatement("select name from employees where salary > (select avg(salary) from employees) and department in (select name from departments where budget > 100000)")
	require.NoError(t, err)

	qd := stmt.(*parserdata.QueryData)
	require.True(t, query.HasSubquery(qd.Predicate()))

	pred, ok := qd.Predicate().(*query.Predicate)
	require.True(t, ok)
	terms := pred.GetTerms()
	require.Len(t, terms, 2)

	in, ok := terms[1].(*query.InList)
	require.True(t, ok)
	require.Len(t, in.List(), 1)
	assert.IsType(t, &query.Subquery{}, in.List()[0])
}

func TestParseStatementErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"select",
		"select from t",
		"select * t",
		"select a, from t",
		"select * from t where",
		"select * from t order age",
		"select * from t limit x",
		"select * from t union",
		"select * from t extra",
		"delete from t",
	} {
		_, err := ParseStatement(in)
		assert.ErrorIs(t, err, ErrBadSyntax, in)
	}
}
