package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerEatDelim(t *testing.T) {
	lexer := NewLexer("( )")
	require.NotNil(t, lexer)

	err := lexer.EatDelim('(')
	require.NoError(t, err)

	err = lexer.EatDelim(')')
	require.NoError(t, err)
	assert.True(t, lexer.AtEOF())

	// Test error case
	lexer2 := NewLexer("(")
	require.NotNil(t, lexer2)

	err = lexer2.EatDelim(')')
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerNumbers(t *testing.T) {
	lexer := NewLexer("123 45.5")

	val, err := lexer.EatIntConstant()
	require.NoError(t, err)
	assert.Equal(t, 123, val)

	assert.False(t, lexer.MatchIntConstant())
	require.True(t, lexer.MatchNumberConstant())
	s, err := lexer.EatNumberConstant()
	require.NoError(t, err)
	assert.Equal(t, "45.5", s)

	_, err = NewLexer("abc").EatIntConstant()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerZeroPaddedNumbers(t *testing.T) {
	lexer := NewLexer("08 09 007 0900")
	for _, want := range []int{8, 9, 7, 900} {
		val, err := lexer.EatIntConstant()
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}
	assert.True(t, lexer.AtEOF())

	s, err := NewLexer("08").EatNumberConstant()
	require.NoError(t, err)
	assert.Equal(t, "08", s)

	_, err = NewLexer("0x").EatIntConstant()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerEatStringConstant(t *testing.T) {
	lexer := NewLexer("'hello' 'world'")

	val, err := lexer.EatStringConstant()
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	val, err = lexer.EatStringConstant()
	require.NoError(t, err)
	assert.Equal(t, "world", val)

	// Double-quoted strings
	val, err = NewLexer(`"test"`).EatStringConstant()
	require.NoError(t, err)
	assert.Equal(t, "test", val)

	// Escaped quote in single-quoted string
	val, err = NewLexer("'John''s name'").EatStringConstant()
	require.NoError(t, err)
	assert.Equal(t, "John's name", val)

	// Case is preserved inside strings
	val, err = NewLexer("'Computer Science'").EatStringConstant()
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", val)

	_, err = NewLexer("abc").EatStringConstant()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerUnterminatedString(t *testing.T) {
	lexer := NewLexer("name = 'oops")
	_, err := lexer.EatId()
	require.NoError(t, err)
	_, err = lexer.EatOperator()
	require.NoError(t, err)

	assert.False(t, lexer.MatchStringConstant())
	_, err = lexer.EatStringConstant()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerOperators(t *testing.T) {
	lexer := NewLexer("= == != <> < > <= >=")
	var ops []string
	for !lexer.AtEOF() {
		op, err := lexer.EatOperator()
		require.NoError(t, err)
		ops = append(ops, op)
	}
	assert.Equal(t, []string{"=", "==", "!=", "<>", "<", ">", "<=", ">="}, ops)

	// A lone ! is not an operator
	lexer = NewLexer("a ! b")
	_, err := lexer.EatId()
	require.NoError(t, err)
	_, err = lexer.EatOperator()
	assert.ErrorIs(t, err, ErrBadSyntax)
}

func TestLexerKeywordsAndIds(t *testing.T) {
	lexer := NewLexer("SELECT Name FROM Students")

	assert.True(t, lexer.MatchKeyword("select"))
	assert.False(t, lexer.MatchId())
	require.NoError(t, lexer.EatKeyword("select"))

	id, err := lexer.EatId()
	require.NoError(t, err)
	assert.Equal(t, "name", id)

	assert.True(t, lexer.MatchKeyword("from"))
	err = lexer.EatKeyword("where")
	assert.ErrorIs(t, err, ErrBadSyntax)
	require.NoError(t, lexer.EatKeyword("from"))

	id, err = lexer.EatId()
	require.NoError(t, err)
	assert.Equal(t, "students", id)
	assert.True(t, lexer.AtEOF())
}

func TestLexerPeek(t *testing.T) {
	lexer := NewLexer("( select x")
	assert.True(t, lexer.MatchDelim('('))
	assert.True(t, lexer.PeekKeyword("select"))
	assert.False(t, lexer.PeekDelim('('))

	lexer = NewLexer("count(*)")
	assert.True(t, lexer.MatchId())
	assert.True(t, lexer.PeekDelim('('))

	lexer = NewLexer("true = 'true'")
	assert.True(t, lexer.PeekOperator())

	// Peeking past the end stays at EOF
	lexer = NewLexer("x")
	assert.False(t, lexer.PeekDelim('('))
}
