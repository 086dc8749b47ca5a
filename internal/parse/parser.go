package parse

import (
	"fmt"

	"github.com/yashagw/relcore/internal/parse/parserdata"
	"github.com/yashagw/relcore/internal/query"
	"github.com/yashagw/relcore/internal/value"
)

// Parser is a recursive descent parser for the SELECT subset and for the
// condition language used by selections.
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser.
func NewParser(lexer *Lexer) *Parser {
	return &Parser{
		lexer: lexer,
	}
}

// NewParserFromString creates a new Parser from a string.
func NewParserFromString(sql string) *Parser {
	lexer := NewLexer(sql)
	return NewParser(lexer)
}

// ParseCondition parses a complete condition such as "age > 20 and major = 'CS'".
func ParseCondition(s string) (query.Condition, error) {
	return NewParserFromString(s).Condition()
}

// ParseStatement parses a complete SELECT statement, possibly combined with
// UNION, INTERSECT or EXCEPT.
func ParseStatement(sql string) (parserdata.Statement, error) {
	return NewParserFromString(sql).Statement()
}

// field parses a column name, optionally qualified as table.column.
func (p *Parser) field() (string, error) {
	id, err := p.lexer.EatId()
	if err != nil {
		return "", err
	}
	if !p.lexer.MatchDelim('.') {
		return id, nil
	}
	if err := p.lexer.EatDelim('.'); err != nil {
		return "", err
	}
	col, err := p.lexer.EatId()
	if err != nil {
		return "", err
	}
	return id + "." + col, nil
}

func (p *Parser) constant() (value.Value, error) {
	if p.lexer.MatchDelim('-') {
		if err := p.lexer.EatDelim('-'); err != nil {
			return value.Value{}, err
		}
		s, err := p.lexer.EatNumberConstant()
		if err != nil {
			return value.Value{}, err
		}
		return value.Parse("-" + s), nil
	}
	if p.lexer.MatchNumberConstant() {
		s, err := p.lexer.EatNumberConstant()
		if err != nil {
			return value.Value{}, err
		}
		return value.Parse(s), nil
	}
	if p.lexer.MatchStringConstant() {
		s, err := p.lexer.EatStringConstant()
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	}
	if p.lexer.MatchKeyword("true") || p.lexer.MatchKeyword("false") {
		s := "false"
		if p.lexer.MatchKeyword("true") {
			s = "true"
		}
		if err := p.lexer.EatKeyword(s); err != nil {
			return value.Value{}, err
		}
		return value.Str(s), nil
	}
	return value.Value{}, p.lexer.unexpected("constant")
}

// isAggregateCall reports whether the lexer is positioned at FUNC(.
func (p *Parser) isAggregateCall() bool {
	if !p.lexer.MatchId() || !p.lexer.PeekDelim('(') {
		return false
	}
	_, ok := query.ParseAggFunc(p.lexer.current().text)
	return ok
}

func (p *Parser) aggregate() (query.Aggregate, error) {
	name, err := p.lexer.EatId()
	if err != nil {
		return query.Aggregate{}, err
	}
	fn, ok := query.ParseAggFunc(name)
	if !ok {
		return query.Aggregate{}, fmt.Errorf("%w: unknown aggregate %q", ErrBadSyntax, name)
	}
	if err := p.lexer.EatDelim('('); err != nil {
		return query.Aggregate{}, err
	}

	var column string
	if p.lexer.MatchDelim('*') {
		if fn != query.Count {
			return query.Aggregate{}, fmt.Errorf("%w: %s(*) is not allowed", ErrBadSyntax, fn)
		}
		if err := p.lexer.EatDelim('*'); err != nil {
			return query.Aggregate{}, err
		}
		column = "*"
	} else {
		column, err = p.field()
		if err != nil {
			return query.Aggregate{}, err
		}
	}

	if err := p.lexer.EatDelim(')'); err != nil {
		return query.Aggregate{}, err
	}
	return query.Aggregate{Func: fn, Column: column}, nil
}

func (p *Parser) subquery() (*query.Subquery, error) {
	if err := p.lexer.EatDelim('('); err != nil {
		return nil, err
	}
	stmt, err := p.union()
	if err != nil {
		return nil, err
	}
	if err := p.lexer.EatDelim(')'); err != nil {
		return nil, err
	}
	return query.NewSubquery(stmt), nil
}

func (p *Parser) expression() (query.Expression, error) {
	if p.lexer.MatchDelim('(') && p.lexer.PeekKeyword("select") {
		return p.subquery()
	}
	if p.isAggregateCall() {
		agg, err := p.aggregate()
		if err != nil {
			return nil, err
		}
		return query.NewAggregateRef(agg), nil
	}
	if p.lexer.MatchId() {
		id, err := p.field()
		if err != nil {
			return nil, err
		}
		return query.NewFieldRef(id), nil
	}
	val, err := p.constant()
	if err != nil {
		return nil, err
	}
	return query.NewConstant(val), nil
}

// Condition parses a complete condition; trailing input is an error.
func (p *Parser) Condition() (query.Condition, error) {
	c, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.lexer.AtEOF() {
		return nil, p.lexer.unexpected("end of condition")
	}
	return c, nil
}

// or binds loosest, then and, then not.
func (p *Parser) or() (query.Condition, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	terms := []query.Condition{first}
	for p.lexer.MatchKeyword("or") {
		if err := p.lexer.EatKeyword("or"); err != nil {
			return nil, err
		}
		next, err := p.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return query.NewDisjunction(terms...), nil
}

func (p *Parser) and() (query.Condition, error) {
	first, err := p.not()
	if err != nil {
		return nil, err
	}
	if !p.lexer.MatchKeyword("and") {
		return first, nil
	}
	pred := query.NewPredicate(first)
	for p.lexer.MatchKeyword("and") {
		if err := p.lexer.EatKeyword("and"); err != nil {
			return nil, err
		}
		next, err := p.not()
		if err != nil {
			return nil, err
		}
		pred.ConjunctWith(query.NewPredicate(next))
	}
	return pred, nil
}

func (p *Parser) not() (query.Condition, error) {
	if !p.lexer.MatchKeyword("not") {
		return p.term()
	}
	if err := p.lexer.EatKeyword("not"); err != nil {
		return nil, err
	}
	inner, err := p.not()
	if err != nil {
		return nil, err
	}
	return query.NewNegation(inner), nil
}

func (p *Parser) term() (query.Condition, error) {
	// Parenthesized condition, as opposed to a subquery operand
	if p.lexer.MatchDelim('(') && !p.lexer.PeekKeyword("select") {
		if err := p.lexer.EatDelim('('); err != nil {
			return nil, err
		}
		c, err := p.or()
		if err != nil {
			return nil, err
		}
		if err := p.lexer.EatDelim(')'); err != nil {
			return nil, err
		}
		return c, nil
	}

	// A bare TRUE or FALSE is a condition on its own
	if (p.lexer.MatchKeyword("true") || p.lexer.MatchKeyword("false")) && !p.lexer.PeekOperator() {
		b := p.lexer.MatchKeyword("true")
		p.lexer.advance()
		return query.NewBoolConstant(b), nil
	}

	left, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.lexer.MatchOperator() {
		s, err := p.lexer.EatOperator()
		if err != nil {
			return nil, err
		}
		op, ok := query.ParseOperator(s)
		if !ok {
			return nil, fmt.Errorf("%w: unknown operator %q", ErrBadSyntax, s)
		}
		right, err := p.expression()
		if err != nil {
			return nil, err
		}
		return query.NewTerm(left, op, right), nil
	}

	negated := false
	if p.lexer.MatchKeyword("not") && (p.lexer.PeekKeyword("in") || p.lexer.PeekKeyword("like")) {
		if err := p.lexer.EatKeyword("not"); err != nil {
			return nil, err
		}
		negated = true
	}

	if p.lexer.MatchKeyword("in") {
		list, err := p.inList()
		if err != nil {
			return nil, err
		}
		return query.NewInList(left, list, negated), nil
	}
	if p.lexer.MatchKeyword("like") {
		if err := p.lexer.EatKeyword("like"); err != nil {
			return nil, err
		}
		pattern, err := p.lexer.EatStringConstant()
		if err != nil {
			return nil, err
		}
		return query.NewLike(left, pattern, negated), nil
	}

	return query.NewTruthy(left), nil
}

func (p *Parser) inList() ([]query.Expression, error) {
	if err := p.lexer.EatKeyword("in"); err != nil {
		return nil, err
	}
	if p.lexer.MatchDelim('(') && p.lexer.PeekKeyword("select") {
		sq, err := p.subquery()
		if err != nil {
			return nil, err
		}
		return []query.Expression{sq}, nil
	}
	if err := p.lexer.EatDelim('('); err != nil {
		return nil, err
	}
	var list []query.Expression
	for {
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.lexer.MatchDelim(',') {
			break
		}
		if err := p.lexer.EatDelim(','); err != nil {
			return nil, err
		}
	}
	if err := p.lexer.EatDelim(')'); err != nil {
		return nil, err
	}
	return list, nil
}

// Statement parses a complete statement. A trailing semicolon is allowed.
func (p *Parser) Statement() (parserdata.Statement, error) {
	stmt, err := p.union()
	if err != nil {
		return nil, err
	}
	if p.lexer.MatchDelim(';') {
		if err := p.lexer.EatDelim(';'); err != nil {
			return nil, err
		}
	}
	if !p.lexer.AtEOF() {
		return nil, p.lexer.unexpected("end of statement")
	}
	return stmt, nil
}

// union binds loosest, then intersect, then except. All are left-associative.
func (p *Parser) union() (parserdata.Statement, error) {
	return p.setOp(parserdata.Union, p.intersect)
}

func (p *Parser) intersect() (parserdata.Statement, error) {
	return p.setOp(parserdata.Intersect, p.except)
}

func (p *Parser) except() (parserdata.Statement, error) {
	return p.setOp(parserdata.Except, p.selectOrGroup)
}

func (p *Parser) setOp(op parserdata.SetOp, operand func() (parserdata.Statement, error)) (parserdata.Statement, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.lexer.MatchKeyword(string(op)) {
		if err := p.lexer.EatKeyword(string(op)); err != nil {
			return nil, err
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = parserdata.NewSetOpData(op, left, right)
	}
	return left, nil
}

func (p *Parser) selectOrGroup() (parserdata.Statement, error) {
	if !p.lexer.MatchDelim('(') {
		return p.Query()
	}
	if err := p.lexer.EatDelim('('); err != nil {
		return nil, err
	}
	stmt, err := p.union()
	if err != nil {
		return nil, err
	}
	if err := p.lexer.EatDelim(')'); err != nil {
		return nil, err
	}
	return stmt, nil
}

// Query parses a single SELECT. Clauses after FROM may come in any order,
// each at most once.
func (p *Parser) Query() (*parserdata.QueryData, error) {
	// Select
	err := p.lexer.EatKeyword("select")
	if err != nil {
		return nil, err
	}
	// Select List
	fields, aggregates, err := p.selectList()
	if err != nil {
		return nil, err
	}
	// From
	err = p.lexer.EatKeyword("from")
	if err != nil {
		return nil, err
	}
	// Table
	table, err := p.lexer.EatId()
	if err != nil {
		return nil, err
	}

	qd := parserdata.NewQueryData(table, fields, aggregates, nil)
	seen := map[string]bool{}
	for {
		var clause string
		for _, kw := range []string{"where", "group", "having", "order", "limit"} {
			if p.lexer.MatchKeyword(kw) {
				clause = kw
				break
			}
		}
		if clause == "" {
			return qd, nil
		}
		if seen[clause] {
			return nil, fmt.Errorf("%w: duplicate %s clause", ErrBadSyntax, clause)
		}
		seen[clause] = true

		if err := p.clause(clause, qd); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) clause(name string, q *parserdata.QueryData) error {
	if err := p.lexer.EatKeyword(name); err != nil {
		return err
	}
	switch name {
	case "where":
		pred, err := p.or()
		if err != nil {
			return err
		}
		q.SetPredicate(pred)
	case "group":
		if err := p.lexer.EatKeyword("by"); err != nil {
			return err
		}
		f, err := p.field()
		if err != nil {
			return err
		}
		q.SetGroupBy(f)
	case "having":
		c, err := p.or()
		if err != nil {
			return err
		}
		q.SetHaving(c)
	case "order":
		if err := p.lexer.EatKeyword("by"); err != nil {
			return err
		}
		f, err := p.field()
		if err != nil {
			return err
		}
		desc := false
		if p.lexer.MatchKeyword("desc") {
			desc = true
			p.lexer.advance()
		} else if p.lexer.MatchKeyword("asc") {
			p.lexer.advance()
		}
		q.SetOrderBy(f, desc)
	case "limit":
		n, err := p.lexer.EatIntConstant()
		if err != nil {
			return err
		}
		q.SetLimit(n)
	}
	return nil
}

func (p *Parser) selectList() ([]string, []query.Aggregate, error) {
	if p.lexer.MatchDelim('*') {
		return nil, nil, p.lexer.EatDelim('*')
	}

	var fields []string
	var aggregates []query.Aggregate
	for {
		if p.isAggregateCall() {
			agg, err := p.aggregate()
			if err != nil {
				return nil, nil, err
			}
			aggregates = append(aggregates, agg)
		} else {
			f, err := p.field()
			if err != nil {
				return nil, nil, err
			}
			fields = append(fields, f)
		}

		if !p.lexer.MatchDelim(',') {
			return fields, aggregates, nil
		}
		if err := p.lexer.EatDelim(','); err != nil {
			return nil, nil, err
		}
	}
}
