package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/parse"
	"github.com/yashagw/relcore/internal/parse/parserdata"
	"github.com/yashagw/relcore/internal/relation"
)

var (
	ErrTableNotFound    = metadata.ErrTableNotFound
	ErrUnsupportedQuery = errors.New("unsupported query")
	ErrSetOperation     = errors.New("set operation operands do not match")
	ErrSubquery         = errors.New("invalid subquery")
)

type QueryPlanner interface {
	CreatePlan(queryData *parserdata.QueryData, catalog *metadata.Catalog) (Plan, error)
}

// StatementRunner evaluates a parsed statement to a relation. The query
// planner uses it for nested SELECTs.
type StatementRunner interface {
	Run(stmt parserdata.Statement, catalog *metadata.Catalog) (*relation.Relation, error)
}

var (
	_ StatementRunner = (*Planner)(nil)
)

// Planner parses SQL text and evaluates it against a catalog. It keeps no
// state between calls and may be shared.
type Planner struct {
	queryPlanner QueryPlanner
}

func NewPlanner() *Planner {
	p := &Planner{}
	p.queryPlanner = NewBasicQueryPlanner(p)
	return p
}

// NewPlannerWith uses a custom QueryPlanner for single SELECTs.
func NewPlannerWith(queryPlanner QueryPlanner) *Planner {
	return &Planner{
		queryPlanner: queryPlanner,
	}
}

// Parse checks that the text is a query and parses it.
func (p *Planner) Parse(sql string) (parserdata.Statement, error) {
	lexer := parse.NewLexer(sql)
	if !lexer.MatchKeyword("select") && !lexer.MatchDelim('(') {
		return nil, fmt.Errorf("%w: only SELECT statements are supported", ErrUnsupportedQuery)
	}
	return parse.NewParser(lexer).Statement()
}

// Execute runs one statement. The catalog is only read.
func (p *Planner) Execute(sql string, catalog *metadata.Catalog) (*Result, error) {
	stmt, err := p.Parse(sql)
	if err != nil {
		return nil, err
	}
	rel, err := p.Run(stmt, catalog)
	if err != nil {
		return nil, err
	}
	kind := Tabular
	if qd, ok := stmt.(*parserdata.QueryData); ok && isAggregate(qd) {
		kind = Aggregate
	}
	return newResult(kind, rel), nil
}

// CreatePlan builds the plan for a single SELECT.
func (p *Planner) CreatePlan(sql string, catalog *metadata.Catalog) (Plan, error) {
	stmt, err := p.Parse(sql)
	if err != nil {
		return nil, err
	}
	qd, ok := stmt.(*parserdata.QueryData)
	if !ok {
		return nil, fmt.Errorf("%w: set operations have no single plan", ErrUnsupportedQuery)
	}
	return p.queryPlanner.CreatePlan(qd, catalog)
}

// Explain describes how a statement would be evaluated.
func (p *Planner) Explain(sql string, catalog *metadata.Catalog) (string, error) {
	stmt, err := p.Parse(sql)
	if err != nil {
		return "", err
	}
	return p.explain(stmt, catalog)
}

func (p *Planner) explain(stmt parserdata.Statement, catalog *metadata.Catalog) (string, error) {
	switch s := stmt.(type) {
	case *parserdata.QueryData:
		plan, err := p.queryPlanner.CreatePlan(s, catalog)
		if err != nil {
			return "", err
		}
		return plan.String(), nil
	case *parserdata.SetOpData:
		left, err := p.explain(s.Left(), catalog)
		if err != nil {
			return "", err
		}
		right, err := p.explain(s.Right(), catalog)
		if err != nil {
			return "", err
		}
		return strings.ToUpper(string(s.Op())) + "\n" + indent(left) + "\n" + indent(right), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedQuery, stmt)
}

// Run evaluates a statement to a relation.
func (p *Planner) Run(stmt parserdata.Statement, catalog *metadata.Catalog) (*relation.Relation, error) {
	switch s := stmt.(type) {
	case *parserdata.QueryData:
		plan, err := p.queryPlanner.CreatePlan(s, catalog)
		if err != nil {
			return nil, err
		}
		return plan.Open()
	case *parserdata.SetOpData:
		return p.runSetOp(s, catalog)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedQuery, stmt)
}

// runSetOp combines both sides by full-row equality. The result takes the
// left side's column names.
func (p *Planner) runSetOp(s *parserdata.SetOpData, catalog *metadata.Catalog) (*relation.Relation, error) {
	left, err := p.Run(s.Left(), catalog)
	if err != nil {
		return nil, err
	}
	right, err := p.Run(s.Right(), catalog)
	if err != nil {
		return nil, err
	}
	if left.Arity() != right.Arity() {
		return nil, fmt.Errorf("%w: %s has %d columns, right side has %d",
			ErrSetOperation, strings.ToUpper(string(s.Op())), left.Arity(), right.Arity())
	}

	switch s.Op() {
	case parserdata.Union:
		return left.Union(right)
	case parserdata.Intersect:
		return left.Intersect(right)
	case parserdata.Except:
		return left.Difference(right)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuery, s.Op())
}

func isAggregate(qd *parserdata.QueryData) bool {
	return len(qd.Aggregates()) > 0 && qd.GroupBy() == ""
}
