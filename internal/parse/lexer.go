package parse

import (
	"errors"
	"fmt"
	"strings"
	"text/scanner"
)

var ErrBadSyntax = errors.New("bad syntax")

// Token kinds the lexer adds on top of text/scanner's.
const (
	// Operator is a comparison operator: = == != <> < > <= >=.
	Operator rune = -(iota + 16)
	// QuotedString is a single-quoted string constant.
	QuotedString
	// Invalid marks input the lexer could not tokenize.
	Invalid
)

type token struct {
	kind rune
	text string
}

// Lexer splits a statement into tokens up front and lets the parser walk
// them with one token of lookahead beyond the current one.
type Lexer struct {
	keywords map[string]bool
	tokens   []token
	pos      int
}

func NewLexer(input string) *Lexer {
	keywords := map[string]bool{
		"select": true, "from": true, "where": true, "and": true, "or": true,
		"not": true, "in": true, "like": true, "group": true, "by": true,
		"having": true, "order": true, "asc": true, "desc": true, "limit": true,
		"union": true, "intersect": true, "except": true,
		"true": true, "false": true, "as": true,
	}

	l := &Lexer{
		keywords: keywords,
	}

	var s scanner.Scanner
	s.Init(strings.NewReader(input))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	s.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '
	s.Error = func(*scanner.Scanner, string) {}

	for {
		tok := nextToken(&s)
		l.tokens = append(l.tokens, tok)
		if tok.kind == scanner.EOF || tok.kind == Invalid {
			break
		}
	}
	return l
}

// nextToken reads one token from the scanner. The scanner doesn't handle
// single-quoted strings or two-character operators, so those are assembled here.
func nextToken(s *scanner.Scanner) token {
	errs := s.ErrorCount
	kind := s.Scan()
	text := s.TokenText()
	if s.ErrorCount > errs {
		// text/scanner rejects 08 and 09 as octal; they are plain decimals here
		if kind == scanner.Int && isDecimalDigits(text) {
			return token{kind: scanner.Int, text: text}
		}
		return token{kind: Invalid, text: text}
	}

	switch kind {
	case '\'':
		var sb strings.Builder
		for {
			ch := s.Next()
			if ch == scanner.EOF {
				return token{kind: Invalid, text: sb.String()}
			}
			if ch == '\'' {
				// Two consecutive quotes means an escaped quote
				if s.Peek() == '\'' {
					sb.WriteRune('\'')
					s.Next()
					continue
				}
				break
			}
			sb.WriteRune(ch)
		}
		return token{kind: QuotedString, text: sb.String()}
	case '<':
		if p := s.Peek(); p == '=' || p == '>' {
			s.Next()
			return token{kind: Operator, text: "<" + string(p)}
		}
		return token{kind: Operator, text: "<"}
	case '>', '=':
		if s.Peek() == '=' {
			s.Next()
			return token{kind: Operator, text: string(kind) + "="}
		}
		return token{kind: Operator, text: string(kind)}
	case '!':
		if s.Peek() == '=' {
			s.Next()
			return token{kind: Operator, text: "!="}
		}
		return token{kind: Invalid, text: "!"}
	case scanner.Ident:
		return token{kind: kind, text: strings.ToLower(text)}
	}
	return token{kind: kind, text: text}
}

func (l *Lexer) current() token {
	return l.tokens[l.pos]
}

func (l *Lexer) peek(offset int) token {
	i := l.pos + offset
	if i >= len(l.tokens) {
		return l.tokens[len(l.tokens)-1]
	}
	return l.tokens[i]
}

func (l *Lexer) advance() {
	if l.pos < len(l.tokens)-1 {
		l.pos++
	}
}

// AtEOF checks if all input has been consumed.
func (l *Lexer) AtEOF() bool {
	return l.current().kind == scanner.EOF
}

// MatchDelim checks if the current token is the specified delimiter.
func (l *Lexer) MatchDelim(d rune) bool {
	return l.current().kind == d
}

// MatchNumberConstant checks if the current token is an integer or float constant.
func (l *Lexer) MatchNumberConstant() bool {
	k := l.current().kind
	return k == scanner.Int || k == scanner.Float
}

// MatchIntConstant checks if the current token is an integer constant.
func (l *Lexer) MatchIntConstant() bool {
	return l.current().kind == scanner.Int
}

// MatchStringConstant checks if the current token is a string constant (single or double quoted).
func (l *Lexer) MatchStringConstant() bool {
	k := l.current().kind
	return k == QuotedString || k == scanner.String
}

// MatchOperator checks if the current token is a comparison operator.
func (l *Lexer) MatchOperator() bool {
	return l.current().kind == Operator
}

// MatchKeyword checks if the current token is the specified keyword (case-insensitive).
func (l *Lexer) MatchKeyword(w string) bool {
	return isKeyword(l.current(), w)
}

// MatchId checks if the current token is an identifier (not a keyword).
func (l *Lexer) MatchId() bool {
	tok := l.current()
	return tok.kind == scanner.Ident && !l.keywords[tok.text]
}

// PeekKeyword checks if the token after the current one is the specified keyword.
func (l *Lexer) PeekKeyword(w string) bool {
	return isKeyword(l.peek(1), w)
}

// PeekDelim checks if the token after the current one is the specified delimiter.
func (l *Lexer) PeekDelim(d rune) bool {
	return l.peek(1).kind == d
}

// PeekOperator checks if the token after the current one is a comparison operator.
func (l *Lexer) PeekOperator() bool {
	return l.peek(1).kind == Operator
}

// EatDelim consumes the current token if it matches the specified delimiter, then advances to the next token.
// Returns ErrBadSyntax if the token doesn't match.
func (l *Lexer) EatDelim(d rune) error {
	if !l.MatchDelim(d) {
		return l.unexpected(fmt.Sprintf("%q", d))
	}
	l.advance()
	return nil
}

// EatIntConstant consumes the current token if it's an integer constant, then advances to the next token.
// Returns the integer value and ErrBadSyntax if the token is not an integer.
func (l *Lexer) EatIntConstant() (int, error) {
	if !l.MatchIntConstant() {
		return 0, l.unexpected("integer")
	}

	var i int
	_, err := fmt.Sscanf(l.current().text, "%d", &i)
	if err != nil {
		return 0, ErrBadSyntax
	}

	l.advance()
	return i, nil
}

// EatNumberConstant consumes the current numeric token and returns its text.
func (l *Lexer) EatNumberConstant() (string, error) {
	if !l.MatchNumberConstant() {
		return "", l.unexpected("number")
	}
	s := l.current().text
	l.advance()
	return s, nil
}

// EatStringConstant consumes the current token if it's a string constant, then advances to the next token.
// Returns the unquoted string value and ErrBadSyntax if the token is not a string.
func (l *Lexer) EatStringConstant() (string, error) {
	if !l.MatchStringConstant() {
		return "", l.unexpected("string")
	}

	tok := l.current()
	s := tok.text
	if tok.kind == scanner.String && len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}

	l.advance()
	return s, nil
}

// EatOperator consumes the current comparison operator and returns its spelling.
func (l *Lexer) EatOperator() (string, error) {
	if !l.MatchOperator() {
		return "", l.unexpected("comparison operator")
	}
	s := l.current().text
	l.advance()
	return s, nil
}

// EatKeyword consumes the current token if it matches the specified keyword (case-insensitive), then advances to the next token.
// Returns ErrBadSyntax if the token is not the expected keyword.
func (l *Lexer) EatKeyword(w string) error {
	if !l.MatchKeyword(w) {
		return l.unexpected(strings.ToUpper(w))
	}
	l.advance()
	return nil
}

// EatId consumes the current token if it's an identifier (not a keyword), then advances to the next token.
// Returns the identifier name and ErrBadSyntax if the token is not an identifier.
func (l *Lexer) EatId() (string, error) {
	if !l.MatchId() {
		return "", l.unexpected("identifier")
	}
	s := l.current().text
	l.advance()
	return s, nil
}

func (l *Lexer) unexpected(want string) error {
	tok := l.current()
	found := tok.text
	if tok.kind == scanner.EOF {
		found = "end of input"
	}
	return fmt.Errorf("%w: expected %s, found %q", ErrBadSyntax, want, found)
}

func isKeyword(tok token, w string) bool {
	return tok.kind == scanner.Ident && strings.EqualFold(tok.text, w)
}

func isDecimalDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
