package normalize

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrBadDependency               = errors.New("malformed functional dependency")
	ErrUnknownAttribute            = errors.New("unknown attribute")
	ErrEmptySchema                 = errors.New("schema has no attributes")
	ErrDecompositionNonConvergence = errors.New("BCNF decomposition did not converge")
)

// Normalize trims an attribute name and upper-cases it, so "sid" and " SID"
// name the same attribute.
func Normalize(attr string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(attr))
}

// AttrSet is a sorted set of attribute names without duplicates.
type AttrSet []string

// NewAttrSet normalizes the names and drops empty ones and duplicates.
func NewAttrSet(attrs ...string) AttrSet {
	out := make(AttrSet, 0, len(attrs))
	for _, a := range attrs {
		if a = Normalize(a); a != "" {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (s AttrSet) Contains(attr string) bool {
	_, ok := slices.BinarySearch(s, attr)
	return ok
}

// ContainsAll reports whether other is a subset of s.
func (s AttrSet) ContainsAll(other AttrSet) bool {
	for _, a := range other {
		if !s.Contains(a) {
			return false
		}
	}
	return true
}

func (s AttrSet) Union(other AttrSet) AttrSet {
	out := make(AttrSet, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s AttrSet) Minus(other AttrSet) AttrSet {
	out := AttrSet{}
	for _, a := range s {
		if !other.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s AttrSet) Intersect(other AttrSet) AttrSet {
	out := AttrSet{}
	for _, a := range s {
		if other.Contains(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s AttrSet) Equal(other AttrSet) bool {
	return slices.Equal(s, other)
}

func (s AttrSet) String() string {
	return strings.Join(s, ", ")
}

// FD is a functional dependency LHS → RHS.
type FD struct {
	LHS AttrSet `json:"lhs"`
	RHS AttrSet `json:"rhs"`
}

func NewFD(lhs, rhs []string) FD {
	return FD{LHS: NewAttrSet(lhs...), RHS: NewAttrSet(rhs...)}
}

// Trivial reports whether the right side is contained in the left side.
func (fd FD) Trivial() bool {
	return fd.LHS.ContainsAll(fd.RHS)
}

func (fd FD) String() string {
	return fd.LHS.String() + " → " + fd.RHS.String()
}

// Schema is a relation schema: a name, its attributes and the functional
// dependencies that hold on it.
type Schema struct {
	Name       string  `json:"name"`
	Attributes AttrSet `json:"attributes"`
	FDs        []FD    `json:"fds"`
}

// Validate checks that every dependency has both sides and only names
// declared attributes.
func (s Schema) Validate() error {
	if len(s.Attributes) == 0 {
		return ErrEmptySchema
	}
	for _, fd := range s.FDs {
		if len(fd.LHS) == 0 || len(fd.RHS) == 0 {
			return fmt.Errorf("%w: %q needs attributes on both sides", ErrBadDependency, fd.String())
		}
		if missing := fd.LHS.Union(fd.RHS).Minus(s.Attributes); len(missing) > 0 {
			return fmt.Errorf("%w: %s in %s", ErrUnknownAttribute, missing, fd)
		}
	}
	return nil
}

// ParseAttributes reads a comma-separated attribute list such as "SID, SNAME".
func ParseAttributes(text string) (AttrSet, error) {
	attrs := NewAttrSet(strings.Split(text, ",")...)
	if len(attrs) == 0 {
		return nil, ErrEmptySchema
	}
	return attrs, nil
}

// ParseDependency reads "A, B -> C". The arrow may also be written →.
// When known is not empty every attribute must be one of them.
func ParseDependency(text string, known AttrSet) (FD, error) {
	text = strings.ReplaceAll(text, "→", "->")
	lhs, rhs, ok := strings.Cut(text, "->")
	if !ok || strings.Contains(rhs, "->") {
		return FD{}, fmt.Errorf("%w: %q must have the form A, B -> C", ErrBadDependency, text)
	}
	fd := NewFD(strings.Split(lhs, ","), strings.Split(rhs, ","))
	if len(fd.LHS) == 0 || len(fd.RHS) == 0 {
		return FD{}, fmt.Errorf("%w: %q needs attributes on both sides", ErrBadDependency, text)
	}
	if len(known) > 0 {
		if missing := fd.LHS.Union(fd.RHS).Minus(known); len(missing) > 0 {
			return FD{}, fmt.Errorf("%w: %s", ErrUnknownAttribute, missing)
		}
	}
	return fd, nil
}

// ParseDependencies reads one dependency per line or per ';'. Blank entries
// and repeated dependencies are skipped.
func ParseDependencies(text string, known AttrSet) ([]FD, error) {
	var fds []FD
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ';' }) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fd, err := ParseDependency(line, known)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(fds, func(f FD) bool { return f.LHS.Equal(fd.LHS) && f.RHS.Equal(fd.RHS) }) {
			fds = append(fds, fd)
		}
	}
	return fds, nil
}
