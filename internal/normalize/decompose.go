package normalize

import (
	"fmt"

	"github.com/yashagw/relcore/internal/relation"
)

// DefaultMaxIterations bounds the number of splits Decompose performs.
const DefaultMaxIterations = 100

// Decomposed is one relation of a BCNF decomposition with the dependencies
// projected onto it.
type Decomposed struct {
	Name       string  `json:"name"`
	Attributes AttrSet `json:"attributes"`
	FDs        []FD    `json:"fds"`
	Key        AttrSet `json:"key"`
}

// Decompose splits the schema until every part is in BCNF. A part with a
// violating dependency X → Y is replaced by R1 = X ∪ Y and R2 = X ∪ (R − Y),
// named after the part with 1 and 2 appended. Each part keeps the original
// dependencies that fall entirely inside it.
//
// Every split removes attributes from the part it replaces, so the loop
// terminates; maxIterations still caps the number of splits and returns
// ErrDecompositionNonConvergence when reached. maxIterations <= 0 means
// DefaultMaxIterations.
func Decompose(s Schema, maxIterations int) ([]Decomposed, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	name := s.Name
	if name == "" {
		name = "R"
	}
	parts := []Decomposed{{Name: name, Attributes: s.Attributes, FDs: s.FDs}}

	for iteration := 0; ; iteration++ {
		i, fd, found := firstViolation(parts)
		if !found {
			break
		}
		if iteration == maxIterations {
			return nil, fmt.Errorf("%w after %d splits", ErrDecompositionNonConvergence, maxIterations)
		}
		part := parts[i]
		r1 := fd.LHS.Union(fd.RHS)
		r2 := fd.LHS.Union(part.Attributes.Minus(fd.RHS))
		split := []Decomposed{
			{Name: part.Name + "1", Attributes: r1, FDs: projectFDs(part.FDs, r1)},
			{Name: part.Name + "2", Attributes: r2, FDs: projectFDs(part.FDs, r2)},
		}
		parts = append(parts[:i], append(split, parts[i+1:]...)...)
	}

	for i := range parts {
		parts[i].Key = FindKey(parts[i].Attributes, parts[i].FDs)
		if parts[i].FDs == nil {
			parts[i].FDs = []FD{}
		}
	}
	return parts, nil
}

func firstViolation(parts []Decomposed) (int, FD, bool) {
	for i, p := range parts {
		if v := bcnfViolations(p.Attributes, p.FDs); len(v) > 0 {
			return i, v[0], true
		}
	}
	return 0, FD{}, false
}

// projectFDs keeps the dependencies whose attributes all lie in attrs.
func projectFDs(fds []FD, attrs AttrSet) []FD {
	var out []FD
	for _, fd := range fds {
		if attrs.ContainsAll(fd.LHS) && attrs.ContainsAll(fd.RHS) {
			out = append(out, fd)
		}
	}
	return out
}

// DependencyPreserving reports whether every original dependency can still
// be derived from the dependencies kept by the parts.
func DependencyPreserving(fds []FD, parts []Decomposed) bool {
	var kept []FD
	for _, p := range parts {
		kept = append(kept, p.FDs...)
	}
	for _, fd := range fds {
		if !Closure(fd.LHS, kept).ContainsAll(fd.RHS) {
			return false
		}
	}
	return true
}

// VerifyLossless projects rel onto every part and checks that the natural
// join of the projections gives back exactly the rows of rel. Part
// attributes are matched to columns of rel ignoring case.
func VerifyLossless(rel *relation.Relation, parts []Decomposed) (bool, error) {
	if len(parts) == 0 {
		return false, nil
	}
	var joined *relation.Relation
	for _, p := range parts {
		proj, err := rel.Project(p.Attributes...)
		if err != nil {
			return false, fmt.Errorf("project %s: %w", p.Name, err)
		}
		if joined == nil {
			joined = proj
			continue
		}
		joined = joined.NaturalJoin(proj)
	}
	if joined.Arity() != rel.Arity() {
		return false, nil
	}
	reordered, err := joined.Pick(rel.Columns()...)
	if err != nil {
		return false, err
	}
	return reordered.SameRows(rel), nil
}
