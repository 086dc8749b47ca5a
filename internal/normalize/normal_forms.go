package normalize

import (
	"fmt"
	"strings"
)

// NormalForm is the verdict for one normal form. A form only passes when
// the forms below it pass too.
type NormalForm struct {
	Name       string   `json:"name"`
	Pass       bool     `json:"pass"`
	Violations []string `json:"violations"`
}

func newNormalForm(name string, violations []string, prev *NormalForm) NormalForm {
	if violations == nil {
		violations = []string{}
	}
	return NormalForm{
		Name:       name,
		Pass:       len(violations) == 0 && (prev == nil || prev.Pass),
		Violations: violations,
	}
}

// Check1NF flags attribute names that look like repeating groups, e.g.
// "PHONES[]" or "{TAGS}". Names are the only information there is about
// atomicity.
func Check1NF(s Schema) NormalForm {
	var violations []string
	for _, a := range s.Attributes {
		if strings.ContainsAny(a, "[]{}") {
			violations = append(violations, fmt.Sprintf("attribute %q appears to hold non-atomic values", a))
		}
	}
	return newNormalForm("1NF", violations, nil)
}

// Check2NF flags partial dependencies: a non-prime attribute determined by
// a proper subset of a candidate key.
func Check2NF(s Schema, keys []AttrSet) NormalForm {
	nf1 := Check1NF(s)
	prime := PrimeAttributes(keys)

	var violations []string
	for _, fd := range s.FDs {
		nonPrime := fd.RHS.Minus(prime).Minus(fd.LHS)
		if len(nonPrime) == 0 {
			continue
		}
		for _, k := range keys {
			if k.ContainsAll(fd.LHS) && len(fd.LHS) < len(k) {
				violations = append(violations, fmt.Sprintf("%s → %s is a partial dependency on key {%s}", fd.LHS, nonPrime, k))
				break
			}
		}
	}
	return newNormalForm("2NF", violations, &nf1)
}

// Check3NF flags transitive dependencies: a non-prime attribute determined
// by something that is not a superkey.
func Check3NF(s Schema, keys []AttrSet) NormalForm {
	nf2 := Check2NF(s, keys)
	prime := PrimeAttributes(keys)

	var violations []string
	for _, fd := range s.FDs {
		if IsSuperkey(fd.LHS, s.Attributes, s.FDs) {
			continue
		}
		if nonPrime := fd.RHS.Minus(prime).Minus(fd.LHS); len(nonPrime) > 0 {
			violations = append(violations, fmt.Sprintf("%s → %s is a transitive dependency", fd.LHS, nonPrime))
		}
	}
	return newNormalForm("3NF", violations, &nf2)
}

// CheckBCNF flags every non-trivial dependency whose left side is not a
// superkey.
func CheckBCNF(s Schema, keys []AttrSet) NormalForm {
	nf3 := Check3NF(s, keys)
	var violations []string
	for _, fd := range bcnfViolations(s.Attributes, s.FDs) {
		violations = append(violations, fmt.Sprintf("%s violates BCNF (%s is not a superkey)", fd, fd.LHS))
	}
	return newNormalForm("BCNF", violations, &nf3)
}

func bcnfViolations(attrs AttrSet, fds []FD) []FD {
	var out []FD
	for _, fd := range fds {
		if !fd.Trivial() && !IsSuperkey(fd.LHS, attrs, fds) {
			out = append(out, fd)
		}
	}
	return out
}

// NormalForms checks 1NF through BCNF in order.
func NormalForms(s Schema, keys []AttrSet) []NormalForm {
	return []NormalForm{
		Check1NF(s),
		Check2NF(s, keys),
		Check3NF(s, keys),
		CheckBCNF(s, keys),
	}
}
