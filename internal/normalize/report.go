package normalize

import (
	"github.com/yashagw/relcore/internal/relation"
)

// Report is the full analysis of a schema.
type Report struct {
	Relation      string       `json:"relation"`
	Attributes    AttrSet      `json:"attributes"`
	FDs           []FD         `json:"fds"`
	CandidateKeys []AttrSet    `json:"candidate_keys"`
	NormalForms   []NormalForm `json:"normal_forms"`
	// Decomposition is only computed when the schema is not in BCNF.
	Decomposition []Decomposed `json:"decomposition,omitempty"`
	// Lossless holds by construction of the split; LosslessVerified is set
	// when sample rows were checked as well.
	Lossless             bool `json:"lossless"`
	LosslessVerified     bool `json:"lossless_verified"`
	DependencyPreserving bool `json:"dependency_preserving"`
}

// Highest returns the name of the highest normal form that passes, or ""
// when not even 1NF does.
func (r *Report) Highest() string {
	highest := ""
	for _, nf := range r.NormalForms {
		if !nf.Pass {
			break
		}
		highest = nf.Name
	}
	return highest
}

// NormalForm returns the verdict for the named form.
func (r *Report) NormalForm(name string) (NormalForm, bool) {
	for _, nf := range r.NormalForms {
		if nf.Name == name {
			return nf, true
		}
	}
	return NormalForm{}, false
}

type Analyzer struct {
	maxIterations int
}

// NewAnalyzer creates an analyzer whose decompositions stop after
// maxIterations splits; maxIterations <= 0 means DefaultMaxIterations.
func NewAnalyzer(maxIterations int) *Analyzer {
	return &Analyzer{
		maxIterations: maxIterations,
	}
}

// Analyze finds the candidate keys, checks 1NF through BCNF, and decomposes
// the schema when it is not in BCNF.
func (a *Analyzer) Analyze(s Schema) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	fds := s.FDs
	if fds == nil {
		fds = []FD{}
	}
	keys := CandidateKeys(s.Attributes, s.FDs)
	report := &Report{
		Relation:             s.Name,
		Attributes:           s.Attributes,
		FDs:                  fds,
		CandidateKeys:        keys,
		NormalForms:          NormalForms(s, keys),
		Lossless:             true,
		DependencyPreserving: true,
	}
	if report.NormalForms[3].Pass {
		return report, nil
	}

	parts, err := Decompose(s, a.maxIterations)
	if err != nil {
		return nil, err
	}
	report.Decomposition = parts
	report.DependencyPreserving = DependencyPreserving(s.FDs, parts)
	return report, nil
}

// AnalyzeRelation analyzes the schema and, when it was decomposed, also
// checks the decomposition against the rows of rel.
func (a *Analyzer) AnalyzeRelation(s Schema, rel *relation.Relation) (*Report, error) {
	report, err := a.Analyze(s)
	if err != nil {
		return nil, err
	}
	if len(report.Decomposition) == 0 {
		return report, nil
	}
	ok, err := VerifyLossless(rel, report.Decomposition)
	if err != nil {
		return nil, err
	}
	report.Lossless = ok
	report.LosslessVerified = true
	return report, nil
}

// Analyze uses an analyzer with the default iteration cap.
func Analyze(s Schema) (*Report, error) {
	return NewAnalyzer(0).Analyze(s)
}
