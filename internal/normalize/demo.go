package normalize

import (
	"github.com/yashagw/relcore/internal/relation"
)

// DemoSchema is a student enrollment schema with two partial dependencies.
func DemoSchema() Schema {
	return Schema{
		Name:       "StudentCourse",
		Attributes: NewAttrSet("SID", "SNAME", "CID", "CNAME", "INSTRUCTOR"),
		FDs: []FD{
			NewFD([]string{"SID"}, []string{"SNAME"}),
			NewFD([]string{"CID"}, []string{"CNAME", "INSTRUCTOR"}),
		},
	}
}

// DemoRelation holds enrollments that satisfy the dependencies of DemoSchema.
func DemoRelation() *relation.Relation {
	rel, err := relation.New("StudentCourse", []string{"SID", "SNAME", "CID", "CNAME", "INSTRUCTOR"})
	if err != nil {
		panic(err)
	}
	for _, row := range [][]string{
		{"1", "Arjun Sharma", "CSE301", "Database Systems", "Dr. Rao"},
		{"1", "Arjun Sharma", "MAT201", "Calculus", "Dr. Mehta"},
		{"2", "Priya Patel", "CSE301", "Database Systems", "Dr. Rao"},
		{"2", "Priya Patel", "CSE202", "Data Structures", "Dr. Iyer"},
		{"3", "Rahul Kumar", "CSE202", "Data Structures", "Dr. Iyer"},
		{"4", "Sneha Gupta", "PHY301", "Physics Lab", "Dr. Rao"},
	} {
		if err := rel.AddStrings(row...); err != nil {
			panic(err)
		}
	}
	return rel
}
