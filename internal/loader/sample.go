package loader

import (
	"github.com/yashagw/relcore/internal/metadata"
	"github.com/yashagw/relcore/internal/relation"
)

// SampleCatalog holds the demo tables: Students, Grades and Courses for the
// algebra operators, and employees, departments, projects and managers for
// SQL queries.
func SampleCatalog() *metadata.Catalog {
	return metadata.NewCatalog(
		table("Students", []string{"ID", "Name", "Age", "Major"},
			[]any{"1", "Arjun Sharma", "20", "CS"},
			[]any{"2", "Priya Patel", "22", "Math"},
			[]any{"3", "Rahul Kumar", "19", "CS"},
			[]any{"4", "Sneha Gupta", "21", "Physics"},
			[]any{"5", "Vikram Singh", "23", "CS"},
			[]any{"6", "Ananya Iyer", "20", "Math"},
		),
		table("Grades", []string{"StudentID", "Course", "Grade"},
			[]any{"1", "Database Systems", "A"},
			[]any{"2", "Calculus", "B+"},
			[]any{"1", "Data Structures", "A+"},
			[]any{"3", "Database Systems", "B"},
			[]any{"4", "Physics Lab", "A"},
			[]any{"5", "Operating Systems", "B+"},
			[]any{"6", "Statistics", "A"},
		),
		table("Courses", []string{"CourseID", "CourseName", "Credits"},
			[]any{"CSE301", "Database Systems", "4"},
			[]any{"MAT201", "Calculus", "3"},
			[]any{"CSE202", "Data Structures", "4"},
			[]any{"CSE401", "Operating Systems", "4"},
			[]any{"PHY301", "Physics Lab", "2"},
			[]any{"MAT301", "Statistics", "3"},
		),
		table("employees", []string{"id", "name", "department", "salary", "hire_date"},
			[]any{1, "John Smith", "Engineering", 75000, "2020-01-15"},
			[]any{2, "Jane Doe", "Marketing", 65000, "2019-06-20"},
			[]any{3, "Bob Wilson", "Engineering", 80000, "2018-03-10"},
			[]any{4, "Alice Brown", "HR", 55000, "2021-02-28"},
			[]any{5, "Charlie Davis", "Marketing", 70000, "2020-09-05"},
			[]any{6, "Diana Evans", "Engineering", 85000, "2017-11-12"},
			[]any{7, "Edward Miller", "Sales", 60000, "2022-01-03"},
			[]any{8, "Fiona Garcia", "HR", 52000, "2021-07-18"},
		),
		table("departments", []string{"id", "name", "budget", "location"},
			[]any{1, "Engineering", 500000, "Building A"},
			[]any{2, "Marketing", 300000, "Building B"},
			[]any{3, "HR", 150000, "Building A"},
			[]any{4, "Sales", 250000, "Building C"},
		),
		table("projects", []string{"id", "name", "manager_id", "status"},
			[]any{1, "Website Redesign", 1, "Active"},
			[]any{2, "Mobile App", 3, "Active"},
			[]any{3, "Marketing Campaign", 2, "Completed"},
			[]any{4, "Data Analytics", 6, "Planning"},
		),
		table("managers", []string{"id", "name", "department"},
			[]any{1, "John Smith", "Engineering"},
			[]any{2, "Jane Doe", "Marketing"},
			[]any{3, "Bob Wilson", "Engineering"},
		),
	)
}

// table builds a fixture. All-string rows go through the same number
// detection as user input; fixtures are static, so a bad row panics.
func table(name string, columns []string, rows ...[]any) *relation.Relation {
	r, err := relation.New(name, columns)
	if err != nil {
		panic(err)
	}
	for _, row := range rows {
		if cells, ok := stringCells(row); ok {
			err = r.AddStrings(cells...)
		} else {
			err = r.AddAny(row...)
		}
		if err != nil {
			panic(err)
		}
	}
	return r
}

func stringCells(row []any) ([]string, bool) {
	out := make([]string, len(row))
	for i, c := range row {
		s, ok := c.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
