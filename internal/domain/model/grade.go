package model

import (
	"fmt"
	"strconv"
)

// Grade is the ordinal outcome category of a student.
type Grade string

// Recognised grade categories.
const (
	GradeFail        Grade = "fail"
	GradePass        Grade = "pass"
	GradeMerit       Grade = "merit"
	GradeDistinction Grade = "distinction"
)

// gradeNumeric is the fixed ordinal encoding.
var gradeNumeric = map[Grade]int{
	GradeFail:        1,
	GradePass:        2,
	GradeMerit:       3,
	GradeDistinction: 4,
}

// ClassOrder lists the grades in lexicographic order; it is the label order of
// confusion matrices and the class index order used by classifiers.
var ClassOrder = []Grade{GradeDistinction, GradeFail, GradeMerit, GradePass}

// String implements fmt.Stringer.
func (g Grade) String() string { return string(g) }

// Valid reports whether g is one of the four recognised categories.
func (g Grade) Valid() bool {
	_, ok := gradeNumeric[g]
	return ok
}

// Numeric returns the ordinal encoding of g.
func (g Grade) Numeric() (int, error) {
	n, ok := gradeNumeric[g]
	if !ok {
		return 0, SchemaError("model.Grade.Numeric", "final_grade", fmt.Sprintf("unrecognised grade %q", string(g)))
	}
	return n, nil
}

// ClassIndex returns the position of g in ClassOrder.
func (g Grade) ClassIndex() (int, error) {
	for i, c := range ClassOrder {
		if c == g {
			return i, nil
		}
	}
	return -1, SchemaError("model.Grade.ClassIndex", "final_grade", fmt.Sprintf("unrecognised grade %q", string(g)))
}

// GradeFromNumeric is the inverse of Grade.Numeric.
func GradeFromNumeric(n int) (Grade, error) {
	for g, v := range gradeNumeric {
		if v == n {
			return g, nil
		}
	}
	return "", SchemaError("model.GradeFromNumeric", "grade_numeric", "unrecognised grade code "+strconv.Itoa(n))
}
