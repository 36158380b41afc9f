// Package source loads activity events and outcome labels from external
// storage into typed domain values.
package source

import (
	"context"

	"github.com/okian/gradecast/internal/domain/model"
)

// Source provides the two inputs of an analysis run.
type Source interface {
	Events(ctx context.Context) ([]model.Event, error)
	Labels(ctx context.Context) ([]model.Label, error)
}

// Column names expected in every source.
const (
	ColumnStudentID  = "student_id"
	ColumnActivity   = "activity"
	ColumnDate       = "date"
	ColumnFinalGrade = "final_grade"
)
