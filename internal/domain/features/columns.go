package features

import "github.com/okian/gradecast/internal/domain/segment"

// Fixed aggregate columns.
const (
	TotalActivities      = "total_activities"
	ActiveDays           = "active_days"
	ActivityConsistency  = "activity_consistency"
	FirstHalfActivities  = "first_half_activities"
	SecondHalfActivities = "second_half_activities"
)

// Optional temporal columns.
const (
	WeekendActivityRatio = "weekend_activity_ratio"
	SecondHalfRatio      = "second_half_ratio"
)

// Table-level columns an activity label must not shadow.
const (
	StudentIDColumn    = "student_id"
	FinalGradeColumn   = "final_grade"
	GradeNumericColumn = "grade_numeric"
)

// FixedColumns lists the aggregates produced for every student, in column order.
var FixedColumns = []string{
	TotalActivities,
	ActiveDays,
	ActivityConsistency,
	FirstHalfActivities,
	SecondHalfActivities,
}

// PeriodColumn names the per-period count column, e.g. "period_early_mid_activities".
func PeriodColumn(p segment.Period) string {
	return "period_" + p.Slug() + "_activities"
}

// TemporalColumns lists the optional temporal columns in column order.
func TemporalColumns() []string {
	cols := []string{WeekendActivityRatio, SecondHalfRatio}
	for _, p := range segment.Periods() {
		cols = append(cols, PeriodColumn(p))
	}
	return cols
}
