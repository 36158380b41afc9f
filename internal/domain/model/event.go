// Package model contains domain models passed between layers.
package model

import "time"

// DateLayout is the canonical calendar-date layout used for event dates.
const DateLayout = "2006-01-02"

// Event represents one timestamped interaction of a student with an activity type.
type Event struct {
	StudentID string    // student identifier
	Activity  string    // activity type, e.g. "quiz", "forumng"; open set
	Date      time.Time // calendar day of the interaction (UTC midnight)
}

// NewEvent validates the fields and returns an Event with the date normalised
// to a UTC calendar day.
func NewEvent(studentID, activity string, date time.Time) (Event, error) {
	const op = "model.NewEvent"
	if studentID == "" {
		return Event{}, SchemaError(op, "student_id", "missing student id")
	}
	if activity == "" {
		return Event{}, SchemaError(op, "activity", "missing activity for student "+studentID)
	}
	if date.IsZero() {
		return Event{}, SchemaError(op, "date", "missing date for student "+studentID)
	}
	return Event{StudentID: studentID, Activity: activity, Date: Day(date)}, nil
}

// ParseEvent builds an Event from raw string fields using the given date layout.
func ParseEvent(studentID, activity, date, layout string) (Event, error) {
	if layout == "" {
		layout = DateLayout
	}
	if date == "" {
		return Event{}, SchemaError("model.ParseEvent", "date", "missing date for student "+studentID)
	}
	ts, err := time.Parse(layout, date)
	if err != nil {
		return Event{}, WrapSchemaError("model.ParseEvent", "date", "unparseable date "+date, err)
	}
	return NewEvent(studentID, activity, ts)
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// Label is the final outcome recorded for a student.
type Label struct {
	StudentID  string
	FinalGrade Grade
}

// NewLabel validates required fields. The grade value itself is checked when
// the label is joined into the analytics base table.
func NewLabel(studentID, grade string) (Label, error) {
	if studentID == "" {
		return Label{}, SchemaError("model.NewLabel", "student_id", "missing student id")
	}
	if grade == "" {
		return Label{}, SchemaError("model.NewLabel", "final_grade", "missing grade for student "+studentID)
	}
	return Label{StudentID: studentID, FinalGrade: Grade(grade)}, nil
}
