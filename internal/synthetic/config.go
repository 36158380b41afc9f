package synthetic

import (
	"time"

	"github.com/okian/gradecast/internal/domain/model"
)

// Config holds configuration for cohort generation.
type Config struct {
	Students          int       // Number of students
	Days              int       // Length of the timeline in days
	Start             time.Time // First day of the timeline
	Seed              int64     // Seed for reproducible output
	UnlabeledFraction float64   // Share of students generated without a label
	EventsFile        string    // Output CSV for events
	LabelsFile        string    // Output CSV for labels
}

// Cohort is a generated set of events and labels.
type Cohort struct {
	Events []model.Event
	Labels []model.Label
}

// Stats holds generation statistics.
type Stats struct {
	StudentsGenerated int
	EventsGenerated   int
	LabelsGenerated   int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
