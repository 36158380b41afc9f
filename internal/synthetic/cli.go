package synthetic

import "os"

// ShowHelp prints usage information for the cohort generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`gradecast cohort generator
==========================

Writes a reproducible synthetic cohort of activity events and final grades
as two CSV files that the gradecast pipeline can read.

Usage:
  go run ./cmd/gen-events [options]

Options:
  -students int
        Number of students (default 200)
  -days int
        Length of the timeline in days (default 120)
  -start string
        First day of the timeline, YYYY-MM-DD (default 2024-01-01)
  -seed int
        Random seed (default 42)
  -unlabeled float
        Share of students without a label (default 0.05)
  -events string
        Output events file (default "data/events.csv")
  -labels string
        Output labels file (default "data/labels.csv")
  -help
        Show this help message

Examples:
  # Default cohort
  go run ./cmd/gen-events

  # Larger cohort over a full term
  go run ./cmd/gen-events -students 2000 -days 260 -seed 7
`)
}
