package synthetic

import "github.com/okian/gradecast/internal/domain/model"

// Default cohort shape.
const (
	DefaultStudents          = 200
	DefaultDays              = 120
	DefaultSeed              = 42
	DefaultUnlabeledFraction = 0.05
	DefaultEventsFile        = "data/events.csv"
	DefaultLabelsFile        = "data/labels.csv"
)

// Events per active day are drawn from [minDailyEvents, minDailyEvents+dailyEventsSpread).
const (
	minDailyEvents    = 1
	dailyEventsSpread = 3
)

// Activities is the catalogue of generated activity types.
var Activities = []string{
	"homepage",
	"quiz",
	"forumng",
	"oucontent",
	"resource",
	"subpage",
	"url",
	"ouwiki",
}

// engagement is the probability that a student of a grade is active on a day.
var engagement = map[model.Grade]float64{
	model.GradeFail:        0.06,
	model.GradePass:        0.16,
	model.GradeMerit:       0.28,
	model.GradeDistinction: 0.42,
}

// focus biases activity choice: students of higher grades favour assessed
// content, weaker students browse.
var focus = map[model.Grade][]float64{
	model.GradeFail:        {5, 1, 2, 1, 2, 2, 2, 1},
	model.GradePass:        {3, 2, 2, 2, 2, 2, 1, 1},
	model.GradeMerit:       {2, 3, 2, 3, 2, 1, 1, 1},
	model.GradeDistinction: {1, 4, 3, 4, 2, 1, 1, 2},
}
