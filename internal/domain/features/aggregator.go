// Package features turns raw activity events into fixed-width per-student
// feature vectors.
package features

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/internal/domain/segment"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// Result holds the aggregated features of one snapshot.
type Result struct {
	Students         []string // sorted
	AggregateColumns []string
	ActivityColumns  []string // sorted

	// Aggregates holds every aggregate column for every student.
	Aggregates map[string]map[string]float64
	// Activity holds per-activity counts; only observed combinations are present.
	Activity map[string]map[string]float64

	Warnings []model.DegenerateInput

	MinDate  time.Time
	MaxDate  time.Time
	Midpoint time.Time
}

// Columns returns aggregate columns followed by activity columns.
func (r *Result) Columns() []string {
	cols := make([]string, 0, len(r.AggregateColumns)+len(r.ActivityColumns))
	cols = append(cols, r.AggregateColumns...)
	return append(cols, r.ActivityColumns...)
}

// Vector returns the zero-filled feature vector of a student.
func (r *Result) Vector(studentID string) map[string]float64 {
	v := make(map[string]float64, len(r.AggregateColumns)+len(r.ActivityColumns))
	for _, c := range r.AggregateColumns {
		v[c] = r.Aggregates[studentID][c]
	}
	for _, c := range r.ActivityColumns {
		v[c] = r.Activity[studentID][c]
	}
	return v
}

// Aggregator computes per-student features.
type Aggregator struct {
	temporal bool
	logger   logger.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("aggregator")
	}
	return a
}

// studentEvents collects what the aggregates need from one student's events.
type studentEvents struct {
	dates    []time.Time
	weekend  int
	periods  [segment.NumPeriods]int
	activity map[string]float64
}

// Aggregate computes the feature vectors of every student in events.
// Event dates are truncated to their UTC calendar day first.
func (a *Aggregator) Aggregate(ctx context.Context, events []model.Event) (*Result, error) {
	events = calendarDays(events)
	seg, err := segment.FromEvents(events)
	if err != nil {
		metrics.RecordSchemaError("aggregate")
		return nil, err
	}

	aggregateColumns := append([]string(nil), FixedColumns...)
	if a.temporal {
		aggregateColumns = append(aggregateColumns, TemporalColumns()...)
	}
	reserved := make(map[string]struct{}, len(aggregateColumns)+3)
	for _, c := range aggregateColumns {
		reserved[c] = struct{}{}
	}
	reserved[StudentIDColumn] = struct{}{}
	reserved[FinalGradeColumn] = struct{}{}
	reserved[GradeNumericColumn] = struct{}{}

	minDate, maxDate := seg.MinDate(), seg.MaxDate()
	midpoint := minDate.Add(maxDate.Sub(minDate) / 2)

	byStudent := make(map[string]*studentEvents)
	activities := make(map[string]struct{})
	for _, ev := range seg.Annotate(events) {
		if _, clash := reserved[ev.Activity]; clash {
			metrics.RecordSchemaError("aggregate")
			return nil, model.SchemaError("features.Aggregate", "activity",
				"activity label "+ev.Activity+" collides with a reserved column")
		}
		se, ok := byStudent[ev.StudentID]
		if !ok {
			se = &studentEvents{activity: make(map[string]float64)}
			byStudent[ev.StudentID] = se
		}
		se.dates = append(se.dates, ev.Date)
		if ev.DayOfWeek == time.Saturday || ev.DayOfWeek == time.Sunday {
			se.weekend++
		}
		se.periods[ev.Period]++
		se.activity[ev.Activity]++
		activities[ev.Activity] = struct{}{}
	}

	res := &Result{
		Students:         make([]string, 0, len(byStudent)),
		AggregateColumns: aggregateColumns,
		ActivityColumns:  make([]string, 0, len(activities)),
		Aggregates:       make(map[string]map[string]float64, len(byStudent)),
		Activity:         make(map[string]map[string]float64, len(byStudent)),
		MinDate:          minDate,
		MaxDate:          maxDate,
		Midpoint:         midpoint,
	}
	for act := range activities {
		res.ActivityColumns = append(res.ActivityColumns, act)
	}
	sort.Strings(res.ActivityColumns)
	for id := range byStudent {
		res.Students = append(res.Students, id)
	}
	sort.Strings(res.Students)

	for _, id := range res.Students {
		se := byStudent[id]
		sort.Slice(se.dates, func(i, j int) bool { return se.dates[i].Before(se.dates[j]) })

		total := len(se.dates)
		first := 0
		for _, d := range se.dates {
			if !d.After(midpoint) {
				first++
			}
		}
		second := total - first

		consistency, ok := Consistency(se.dates)
		if !ok {
			res.Warnings = append(res.Warnings, model.DegenerateInput{
				StudentID: id,
				Feature:   ActivityConsistency,
				Reason:    "fewer than 2 events; consistency defined as 0",
			})
		}

		agg := map[string]float64{
			TotalActivities:      float64(total),
			ActiveDays:           float64(distinctDays(se.dates)),
			ActivityConsistency:  consistency,
			FirstHalfActivities:  float64(first),
			SecondHalfActivities: float64(second),
		}
		if a.temporal {
			agg[WeekendActivityRatio] = ratio(se.weekend, total)
			agg[SecondHalfRatio] = ratio(second, total)
			for _, p := range segment.Periods() {
				agg[PeriodColumn(p)] = float64(se.periods[p])
			}
		}
		res.Aggregates[id] = agg
		res.Activity[id] = se.activity
	}

	metrics.UpdateStudentsAggregated(len(res.Students))
	if len(res.Warnings) > 0 {
		metrics.RecordDegenerateInputs(len(res.Warnings))
		a.logger.Warn(ctx, "degenerate inputs defined by policy",
			logger.Int("count", len(res.Warnings)),
			logger.String("feature", ActivityConsistency),
		)
	}
	a.logger.Info(ctx, "aggregated features",
		logger.Int("students", len(res.Students)),
		logger.Int("activity_columns", len(res.ActivityColumns)),
		logger.String("midpoint", midpoint.Format(model.DateLayout)),
	)
	return res, nil
}

// Consistency returns the population standard deviation of the day gaps
// between consecutive sorted dates. Same-day repeats count as zero gaps.
// With fewer than two dates it returns 0 and false.
func Consistency(sorted []time.Time) (float64, bool) {
	if len(sorted) < 2 {
		return 0, false
	}
	gaps := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps[i-1] = float64(model.DaysBetween(sorted[i-1], sorted[i]))
	}
	if len(gaps) == 1 {
		return 0, true
	}
	_, std := stat.PopMeanStdDev(gaps, nil)
	return std, true
}

func calendarDays(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, ev := range events {
		ev.Date = model.Day(ev.Date)
		out[i] = ev
	}
	return out
}

func distinctDays(sorted []time.Time) int {
	n := 0
	for i, d := range sorted {
		if i == 0 || !d.Equal(sorted[i-1]) {
			n++
		}
	}
	return n
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
