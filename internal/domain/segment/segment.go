// Package segment derives weekday and timeline-period labels for events.
package segment

import (
	"strings"
	"time"

	"github.com/okian/gradecast/internal/domain/model"
)

// NumPeriods is the fixed number of timeline buckets.
const NumPeriods = 6

// Period is one of the six contiguous buckets spanning the event timeline.
type Period int

// Timeline buckets in chronological order.
const (
	EarlyStart Period = iota
	Start
	EarlyMid
	Mid
	LateMid
	End
)

var periodNames = [NumPeriods]string{"Early Start", "Start", "Early Mid", "Mid", "Late Mid", "End"}

// String returns the display label, e.g. "Early Mid".
func (p Period) String() string {
	if p < EarlyStart || p > End {
		return "Unknown"
	}
	return periodNames[p]
}

// Slug returns the label in snake case for use in column names.
func (p Period) Slug() string {
	return strings.ReplaceAll(strings.ToLower(p.String()), " ", "_")
}

// Periods returns all periods in order.
func Periods() []Period {
	return []Period{EarlyStart, Start, EarlyMid, Mid, LateMid, End}
}

// Range is the inclusive date range covered by a period. Short timelines can
// leave early periods empty.
type Range struct {
	Period Period
	First  time.Time
	Last   time.Time
	Days   int
}

// Empty reports whether the period covers no day.
func (r Range) Empty() bool { return r.Days == 0 }

// Event is an event annotated with its derived calendar columns.
type Event struct {
	model.Event
	DayOfWeek time.Weekday
	Period    Period
}

// Segmenter maps dates of a fixed timeline onto periods.
type Segmenter struct {
	min   time.Time
	days  int
	width int
	// bounds[i] is the first day offset of period i; bounds[NumPeriods] is days+1.
	bounds [NumPeriods + 1]int
}

// New builds a segmenter for the timeline [minDate, maxDate].
//
// Buckets are (days+1)/6 days wide, at least one day. The last bucket is
// closed on the right and absorbs the remainder so maxDate always lands in End.
func New(minDate, maxDate time.Time) (*Segmenter, error) {
	if minDate.IsZero() || maxDate.IsZero() {
		return nil, model.SchemaError("segment.New", "date", "timeline bounds are required")
	}
	minDate, maxDate = model.Day(minDate), model.Day(maxDate)
	if maxDate.Before(minDate) {
		return nil, model.SchemaError("segment.New", "date", "max date precedes min date")
	}

	days := model.DaysBetween(minDate, maxDate)
	width := (days + 1) / NumPeriods
	if width < 1 {
		width = 1
	}

	s := &Segmenter{min: minDate, days: days, width: width}
	for i := 0; i < NumPeriods; i++ {
		s.bounds[i] = min(i*width, days)
	}
	s.bounds[NumPeriods] = days + 1
	return s, nil
}

// FromEvents builds a segmenter spanning the dates of events.
func FromEvents(events []model.Event) (*Segmenter, error) {
	if len(events) == 0 {
		return nil, model.SchemaError("segment.FromEvents", "date", "no events to segment")
	}
	lo, hi := events[0].Date, events[0].Date
	for _, ev := range events[1:] {
		if ev.Date.Before(lo) {
			lo = ev.Date
		}
		if ev.Date.After(hi) {
			hi = ev.Date
		}
	}
	return New(lo, hi)
}

// Width returns the nominal bucket width in days.
func (s *Segmenter) Width() int { return s.width }

// MinDate returns the first day of the timeline.
func (s *Segmenter) MinDate() time.Time { return s.min }

// MaxDate returns the last day of the timeline.
func (s *Segmenter) MaxDate() time.Time { return s.min.AddDate(0, 0, s.days) }

// Period returns the bucket of date. Dates outside the timeline clamp to the
// nearest bucket.
func (s *Segmenter) Period(date time.Time) Period {
	offset := model.DaysBetween(s.min, date)
	switch {
	case offset < 0:
		offset = 0
	case offset > s.days:
		offset = s.days
	}
	if offset >= s.bounds[End] {
		return End
	}
	return Period(offset / s.width)
}

// Ranges returns the inclusive date range of every period in order. Their
// union is exactly [min date, max date].
func (s *Segmenter) Ranges() []Range {
	out := make([]Range, NumPeriods)
	for i := 0; i < NumPeriods; i++ {
		lo, hi := s.bounds[i], s.bounds[i+1]
		r := Range{Period: Period(i), Days: hi - lo}
		if r.Days > 0 {
			r.First = s.min.AddDate(0, 0, lo)
			r.Last = s.min.AddDate(0, 0, hi-1)
		}
		out[i] = r
	}
	return out
}

// Annotate attaches weekday and period to every event, preserving order.
func (s *Segmenter) Annotate(events []model.Event) []Event {
	out := make([]Event, len(events))
	for i, ev := range events {
		out[i] = Event{
			Event:     ev,
			DayOfWeek: ev.Date.Weekday(),
			Period:    s.Period(ev.Date),
		}
	}
	return out
}
