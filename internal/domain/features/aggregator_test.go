package features_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/gradecast/internal/domain/features"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func day(n int) time.Time {
	return time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n) // a Monday
}

func ev(student, activity string, n int) model.Event {
	return model.Event{StudentID: student, Activity: activity, Date: day(n)}
}

func threeStudents() []model.Event {
	return []model.Event{
		ev("A", "quiz", 0), ev("A", "forumng", 1),
		ev("B", "resource", 5),
		ev("C", "quiz", 0), ev("C", "quiz", 2), ev("C", "oucontent", 5), ev("C", "quiz", 7), ev("C", "homepage", 10),
	}
}

func TestAggregate_Scenario(t *testing.T) {
	Convey("Given three students over a ten day timeline", t, func() {
		res, err := features.NewAggregator().Aggregate(context.Background(), threeStudents())
		So(err, ShouldBeNil)

		Convey("Then the timeline and midpoint should follow the event range", func() {
			So(res.MinDate.Equal(day(0)), ShouldBeTrue)
			So(res.MaxDate.Equal(day(10)), ShouldBeTrue)
			So(res.Midpoint.Equal(day(5)), ShouldBeTrue)
			So(res.Students, ShouldResemble, []string{"A", "B", "C"})
		})

		Convey("Then active days should count distinct dates", func() {
			So(res.Aggregates["A"][features.ActiveDays], ShouldEqual, 2)
			So(res.Aggregates["B"][features.ActiveDays], ShouldEqual, 1)
			So(res.Aggregates["C"][features.ActiveDays], ShouldEqual, 5)
		})

		Convey("Then consistency should be the population deviation of day gaps", func() {
			So(res.Aggregates["A"][features.ActivityConsistency], ShouldEqual, 0)
			So(res.Aggregates["B"][features.ActivityConsistency], ShouldEqual, 0)
			So(res.Aggregates["C"][features.ActivityConsistency], ShouldAlmostEqual, 0.5, 1e-12)
		})

		Convey("Then the single-event student should raise a warning, not an error", func() {
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0].StudentID, ShouldEqual, "B")
			So(res.Warnings[0].Feature, ShouldEqual, features.ActivityConsistency)
		})

		Convey("Then the half split should be complete for every student", func() {
			for _, id := range res.Students {
				agg := res.Aggregates[id]
				So(agg[features.FirstHalfActivities]+agg[features.SecondHalfActivities], ShouldEqual, agg[features.TotalActivities])
			}
			So(res.Aggregates["B"][features.FirstHalfActivities], ShouldEqual, 1)
			So(res.Aggregates["C"][features.SecondHalfActivities], ShouldEqual, 2)
		})

		Convey("Then every vector should carry every column", func() {
			cols := res.Columns()
			So(cols[:5], ShouldResemble, features.FixedColumns)
			So(res.ActivityColumns, ShouldResemble, []string{"forumng", "homepage", "oucontent", "quiz", "resource"})
			for _, id := range res.Students {
				v := res.Vector(id)
				So(len(v), ShouldEqual, len(cols))
				for _, c := range cols {
					_, ok := v[c]
					So(ok, ShouldBeTrue)
				}
			}
			So(res.Vector("B")["quiz"], ShouldEqual, 0)
			So(res.Vector("C")["quiz"], ShouldEqual, 3)
		})
	})
}

func TestAggregate_SameDayRepeats(t *testing.T) {
	Convey("Given a student with repeats on the same day", t, func() {
		events := []model.Event{ev("s", "quiz", 0), ev("s", "quiz", 0), ev("s", "quiz", 4)}
		res, err := features.NewAggregator().Aggregate(context.Background(), events)
		So(err, ShouldBeNil)

		Convey("Then same-day repeats should count as zero gaps", func() {
			// gaps 0 and 4
			So(res.Aggregates["s"][features.ActivityConsistency], ShouldAlmostEqual, 2, 1e-12)
			So(res.Aggregates["s"][features.ActiveDays], ShouldEqual, 2)
			So(res.Warnings, ShouldBeEmpty)
		})
	})
}

func TestAggregate_Temporal(t *testing.T) {
	Convey("Given temporal features are enabled", t, func() {
		agg := features.NewAggregator(features.WithTemporalFeatures(true))
		events := []model.Event{ev("s", "quiz", 0), ev("s", "quiz", 5), ev("s", "quiz", 6), ev("t", "quiz", 11)}
		res, err := agg.Aggregate(context.Background(), events)
		So(err, ShouldBeNil)

		Convey("Then weekend, half and period columns should be present", func() {
			s := res.Aggregates["s"]
			So(s[features.WeekendActivityRatio], ShouldAlmostEqual, 2.0/3.0, 1e-12)
			So(s[features.SecondHalfRatio], ShouldAlmostEqual, 1.0/3.0, 1e-12)
			So(s["period_early_start_activities"], ShouldEqual, 1)
			So(res.Aggregates["t"]["period_end_activities"], ShouldEqual, 1)
			So(res.AggregateColumns, ShouldContain, "period_late_mid_activities")
		})
	})
}

func TestAggregate_Errors(t *testing.T) {
	Convey("Given no events", t, func() {
		_, err := features.NewAggregator().Aggregate(context.Background(), nil)

		Convey("Then it should be a schema error", func() {
			So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
		})
	})

	Convey("Given an activity that shadows a reserved column", t, func() {
		_, err := features.NewAggregator().Aggregate(context.Background(), []model.Event{ev("s", "grade_numeric", 0)})

		Convey("Then it should be a schema error", func() {
			So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "grade_numeric")
		})
	})
}

func TestAggregate_TimeOfDay(t *testing.T) {
	Convey("Given events carrying a time of day", t, func() {
		at := func(n, hour int) time.Time { return day(n).Add(time.Duration(hour) * time.Hour) }
		events := []model.Event{
			{StudentID: "a", Activity: "quiz", Date: at(0, 9)},
			{StudentID: "a", Activity: "quiz", Date: at(0, 14)},
			{StudentID: "a", Activity: "quiz", Date: at(2, 23)},
			{StudentID: "b", Activity: "quiz", Date: at(1, 1)},
			{StudentID: "b", Activity: "quiz", Date: at(4, 18)},
		}
		res, err := features.NewAggregator().Aggregate(context.Background(), events)
		So(err, ShouldBeNil)

		Convey("Then the timeline should span whole days", func() {
			So(res.MinDate, ShouldEqual, day(0))
			So(res.MaxDate, ShouldEqual, day(4))
			So(res.Midpoint, ShouldEqual, day(2))
		})

		Convey("Then events on one calendar day should be one active day", func() {
			So(res.Vector("a")[features.ActiveDays], ShouldEqual, 2)
			So(res.Vector("a")[features.ActivityConsistency], ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Then the half split should compare calendar days", func() {
			So(res.Vector("a")[features.FirstHalfActivities], ShouldEqual, 3)
			So(res.Vector("b")[features.FirstHalfActivities], ShouldEqual, 1)
			So(res.Vector("b")[features.SecondHalfActivities], ShouldEqual, 1)
		})
	})
}

func TestConsistency(t *testing.T) {
	Convey("Given fewer than two dates", t, func() {
		v, ok := features.Consistency([]time.Time{day(3)})
		So(v, ShouldEqual, 0)
		So(ok, ShouldBeFalse)
	})

	Convey("Given a single gap", t, func() {
		v, ok := features.Consistency([]time.Time{day(1), day(6)})
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 0)
	})

	Convey("Given gaps of one and two days", t, func() {
		v, ok := features.Consistency([]time.Time{day(0), day(1), day(3)})
		So(ok, ShouldBeTrue)
		So(v, ShouldAlmostEqual, 0.5, 1e-12)
	})
}
