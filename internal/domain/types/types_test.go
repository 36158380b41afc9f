package types_test

import (
	"testing"

	types "github.com/okian/gradecast/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRankImportances(t *testing.T) {
	Convey("Given importance scores for four columns", t, func() {
		columns := []string{"total_activities", "active_days", "quiz", "forumng"}
		scores := []float64{0.1, 0.4, 0.1, 0.4}

		Convey("When ranking them", func() {
			ranking := types.RankImportances(columns, scores)

			Convey("Then higher scores should come first", func() {
				So(ranking[0].Score, ShouldEqual, 0.4)
				So(ranking[3].Score, ShouldEqual, 0.1)
			})

			Convey("And ties should keep column order", func() {
				So(ranking[0].Feature, ShouldEqual, "active_days")
				So(ranking[1].Feature, ShouldEqual, "forumng")
				So(ranking[2].Feature, ShouldEqual, "total_activities")
				So(ranking[3].Feature, ShouldEqual, "quiz")
			})

			Convey("And ranks should be 1-based and contiguous", func() {
				for i, r := range ranking {
					So(r.Rank, ShouldEqual, i+1)
				}
			})
		})
	})
}

func TestTopFeatures(t *testing.T) {
	Convey("Given a ranking of three features", t, func() {
		ranking := types.RankImportances([]string{"a", "b", "c"}, []float64{0.2, 0.5, 0.3})

		Convey("When asking for the top two", func() {
			So(types.TopFeatures(ranking, 2), ShouldResemble, []string{"b", "c"})
		})

		Convey("When asking for more than available", func() {
			So(types.TopFeatures(ranking, 10), ShouldResemble, []string{"b", "c", "a"})
		})

		Convey("When asking for none", func() {
			So(types.TopFeatures(ranking, 0), ShouldBeEmpty)
		})
	})
}
