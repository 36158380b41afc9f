package classifier_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/okian/gradecast/internal/domain/classifier"
	. "github.com/smartystreets/goconvey/convey"
)

// blobs returns four well separated clusters in the first two features plus
// one noise feature.
func blobs(perClass int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	centers := [][2]float64{{-4, -4}, {-4, 4}, {4, -4}, {4, 4}}
	var x [][]float64
	var y []int
	for k, c := range centers {
		for i := 0; i < perClass; i++ {
			x = append(x, []float64{
				c[0] + rng.NormFloat64()*0.5,
				c[1] + rng.NormFloat64()*0.5,
				rng.NormFloat64(),
			})
			y = append(y, k)
		}
	}
	return x, y
}

func accuracy(pred, y []int) float64 {
	hit := 0
	for i := range y {
		if pred[i] == y[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(y))
}

func TestClassifiers_Separable(t *testing.T) {
	families := []classifier.Family{
		{Name: classifier.NameRandomForest, New: func() classifier.Classifier {
			return classifier.NewRandomForest(classifier.WithTrees(25), classifier.WithForestSeed(7))
		}},
		{Name: classifier.NameLogistic, New: func() classifier.Classifier {
			return classifier.NewLogistic()
		}},
	}

	Convey("Given four separable clusters", t, func() {
		x, y := blobs(30, 1)
		testX, testY := blobs(10, 2)

		for _, fam := range families {
			Convey("When fitting "+fam.Name, func() {
				m := fam.New()
				So(m.Name(), ShouldEqual, fam.Name)
				So(m.Fit(context.Background(), x, y, 4), ShouldBeNil)

				Convey("Then it should classify held out points", func() {
					pred, err := m.Predict(testX)
					So(err, ShouldBeNil)
					So(accuracy(pred, testY), ShouldBeGreaterThanOrEqualTo, 0.95)
				})
			})
		}
	})
}

func TestRandomForest_Importances(t *testing.T) {
	Convey("Given a forest fitted on clusters with a noise column", t, func() {
		x, y := blobs(30, 3)
		f := classifier.NewRandomForest(classifier.WithTrees(30))
		So(f.Fit(context.Background(), x, y, 4), ShouldBeNil)
		imp := f.Importances()

		Convey("Then importances should be normalised and favour the signal", func() {
			So(len(imp), ShouldEqual, 3)
			So(imp[0]+imp[1]+imp[2], ShouldAlmostEqual, 1, 1e-9)
			So(imp[2], ShouldBeLessThan, imp[0])
			So(imp[2], ShouldBeLessThan, imp[1])
		})

		Convey("Then refitting with the same seed should be deterministic", func() {
			g := classifier.NewRandomForest(classifier.WithTrees(30))
			So(g.Fit(context.Background(), x, y, 4), ShouldBeNil)
			So(g.Importances(), ShouldResemble, imp)
		})
	})

	Convey("Given a depth limited forest", t, func() {
		x, y := blobs(10, 4)
		f := classifier.NewRandomForest(
			classifier.WithTrees(5),
			classifier.WithMaxDepth(1),
			classifier.WithMinSamplesSplit(4),
			classifier.WithMinSamplesLeaf(2),
		)
		So(f.Fit(context.Background(), x, y, 4), ShouldBeNil)
		pred, err := f.Predict(x)
		So(err, ShouldBeNil)
		So(len(pred), ShouldEqual, len(x))
	})
}

func TestLogistic(t *testing.T) {
	Convey("Given a logistic regression on clusters", t, func() {
		x, y := blobs(20, 5)

		Convey("When regularisation is strong", func() {
			weak := classifier.NewLogistic(classifier.WithC(100))
			strong := classifier.NewLogistic(classifier.WithC(0.01))
			So(weak.Fit(context.Background(), x, y, 4), ShouldBeNil)
			So(strong.Fit(context.Background(), x, y, 4), ShouldBeNil)

			Convey("Then coefficients should shrink", func() {
				norm := func(w [][]float64) float64 {
					var s float64
					for _, row := range w {
						for _, v := range row {
							s += v * v
						}
					}
					return math.Sqrt(s)
				}
				So(norm(strong.Coefficients()), ShouldBeLessThan, norm(weak.Coefficients()))
			})
		})

		Convey("When the tolerance is loose", func() {
			l := classifier.NewLogistic(classifier.WithTolerance(10), classifier.WithLearningRate(0.5), classifier.WithMaxIter(50))
			So(l.Fit(context.Background(), x, y, 4), ShouldBeNil)

			Convey("Then training should stop after the first step", func() {
				So(l.Iterations(), ShouldEqual, 1)
			})
		})
	})
}

func TestClassifiers_Errors(t *testing.T) {
	Convey("Given invalid input", t, func() {
		ctx := context.Background()
		models := []classifier.Classifier{classifier.NewRandomForest(), classifier.NewLogistic()}

		for _, m := range models {
			Convey("Then "+m.Name()+" should reject it", func() {
				_, err := m.Predict([][]float64{{1}})
				So(errors.Is(err, classifier.ErrNotFitted), ShouldBeTrue)

				So(errors.Is(m.Fit(ctx, nil, nil, 4), classifier.ErrEmptyInput), ShouldBeTrue)
				So(errors.Is(m.Fit(ctx, [][]float64{{1}, {2}}, []int{0}, 4), classifier.ErrDimension), ShouldBeTrue)
				So(errors.Is(m.Fit(ctx, [][]float64{{1}, {2, 3}}, []int{0, 1}, 4), classifier.ErrDimension), ShouldBeTrue)
				So(errors.Is(m.Fit(ctx, [][]float64{{1}, {2}}, []int{0, 9}, 4), classifier.ErrDimension), ShouldBeTrue)

				So(m.Fit(ctx, [][]float64{{1}, {2}}, []int{0, 1}, 2), ShouldBeNil)
				_, err = m.Predict([][]float64{{1, 2}})
				So(errors.Is(err, classifier.ErrDimension), ShouldBeTrue)
			})
		}

		Convey("Then a cancelled context should stop training", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			x, y := blobs(5, 6)
			So(errors.Is(classifier.NewRandomForest().Fit(cctx, x, y, 4), context.Canceled), ShouldBeTrue)
			So(errors.Is(classifier.NewLogistic().Fit(cctx, x, y, 4), context.Canceled), ShouldBeTrue)
		})
	})
}
