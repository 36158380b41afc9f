package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/gradecast/internal/adapters/repository"
	"github.com/okian/gradecast/internal/adapters/source"
	service "github.com/okian/gradecast/internal/app"
	"github.com/okian/gradecast/internal/domain/classifier"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/internal/synthetic"
	"github.com/okian/gradecast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	reports []*report.Report
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, r *report.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
	return p.err
}

func cohort() *synthetic.Cohort {
	c, err := synthetic.Generate(context.Background(), synthetic.Config{
		Students:          80,
		Days:              60,
		Seed:              3,
		UnlabeledFraction: 0.1,
	})
	if err != nil {
		panic(err)
	}
	return c
}

func quickHarness(opts ...evaluation.Option) *evaluation.Harness {
	families := evaluation.WithFamilies(
		classifier.Family{Name: classifier.NameRandomForest, New: func() classifier.Classifier {
			return classifier.NewRandomForest(classifier.WithTrees(15), classifier.WithForestSeed(7))
		}},
		classifier.Family{Name: classifier.NameLogistic, New: func() classifier.Classifier {
			return classifier.NewLogistic(classifier.WithMaxIter(200))
		}},
	)
	return evaluation.NewHarness(append([]evaluation.Option{families}, opts...)...)
}

func newService(opts ...service.Option) *service.Service {
	h := quickHarness()
	base := []service.Option{
		service.WithHarness(h),
		service.WithExperimenter(experiment.NewExperimenter(h, experiment.WithWorkers(4))),
	}
	return service.New(append(base, opts...)...)
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a service with an ingested synthetic cohort", t, func() {
		ctx := context.Background()
		pub := &recordingPublisher{}
		broken := &recordingPublisher{err: errors.New("redis down")}
		svc := newService(service.WithPublishers(broken, pub))
		c := cohort()
		So(svc.Ingest(ctx, c.Events, c.Labels), ShouldBeNil)

		Convey("When analyzing the store", func() {
			rep, err := svc.Analyze(ctx)

			Convey("Then the run should succeed despite a failing publisher", func() {
				So(err, ShouldBeNil)
				So(rep.RunID, ShouldNotBeEmpty)
				So(len(pub.reports), ShouldEqual, 1)
				So(pub.reports[0].RunID, ShouldEqual, rep.RunID)
				So(len(broken.reports), ShouldEqual, 1)
			})

			Convey("Then the table should hold every student", func() {
				So(rep.Table.Rows, ShouldEqual, 80)
				So(rep.Table.LabeledRows, ShouldEqual, len(c.Labels))
				So(rep.Columns, ShouldContain, "total_activities")
				So(rep.Columns, ShouldContain, "activity_consistency")
			})

			Convey("Then both families should be evaluated on all features", func() {
				So(len(rep.Full.Results), ShouldEqual, 2)
				So(len(rep.Full.CrossValidation), ShouldEqual, 2)
				So(rep.Full.Ranking, ShouldNotBeEmpty)
				So(rep.Full.TrainSize+rep.Full.TestSize, ShouldEqual, len(c.Labels))
				for _, r := range rep.Full.Results {
					So(r.Accuracy, ShouldBeBetweenOrEqual, 0.0, 1.0)
					So(r.F1Macro, ShouldBeBetweenOrEqual, 0.0, 1.0)
				}
			})

			Convey("Then every subset should be compared for every family", func() {
				So(len(rep.Experiments), ShouldEqual, 8)
				So(rep.Failed(), ShouldBeEmpty)
				_, ok := rep.Best()
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestService_Deterministic(t *testing.T) {
	Convey("Given two services over the same cohort and seed", t, func() {
		ctx := context.Background()
		c := cohort()
		a, b := newService(), newService()
		So(a.Ingest(ctx, c.Events, c.Labels), ShouldBeNil)
		So(b.Ingest(ctx, c.Events, c.Labels), ShouldBeNil)

		ra, err := a.Analyze(ctx)
		So(err, ShouldBeNil)
		rb, err := b.Analyze(ctx)
		So(err, ShouldBeNil)

		Convey("Then the scores should match", func() {
			So(ra.RunID, ShouldNotEqual, rb.RunID)
			for i := range ra.Experiments {
				So(ra.Experiments[i].Subset, ShouldEqual, rb.Experiments[i].Subset)
				So(ra.Experiments[i].Result.Scores, ShouldResemble, rb.Experiments[i].Result.Scores)
			}
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given a service without a source", t, func() {
		_, err := newService().Run(context.Background())

		Convey("Then Run should fail", func() {
			So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
		})
	})

	Convey("Given a synthetic cohort written as CSV", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := synthetic.Config{
			Students:   60,
			Days:       45,
			Seed:       9,
			EventsFile: filepath.Join(dir, "events.csv"),
			LabelsFile: filepath.Join(dir, "labels.csv"),
		}
		stats, err := synthetic.Run(ctx, cfg)
		So(err, ShouldBeNil)

		src, err := source.NewCSVSource(cfg.EventsFile, cfg.LabelsFile)
		So(err, ShouldBeNil)
		svc := newService(service.WithSource(src))

		Convey("When running the pipeline", func() {
			rep, err := svc.Run(ctx)

			Convey("Then every generated student should appear in the report", func() {
				So(err, ShouldBeNil)
				So(rep.Table.Rows, ShouldEqual, stats.StudentsGenerated)
				So(svc.Store().Count(ctx), ShouldEqual, stats.EventsGenerated)
			})
		})
	})
}

func TestService_Errors(t *testing.T) {
	Convey("Given an empty store", t, func() {
		_, err := newService().Analyze(context.Background())

		Convey("Then Analyze should report the empty store", func() {
			So(errors.Is(err, repository.ErrEmpty), ShouldBeTrue)
		})
	})

	Convey("Given a label with an unknown grade", t, func() {
		ctx := context.Background()
		c := cohort()
		labels := append([]model.Label{{StudentID: c.Events[0].StudentID, FinalGrade: "honors"}}, c.Labels[1:]...)
		svc := newService()

		Convey("Then ingestion should accept it", func() {
			So(svc.Ingest(ctx, c.Events, labels), ShouldBeNil)

			Convey("And Analyze should fail with a schema error at assembly", func() {
				_, err := svc.Analyze(ctx)
				So(errors.Is(err, model.ErrSchema), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "honors")
			})
		})
	})

	Convey("Given more folds than the smallest class can fill", t, func() {
		ctx := context.Background()
		h := quickHarness(evaluation.WithFolds(40))
		svc := service.New(service.WithHarness(h))
		c := cohort()
		So(svc.Ingest(ctx, c.Events, c.Labels), ShouldBeNil)

		Convey("Then Analyze should fail with a configuration error", func() {
			_, err := svc.Analyze(ctx)
			So(errors.Is(err, model.ErrConfiguration), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		svc := newService()
		c := cohort()
		So(svc.Ingest(ctx, c.Events, c.Labels), ShouldBeNil)
		cancel()

		Convey("Then Analyze should stop with the context error", func() {
			_, err := svc.Analyze(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
