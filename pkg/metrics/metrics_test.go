package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should register every collector", func() {
				So(manager, ShouldNotBeNil)
				manager.eventsIngested.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names should carry the namespace and subsystem", func() {
				manager.runsTotal.WithLabelValues(StatusSucceeded).Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_runs_total")
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "gradecast")
				So(manager.subsystem, ShouldEqual, "pipeline")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := testutil.ToFloat64(globalManager.eventsIngested)
			RecordEventsIngested(5)
			RecordLabelsIngested(2)
			RecordSchemaError("ingest")

			Convey("Then counters should advance", func() {
				So(testutil.ToFloat64(globalManager.eventsIngested)-before, ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.schemaErrors.WithLabelValues("ingest")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording table shape", func() {
			UpdateStudentsAggregated(12)
			UpdateABTShape(12, 10, 9)
			RecordDegenerateInputs(1)

			Convey("Then gauges should hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.studentsAggregated), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.abtRows), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.abtLabeledRows), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.abtColumns), ShouldEqual, 9)
			})
		})

		Convey("When recording evaluation metrics", func() {
			RecordEvaluation("All Features", "random_forest", 12.5, 0.75, 0.7)
			RecordEvaluationFailure("Top-5 Features", "logistic_regression")
			UpdateCVMeanAccuracy("random_forest", 0.72)
			RecordStageDuration("aggregate", 3)
			RecordRun(StatusSucceeded)

			Convey("Then labelled series should be set", func() {
				So(testutil.ToFloat64(globalManager.evaluationAccuracy.WithLabelValues("All Features", "random_forest")), ShouldEqual, 0.75)
				So(testutil.ToFloat64(globalManager.evaluationF1.WithLabelValues("All Features", "random_forest")), ShouldEqual, 0.7)
				So(testutil.ToFloat64(globalManager.cvMeanAccuracy.WithLabelValues("random_forest")), ShouldEqual, 0.72)
				So(testutil.ToFloat64(globalManager.evaluationFailures.WithLabelValues("Top-5 Features", "logistic_regression")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When fetching the registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
