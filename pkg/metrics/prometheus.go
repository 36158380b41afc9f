// Package metrics provides Prometheus metrics for the gradecast pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run status label values.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ingestion
	eventsIngested prometheus.Counter
	labelsIngested prometheus.Counter
	schemaErrors   *prometheus.CounterVec

	// Aggregation and assembly
	studentsAggregated prometheus.Gauge
	degenerateInputs   prometheus.Counter
	abtRows            prometheus.Gauge
	abtLabeledRows     prometheus.Gauge
	abtColumns         prometheus.Gauge

	// Evaluation
	evaluationDuration *prometheus.HistogramVec
	evaluationAccuracy *prometheus.GaugeVec
	evaluationF1       *prometheus.GaugeVec
	evaluationFailures *prometheus.CounterVec
	cvMeanAccuracy     *prometheus.GaugeVec

	// Runs
	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradecast",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.eventsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "events_ingested_total",
		Help:        "Total number of activity events accepted by the event store",
		ConstLabels: labels,
	})

	m.labelsIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "labels_ingested_total",
		Help:        "Total number of outcome labels accepted by the event store",
		ConstLabels: labels,
	})

	m.schemaErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "schema_errors_total",
			Help:        "Total number of rejected input rows by pipeline stage",
			ConstLabels: labels,
		},
		[]string{"stage"},
	)

	m.studentsAggregated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "students_aggregated",
		Help:        "Number of students with a feature vector in the last run",
		ConstLabels: labels,
	})

	m.degenerateInputs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "degenerate_inputs_total",
		Help:        "Total number of feature values defined by policy instead of measured",
		ConstLabels: labels,
	})

	m.abtRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "abt_rows",
		Help:        "Number of rows in the last analytics base table",
		ConstLabels: labels,
	})

	m.abtLabeledRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "abt_labeled_rows",
		Help:        "Number of labelled rows in the last analytics base table",
		ConstLabels: labels,
	})

	m.abtColumns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "abt_feature_columns",
		Help:        "Number of feature columns in the last analytics base table",
		ConstLabels: labels,
	})

	m.evaluationDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "evaluation_duration_milliseconds",
			Help:        "Duration of one fit-and-score evaluation in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"subset", "model"},
	)

	m.evaluationAccuracy = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "evaluation_accuracy",
			Help:        "Hold-out accuracy of the last evaluation",
			ConstLabels: labels,
		},
		[]string{"subset", "model"},
	)

	m.evaluationF1 = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "evaluation_f1_macro",
			Help:        "Hold-out macro F1 of the last evaluation",
			ConstLabels: labels,
		},
		[]string{"subset", "model"},
	)

	m.evaluationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "evaluation_failures_total",
			Help:        "Total number of failed evaluations",
			ConstLabels: labels,
		},
		[]string{"subset", "model"},
	)

	m.cvMeanAccuracy = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "cv_mean_accuracy",
			Help:        "Mean held-out accuracy across cross-validation folds",
			ConstLabels: labels,
		},
		[]string{"model"},
	)

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "runs_total",
			Help:        "Total number of analysis runs by outcome",
			ConstLabels: labels,
		},
		[]string{"status"},
	)

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stage_duration_milliseconds",
			Help:        "Duration of pipeline stages in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"stage"},
	)
}

// RecordEventsIngested adds n accepted events.
func RecordEventsIngested(n int) {
	globalManager.eventsIngested.Add(float64(n))
}

// RecordLabelsIngested adds n accepted labels.
func RecordLabelsIngested(n int) {
	globalManager.labelsIngested.Add(float64(n))
}

// RecordSchemaError increments the rejected-row counter for a stage.
func RecordSchemaError(stage string) {
	globalManager.schemaErrors.WithLabelValues(stage).Inc()
}

// UpdateStudentsAggregated sets the number of aggregated students.
func UpdateStudentsAggregated(count int) {
	globalManager.studentsAggregated.Set(float64(count))
}

// RecordDegenerateInputs adds n policy-defined feature values.
func RecordDegenerateInputs(n int) {
	globalManager.degenerateInputs.Add(float64(n))
}

// UpdateABTShape records the size of the assembled table.
func UpdateABTShape(rows, labeled, columns int) {
	globalManager.abtRows.Set(float64(rows))
	globalManager.abtLabeledRows.Set(float64(labeled))
	globalManager.abtColumns.Set(float64(columns))
}

// RecordEvaluation records duration and scores of one evaluation.
func RecordEvaluation(subset, model string, durationMs, accuracy, f1 float64) {
	globalManager.evaluationDuration.WithLabelValues(subset, model).Observe(durationMs)
	globalManager.evaluationAccuracy.WithLabelValues(subset, model).Set(accuracy)
	globalManager.evaluationF1.WithLabelValues(subset, model).Set(f1)
}

// RecordEvaluationFailure increments the failure counter for a pair.
func RecordEvaluationFailure(subset, model string) {
	globalManager.evaluationFailures.WithLabelValues(subset, model).Inc()
}

// UpdateCVMeanAccuracy sets the mean cross-validation accuracy for a model.
func UpdateCVMeanAccuracy(model string, accuracy float64) {
	globalManager.cvMeanAccuracy.WithLabelValues(model).Set(accuracy)
}

// RecordRun increments the run counter with the given status.
func RecordRun(status string) {
	globalManager.runsTotal.WithLabelValues(status).Inc()
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, durationMs float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
