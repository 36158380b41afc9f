package reportstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/gradecast/internal/adapters/reportstore"
	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/report"
)

func sample() *report.Report {
	return &report.Report{
		RunID:     "0f8fad5b-d9cb-469f-a165-70867728950e",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Table:     abt.Summary{Rows: 40, LabeledRows: 36, Columns: 9},
		Experiments: []experiment.Outcome{
			{Subset: "All Features", Model: "random_forest", Result: &evaluation.Result{Scores: evaluation.Scores{F1Macro: 0.71}}},
			{Subset: "Top-5 Features", Model: "random_forest", Result: &evaluation.Result{Scores: evaluation.Scores{F1Macro: 0.78}}},
			{Subset: "Engagement Features", Model: "logistic_regression", Error: "fit failed"},
		},
	}
}

func TestNewRecord(t *testing.T) {
	rec, err := reportstore.NewRecord(sample())
	require.NoError(t, err)

	assert.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e", rec.ID)
	assert.Equal(t, int64(1500), rec.DurationMS)
	assert.Equal(t, 40, rec.Rows)
	assert.Equal(t, 36, rec.LabeledRows)
	assert.Equal(t, 9, rec.Columns)
	assert.Equal(t, "Top-5 Features", rec.BestSubset)
	assert.Equal(t, "random_forest", rec.BestModel)
	assert.InDelta(t, 0.78, rec.BestF1Macro, 1e-12)
	assert.Equal(t, 1, rec.FailedPairs)
	assert.Equal(t, "gradecast_runs", rec.TableName())

	decoded, err := rec.Decode()
	require.NoError(t, err)
	assert.Equal(t, sample().RunID, decoded.RunID)
	assert.Len(t, decoded.Experiments, 3)
	assert.Equal(t, "fit failed", decoded.Experiments[2].Error)
}

func TestNewRecord_Invalid(t *testing.T) {
	_, err := reportstore.NewRecord(nil)
	assert.ErrorIs(t, err, reportstore.ErrInvalidReport)

	_, err = reportstore.NewRecord(&report.Report{})
	assert.ErrorIs(t, err, reportstore.ErrInvalidReport)

	_, err = reportstore.Open("")
	assert.ErrorIs(t, err, reportstore.ErrMissingDSN)
}

func TestDecode_Corrupt(t *testing.T) {
	rec := &reportstore.RunRecord{ID: "x", Report: []byte("{")}
	_, err := rec.Decode()
	assert.Error(t, err)
}
