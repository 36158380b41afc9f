package abt

import (
	"context"

	"github.com/okian/gradecast/internal/domain/dedupe"
	"github.com/okian/gradecast/internal/domain/features"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// Assembler joins aggregated features and labels into a Table.
type Assembler struct {
	logger logger.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("abt")
	}
	return a
}

// Assemble left joins aggregates, the activity pivot and labels on student id.
// Every student in res gets a row; labels of unknown students are ignored.
// Duplicate labels and unrecognised grades are schema errors.
func (a *Assembler) Assemble(ctx context.Context, res *features.Result, labels []model.Label) (*Table, error) {
	const op = "abt.Assemble"
	if res == nil {
		return nil, model.SchemaError(op, "", "no aggregated features")
	}

	columns := res.Columns()
	t := &Table{
		columns: columns,
		rows:    make([]Row, len(res.Students)),
		index:   make(map[string]int, len(columns)),
		byID:    make(map[string]int, len(res.Students)),
	}
	for i, c := range columns {
		if _, dup := t.index[c]; dup {
			return nil, model.SchemaError(op, c, "duplicate feature column")
		}
		t.index[c] = i
	}

	for i, id := range res.Students {
		x := make([]float64, len(columns))
		for j, c := range res.AggregateColumns {
			x[j] = res.Aggregates[id][c]
		}
		offset := len(res.AggregateColumns)
		for j, c := range res.ActivityColumns {
			x[offset+j] = res.Activity[id][c]
		}
		t.rows[i] = Row{StudentID: id, Features: x, Class: -1}
		t.byID[id] = i
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacityHint(len(labels)))
	for _, l := range labels {
		if seen.SeenAndRecord(ctx, l.StudentID) {
			metrics.RecordSchemaError("assemble")
			return nil, model.SchemaError(op, features.StudentIDColumn, "duplicate label for student "+l.StudentID)
		}
		numeric, err := l.FinalGrade.Numeric()
		if err != nil {
			metrics.RecordSchemaError("assemble")
			return nil, &model.Error{Op: op, Kind: model.ErrSchema, Field: features.FinalGradeColumn,
				Message: "rejecting label of student " + l.StudentID, Err: err}
		}
		r, ok := t.byID[l.StudentID]
		if !ok {
			t.ignoredLabels++
			continue
		}
		class, _ := l.FinalGrade.ClassIndex()
		row := &t.rows[r]
		row.Labeled = true
		row.Grade = l.FinalGrade
		row.GradeNumeric = numeric
		row.Class = class
	}

	s := t.Summary()
	metrics.UpdateABTShape(s.Rows, s.LabeledRows, s.Columns)
	if t.ignoredLabels > 0 {
		a.logger.Warn(ctx, "ignoring labels of students without events", logger.Int("count", t.ignoredLabels))
	}
	a.logger.Info(ctx, "assembled analytics base table",
		logger.Int("rows", s.Rows),
		logger.Int("labeled_rows", s.LabeledRows),
		logger.Int("columns", s.Columns),
	)
	return t, nil
}
