package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
)

// CSVSource reads events and labels from two CSV files with header rows.
// Columns are matched by header name, so extra columns and any column order
// are accepted.
type CSVSource struct {
	eventsPath string
	labelsPath string
	opts       options
}

// NewCSVSource creates a source over the given files.
func NewCSVSource(eventsPath, labelsPath string, opts ...Option) (*CSVSource, error) {
	if eventsPath == "" || labelsPath == "" {
		return nil, ErrMissingPath
	}
	return &CSVSource{
		eventsPath: eventsPath,
		labelsPath: labelsPath,
		opts:       newOptions("csv-source", opts),
	}, nil
}

// Events implements Source.
func (s *CSVSource) Events(ctx context.Context) ([]model.Event, error) {
	f, err := os.Open(s.eventsPath)
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	events, err := ReadEvents(f, s.opts.dateLayout)
	if err != nil {
		return nil, err
	}
	s.opts.logger.Info(ctx, "loaded events", logger.String("path", s.eventsPath), logger.Int("rows", len(events)))
	return events, nil
}

// Labels implements Source.
func (s *CSVSource) Labels(ctx context.Context) ([]model.Label, error) {
	f, err := os.Open(s.labelsPath)
	if err != nil {
		return nil, fmt.Errorf("open labels file: %w", err)
	}
	defer f.Close()

	labels, err := ReadLabels(f)
	if err != nil {
		return nil, err
	}
	s.opts.logger.Info(ctx, "loaded labels", logger.String("path", s.labelsPath), logger.Int("rows", len(labels)))
	return labels, nil
}

// header maps required column names to their positions.
func header(r *csv.Reader, op string, required ...string) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.SchemaError(op, "", "missing header row")
		}
		return nil, model.WrapSchemaError(op, "", "unreadable header row", err)
	}
	idx := make(map[string]int, len(row))
	for i, name := range row {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, model.SchemaError(op, name, "missing column")
		}
	}
	return idx, nil
}

func rowError(op string, line int, err error) error {
	return &model.Error{Op: op, Kind: model.ErrSchema, Field: "line " + strconv.Itoa(line), Message: "invalid row", Err: err}
}

// ReadEvents parses an events CSV with student_id, activity and date columns.
func ReadEvents(r io.Reader, dateLayout string) ([]model.Event, error) {
	const op = "source.ReadEvents"
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	idx, err := header(cr, op, ColumnStudentID, ColumnActivity, ColumnDate)
	if err != nil {
		return nil, err
	}

	var events []model.Event
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, rowError(op, line, err)
		}
		ev, err := model.ParseEvent(field(row, idx[ColumnStudentID]), field(row, idx[ColumnActivity]),
			field(row, idx[ColumnDate]), dateLayout)
		if err != nil {
			return nil, rowError(op, line, err)
		}
		events = append(events, ev)
	}
}

// ReadLabels parses a labels CSV with student_id and final_grade columns.
func ReadLabels(r io.Reader) ([]model.Label, error) {
	const op = "source.ReadLabels"
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	idx, err := header(cr, op, ColumnStudentID, ColumnFinalGrade)
	if err != nil {
		return nil, err
	}

	var labels []model.Label
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return labels, nil
		}
		if err != nil {
			return nil, rowError(op, line, err)
		}
		l, err := model.NewLabel(field(row, idx[ColumnStudentID]), field(row, idx[ColumnFinalGrade]))
		if err != nil {
			return nil, rowError(op, line, err)
		}
		labels = append(labels, l)
	}
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// WriteEvents writes events as CSV with a header row.
func WriteEvents(w io.Writer, events []model.Event, dateLayout string) error {
	if dateLayout == "" {
		dateLayout = model.DateLayout
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnStudentID, ColumnActivity, ColumnDate}); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write([]string{ev.StudentID, ev.Activity, ev.Date.Format(dateLayout)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLabels writes labels as CSV with a header row.
func WriteLabels(w io.Writer, labels []model.Label) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnStudentID, ColumnFinalGrade}); err != nil {
		return err
	}
	for _, l := range labels {
		if err := cw.Write([]string{l.StudentID, l.FinalGrade.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
