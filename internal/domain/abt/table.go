// Package abt assembles the analytics base table: one zero-filled feature row
// per student joined with the optional outcome label.
package abt

import (
	"github.com/okian/gradecast/internal/domain/model"
)

// Row is one student of the table. Features are aligned with Table.Columns.
type Row struct {
	StudentID    string
	Features     []float64
	Labeled      bool
	Grade        model.Grade
	GradeNumeric int
	Class        int // index into model.ClassOrder; -1 when unlabelled
}

// Table is the analytics base table. It is read-only once assembled and safe
// for concurrent reads.
type Table struct {
	columns []string
	rows    []Row
	index   map[string]int // column name to position
	byID    map[string]int // student id to row

	ignoredLabels int
}

// Summary describes the shape of a table.
type Summary struct {
	Rows          int                 `json:"rows"`
	LabeledRows   int                 `json:"labeled_rows"`
	Columns       int                 `json:"columns"`
	IgnoredLabels int                 `json:"ignored_labels"`
	ClassCounts   map[model.Grade]int `json:"class_counts"`
}

// Columns returns the feature columns in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Rows returns all rows ordered by student id.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row of a student.
func (t *Table) Row(studentID string) (Row, bool) {
	i, ok := t.byID[studentID]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// Value returns one cell of the table.
func (t *Table) Value(studentID, column string) (float64, bool) {
	r, ok := t.byID[studentID]
	if !ok {
		return 0, false
	}
	c, ok := t.index[column]
	if !ok {
		return 0, false
	}
	return t.rows[r].Features[c], true
}

// Labeled returns the rows that carry a label.
func (t *Table) Labeled() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if r.Labeled {
			out = append(out, r)
		}
	}
	return out
}

// IgnoredLabels returns how many labels referred to students without events.
func (t *Table) IgnoredLabels() int { return t.ignoredLabels }

// Matrix projects rows onto the named columns.
func (t *Table) Matrix(rows []Row, columns []string) ([][]float64, error) {
	pos := make([]int, len(columns))
	for i, c := range columns {
		p, ok := t.index[c]
		if !ok {
			return nil, model.ConfigurationError("abt.Matrix", c, "unknown feature column")
		}
		pos[i] = p
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		x := make([]float64, len(pos))
		for j, p := range pos {
			x[j] = r.Features[p]
		}
		out[i] = x
	}
	return out, nil
}

// Summary returns the shape of the table.
func (t *Table) Summary() Summary {
	s := Summary{
		Rows:          len(t.rows),
		Columns:       len(t.columns),
		IgnoredLabels: t.ignoredLabels,
		ClassCounts:   make(map[model.Grade]int, len(model.ClassOrder)),
	}
	for _, r := range t.rows {
		if r.Labeled {
			s.LabeledRows++
			s.ClassCounts[r.Grade]++
		}
	}
	return s
}
