// Package report defines the published outcome of one analysis run.
package report

import (
	"time"

	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/model"
)

// Report is the full result of one analysis run.
type Report struct {
	RunID       string                  `json:"run_id"`
	StartedAt   time.Time               `json:"started_at"`
	Duration    time.Duration           `json:"duration"`
	Table       abt.Summary             `json:"table"`
	Columns     []string                `json:"columns"`
	Full        *evaluation.Report      `json:"full"`
	Experiments []experiment.Outcome    `json:"experiments"`
	Warnings    []model.DegenerateInput `json:"warnings,omitempty"`
}

// Best returns the successful experiment outcome with the highest macro F1.
// Ties keep the earlier outcome.
func (r *Report) Best() (experiment.Outcome, bool) {
	var best experiment.Outcome
	found := false
	for _, o := range r.Experiments {
		if o.Result == nil {
			continue
		}
		if !found || o.Result.F1Macro > best.Result.F1Macro {
			best, found = o, true
		}
	}
	return best, found
}

// Failed returns the outcomes whose evaluation failed.
func (r *Report) Failed() []experiment.Outcome {
	var out []experiment.Outcome
	for _, o := range r.Experiments {
		if o.Result == nil {
			out = append(out, o)
		}
	}
	return out
}
