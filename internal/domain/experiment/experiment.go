// Package experiment re-evaluates model families on named feature subsets so
// their scores can be compared.
package experiment

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/types"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// Outcome is the evaluation of one (subset, model) pair. Exactly one of
// Result and Err is set.
type Outcome struct {
	Subset   string             `json:"subset"`
	Model    string             `json:"model"`
	Features []string           `json:"features"`
	Result   *evaluation.Result `json:"result,omitempty"`
	Error    string             `json:"error,omitempty"`
	Err      error              `json:"-"`
}

// Experimenter evaluates every (subset, model) pair on a shared split.
type Experimenter struct {
	harness *evaluation.Harness
	rules   []Rule
	workers int
	logger  logger.Logger
}

// NewExperimenter creates an experimenter that fits models through harness.
func NewExperimenter(harness *evaluation.Harness, opts ...Option) *Experimenter {
	e := &Experimenter{
		harness: harness,
		rules:   DefaultRules(DefaultTopK, nil, nil),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("experiment")
	}
	return e
}

// Rules returns the subset rules in evaluation order.
func (e *Experimenter) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Run evaluates every rule against every model family of the harness. Each
// pair fits its own scaler and model. A failing pair is reported in its
// Outcome and does not stop the others. The returned error is non-nil only
// when ctx is cancelled.
func (e *Experimenter) Run(ctx context.Context, split *evaluation.Split, ranking []types.FeatureImportance) ([]Outcome, error) {
	columns := split.Table.Columns()
	families := e.harness.Families()
	outcomes := make([]Outcome, len(e.rules)*len(families))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for r, rule := range e.rules {
		selected, selectErr := rule.Select(columns, ranking)
		for f, fam := range families {
			slot := r*len(families) + f
			outcomes[slot] = Outcome{Subset: rule.Name, Model: fam.Name, Features: selected}

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out := &outcomes[slot]
				if selectErr != nil {
					e.fail(gctx, out, selectErr)
					return nil
				}

				start := time.Now()
				res, err := e.harness.Fit(gctx, split, rule.Name, selected, fam)
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					e.fail(gctx, out, err)
					return nil
				}
				out.Result = &res
				e.logger.Debug(gctx, "evaluated subset",
					logger.String("subset", rule.Name),
					logger.String("model", fam.Name),
					logger.Int("features", len(selected)),
					logger.Duration("took", time.Since(start)),
				)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	e.logger.Info(ctx, "feature subset comparison finished",
		logger.Int("pairs", len(outcomes)),
		logger.Int("failed", failed),
	)
	return outcomes, nil
}

func (e *Experimenter) fail(ctx context.Context, out *Outcome, err error) {
	pe := &PairError{Subset: out.Subset, Model: out.Model, Err: err}
	out.Err = pe
	out.Error = pe.Error()
	metrics.RecordEvaluationFailure(out.Subset, out.Model)
	e.logger.Warn(ctx, "subset evaluation failed",
		logger.String("subset", out.Subset),
		logger.String("model", out.Model),
		logger.Error(err),
	)
}
