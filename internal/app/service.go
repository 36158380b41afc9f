// Package service wires the analysis pipeline for one run: load, ingest,
// aggregate, assemble, evaluate, compare feature subsets and publish.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradecast/internal/adapters/repository"
	"github.com/okian/gradecast/internal/adapters/source"
	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/features"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// Pipeline stages, used as metric labels.
const (
	StageLoad       = "load"
	StageIngest     = "ingest"
	StageAggregate  = "aggregate"
	StageAssemble   = "assemble"
	StageEvaluate   = "evaluate"
	StageExperiment = "experiment"
	StagePublish    = "publish"
)

// Publisher receives the report of every successful run.
type Publisher interface {
	Publish(ctx context.Context, r *report.Report) error
}

// Service runs the analysis pipeline.
type Service struct {
	source       source.Source
	store        repository.Store
	aggregator   *features.Aggregator
	assembler    *abt.Assembler
	harness      *evaluation.Harness
	experimenter *experiment.Experimenter
	publishers   []Publisher
	logger       logger.Logger
}

// New creates a service. Components not supplied through options get their
// defaults; the experimenter always shares the service harness unless set.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.aggregator == nil {
		s.aggregator = features.NewAggregator()
	}
	if s.assembler == nil {
		s.assembler = abt.NewAssembler()
	}
	if s.harness == nil {
		s.harness = evaluation.NewHarness()
	}
	if s.experimenter == nil {
		s.experimenter = experiment.NewExperimenter(s.harness)
	}
	return s
}

// Store returns the event store the service ingests into.
func (s *Service) Store() repository.Store {
	return s.store
}

// Run loads events and labels from the configured source, ingests them and
// analyzes the store.
func (s *Service) Run(ctx context.Context) (*report.Report, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	var events []model.Event
	var labels []model.Label
	err := s.stage(ctx, StageLoad, func() error {
		var err error
		if events, err = s.source.Events(ctx); err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		if labels, err = s.source.Labels(ctx); err != nil {
			return fmt.Errorf("load labels: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordRun(metrics.StatusFailed)
		return nil, err
	}

	if err := s.Ingest(ctx, events, labels); err != nil {
		metrics.RecordRun(metrics.StatusFailed)
		return nil, err
	}
	return s.Analyze(ctx)
}

// Ingest validates and stores a batch of events and labels.
func (s *Service) Ingest(ctx context.Context, events []model.Event, labels []model.Label) error {
	return s.stage(ctx, StageIngest, func() error {
		if err := s.store.AddEvents(ctx, events); err != nil {
			return fmt.Errorf("ingest events: %w", err)
		}
		if err := s.store.AddLabels(ctx, labels); err != nil {
			return fmt.Errorf("ingest labels: %w", err)
		}
		return nil
	})
}

// Analyze runs aggregation, assembly, evaluation and the feature-subset
// comparison over a snapshot of the store, then publishes the report.
// Publishing failures are logged and do not fail the run.
func (s *Service) Analyze(ctx context.Context) (rep *report.Report, err error) {
	defer func() {
		if err != nil {
			metrics.RecordRun(metrics.StatusFailed)
			s.logger.Error(ctx, "analysis run failed", logger.Error(err))
			return
		}
		metrics.RecordRun(metrics.StatusSucceeded)
	}()

	rep = &report.Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	s.logger.Info(ctx, "analysis run started", logger.String("run_id", rep.RunID))

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	var res *features.Result
	err = s.stage(ctx, StageAggregate, func() error {
		var err error
		res, err = s.aggregator.Aggregate(ctx, snap.Events)
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Warnings = res.Warnings

	var table *abt.Table
	err = s.stage(ctx, StageAssemble, func() error {
		var err error
		table, err = s.assembler.Assemble(ctx, res, snap.Labels)
		return err
	})
	if err != nil {
		return nil, err
	}
	rep.Table = table.Summary()
	rep.Columns = table.Columns()

	var split *evaluation.Split
	err = s.stage(ctx, StageEvaluate, func() error {
		var err error
		rep.Full, split, err = s.harness.Evaluate(ctx, table, experiment.SubsetAll, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.stage(ctx, StageExperiment, func() error {
		var err error
		rep.Experiments, err = s.experimenter.Run(ctx, split, rep.Full.Ranking)
		return err
	})
	if err != nil {
		return nil, err
	}

	rep.Duration = time.Since(rep.StartedAt)
	s.publish(ctx, rep)

	fields := []logger.Field{
		logger.String("run_id", rep.RunID),
		logger.Int("students", rep.Table.Rows),
		logger.Int("labeled", rep.Table.LabeledRows),
		logger.Int("columns", rep.Table.Columns),
		logger.Int("failed_pairs", len(rep.Failed())),
		logger.Duration("took", rep.Duration),
	}
	if best, ok := rep.Best(); ok {
		fields = append(fields,
			logger.String("best_subset", best.Subset),
			logger.String("best_model", best.Model),
			logger.Float64("best_f1_macro", best.Result.F1Macro),
		)
	}
	s.logger.Info(ctx, "analysis run finished", fields...)
	return rep, nil
}

func (s *Service) publish(ctx context.Context, rep *report.Report) {
	if len(s.publishers) == 0 {
		return
	}
	_ = s.stage(ctx, StagePublish, func() error {
		for _, p := range s.publishers {
			if err := p.Publish(ctx, rep); err != nil {
				s.logger.Warn(ctx, "failed to publish report",
					logger.String("run_id", rep.RunID),
					logger.String("publisher", fmt.Sprintf("%T", p)),
					logger.Error(err),
				)
			}
		}
		return nil
	})
}

// stage runs fn and records its duration.
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)
	metrics.RecordStageDuration(name, float64(took.Milliseconds()))
	if err != nil {
		return err
	}
	s.logger.Debug(ctx, "stage finished", logger.String("stage", name), logger.Duration("took", took))
	return nil
}
