package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/classifier"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/internal/domain/types"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// Harness runs the evaluation protocol: stratified split, train-only scaling,
// k-fold diagnostic, then a single fit and test-set score per model family.
type Harness struct {
	seed          int64
	testFraction  float64
	folds         int
	families      []classifier.Family
	crossValidate bool
	logger        logger.Logger
}

// NewHarness creates a harness. Without WithFamilies it trains a random
// forest and a logistic regression with default hyperparameters.
func NewHarness(opts ...Option) *Harness {
	h := &Harness{
		seed:          DefaultSeed,
		testFraction:  DefaultTestFraction,
		folds:         DefaultFolds,
		crossValidate: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	if len(h.families) == 0 {
		seed := h.seed
		h.families = []classifier.Family{
			{Name: classifier.NameRandomForest, New: func() classifier.Classifier {
				return classifier.NewRandomForest(classifier.WithForestSeed(seed))
			}},
			{Name: classifier.NameLogistic, New: func() classifier.Classifier {
				return classifier.NewLogistic()
			}},
		}
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("evaluation")
	}
	return h
}

// Families returns the model families the harness trains.
func (h *Harness) Families() []classifier.Family {
	return append([]classifier.Family(nil), h.families...)
}

// Prepare splits the labelled rows of table and checks that the protocol is
// feasible. It fails with a configuration error, before any model is fit,
// when a grade is missing from the training partition or a class has fewer
// training rows than folds.
func (h *Harness) Prepare(ctx context.Context, table *abt.Table) (*Split, error) {
	const op = "evaluation.Prepare"
	if h.crossValidate && h.folds < 2 {
		return nil, model.ConfigurationError(op, "cv_folds", fmt.Sprintf("need at least 2 folds, got %d", h.folds))
	}
	train, test, err := StratifiedSplit(table.Labeled(), h.testFraction, h.seed)
	if err != nil {
		return nil, err
	}

	counts := ClassCounts(train)
	for c, n := range counts {
		grade := model.ClassOrder[c]
		if n == 0 {
			return nil, model.ConfigurationError(op, "final_grade",
				fmt.Sprintf("grade %s is absent from the training partition", grade))
		}
		if h.crossValidate && n < h.folds {
			return nil, model.ConfigurationError(op, "cv_folds",
				fmt.Sprintf("grade %s has %d training rows, fewer than %d folds", grade, n, h.folds))
		}
	}

	h.logger.Info(ctx, "split labelled rows",
		logger.Int("train", len(train)),
		logger.Int("test", len(test)),
		logger.Float64("test_fraction", h.testFraction),
	)
	return &Split{Table: table, Train: train, Test: test}, nil
}

func labels(rows []abt.Row) []int {
	y := make([]int, len(rows))
	for i, r := range rows {
		y[i] = r.Class
	}
	return y
}

func classNames() []string {
	out := make([]string, len(model.ClassOrder))
	for i, g := range model.ClassOrder {
		out[i] = g.String()
	}
	return out
}

// Fit scales the split on its training rows, fits a fresh instance of family
// and scores it on the test rows. Forest importances are ranked against columns.
func (h *Harness) Fit(ctx context.Context, split *Split, subset string, columns []string, family classifier.Family) (Result, error) {
	start := time.Now()
	if len(columns) == 0 {
		return Result{}, model.ConfigurationError("evaluation.Fit", "columns", "feature subset "+subset+" is empty")
	}

	trainX, err := split.Table.Matrix(split.Train, columns)
	if err != nil {
		return Result{}, err
	}
	testX, err := split.Table.Matrix(split.Test, columns)
	if err != nil {
		return Result{}, err
	}

	scaler := FitScaler(trainX)
	trainX, testX = scaler.Transform(trainX), scaler.Transform(testX)

	clf := family.New()
	classes := len(model.ClassOrder)
	if err := clf.Fit(ctx, trainX, labels(split.Train), classes); err != nil {
		return Result{}, fmt.Errorf("fit: %w", err)
	}
	pred, err := clf.Predict(testX)
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	res := Result{
		Subset:   subset,
		Model:    family.Name,
		Features: append([]string(nil), columns...),
		Classes:  classNames(),
		Scores:   Score(labels(split.Test), pred, classes),
	}
	if imp, ok := clf.(classifier.Importancer); ok {
		res.Importances = types.RankImportances(columns, imp.Importances())
	}
	res.Duration = time.Since(start)

	metrics.RecordEvaluation(subset, family.Name, float64(res.Duration.Milliseconds()), res.Accuracy, res.F1Macro)
	h.logger.Debug(ctx, "evaluated model",
		logger.String("subset", subset),
		logger.String("model", family.Name),
		logger.Float64("accuracy", res.Accuracy),
		logger.Float64("f1_macro", res.F1Macro),
		logger.Duration("took", res.Duration),
	)
	return res, nil
}

// CrossValidate runs stratified k-fold on the unscaled training rows, fitting
// a fresh scaler and model per fold. It is a diagnostic and does not affect
// the model scored by Fit.
func (h *Harness) CrossValidate(ctx context.Context, split *Split, columns []string, family classifier.Family) (CrossValidation, error) {
	x, err := split.Table.Matrix(split.Train, columns)
	if err != nil {
		return CrossValidation{}, err
	}
	y := labels(split.Train)
	classes := len(model.ClassOrder)

	cv := CrossValidation{Model: family.Name, Folds: h.folds}
	var sum float64
	for _, fold := range StratifiedKFold(y, classes, h.folds, h.seed) {
		held := make(map[int]struct{}, len(fold))
		for _, i := range fold {
			held[i] = struct{}{}
		}
		var fitX, valX [][]float64
		var fitY, valY []int
		for i := range x {
			if _, ok := held[i]; ok {
				valX, valY = append(valX, x[i]), append(valY, y[i])
			} else {
				fitX, fitY = append(fitX, x[i]), append(fitY, y[i])
			}
		}

		scaler := FitScaler(fitX)
		clf := family.New()
		if err := clf.Fit(ctx, scaler.Transform(fitX), fitY, classes); err != nil {
			return CrossValidation{}, fmt.Errorf("cross-validation fit: %w", err)
		}
		pred, err := clf.Predict(scaler.Transform(valX))
		if err != nil {
			return CrossValidation{}, fmt.Errorf("cross-validation predict: %w", err)
		}
		acc := Score(valY, pred, classes).Accuracy
		cv.FoldAccuracies = append(cv.FoldAccuracies, acc)
		sum += acc
	}
	cv.MeanAccuracy = sum / float64(len(cv.FoldAccuracies))

	metrics.UpdateCVMeanAccuracy(family.Name, cv.MeanAccuracy)
	h.logger.Info(ctx, "cross-validated model",
		logger.String("model", family.Name),
		logger.Int("folds", h.folds),
		logger.Float64("mean_accuracy", cv.MeanAccuracy),
	)
	return cv, nil
}

// Evaluate runs the full protocol on table. Columns default to every feature
// column of the table.
func (h *Harness) Evaluate(ctx context.Context, table *abt.Table, subset string, columns []string) (*Report, *Split, error) {
	if len(columns) == 0 {
		columns = table.Columns()
	}
	split, err := h.Prepare(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{TrainSize: len(split.Train), TestSize: len(split.Test)}
	for _, fam := range h.families {
		var cv *CrossValidation
		if h.crossValidate {
			summary, err := h.CrossValidate(ctx, split, columns, fam)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", fam.Name, err)
			}
			report.CrossValidation = append(report.CrossValidation, summary)
			cv = &summary
		}

		res, err := h.Fit(ctx, split, subset, columns, fam)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", fam.Name, err)
		}
		res.CrossValidation = cv
		report.Results = append(report.Results, res)
		if report.Ranking == nil && len(res.Importances) > 0 {
			report.Ranking = res.Importances
		}
	}
	return report, split, nil
}
