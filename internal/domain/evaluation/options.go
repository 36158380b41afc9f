package evaluation

import (
	"github.com/okian/gradecast/internal/domain/classifier"
	"github.com/okian/gradecast/pkg/logger"
)

// Default protocol parameters.
const (
	DefaultTestFraction = 0.25
	DefaultFolds        = 5
	DefaultSeed         = 42
)

// Option configures a Harness.
type Option func(*Harness)

// WithSeed sets the seed of the split and fold shuffles.
func WithSeed(seed int64) Option {
	return func(h *Harness) {
		h.seed = seed
	}
}

// WithTestFraction sets the hold-out fraction. Values outside (0,1) are
// reported as configuration errors when the harness runs.
func WithTestFraction(fraction float64) Option {
	return func(h *Harness) {
		h.testFraction = fraction
	}
}

// WithFolds sets the cross-validation fold count.
func WithFolds(folds int) Option {
	return func(h *Harness) {
		h.folds = folds
	}
}

// WithFamilies replaces the model families that are trained.
func WithFamilies(families ...classifier.Family) Option {
	return func(h *Harness) {
		if len(families) > 0 {
			h.families = families
		}
	}
}

// WithCrossValidation toggles the k-fold diagnostic.
func WithCrossValidation(enabled bool) Option {
	return func(h *Harness) {
		h.crossValidate = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}
