// Package classifier provides the model families trained by the evaluation
// harness: a random forest ensemble and multinomial logistic regression.
package classifier

import (
	"context"
	"fmt"
)

// Model family names.
const (
	NameRandomForest = "random_forest"
	NameLogistic     = "logistic_regression"
)

// Classifier is a multi-class model over dense float features. Class labels
// are indices in [0, classes).
type Classifier interface {
	Name() string
	// Fit trains the model, honoring ctx for cancellation.
	Fit(ctx context.Context, x [][]float64, y []int, classes int) error
	// Predict returns one class index per row.
	Predict(x [][]float64) ([]int, error)
}

// Importancer is implemented by models that expose per-feature importances.
type Importancer interface {
	// Importances returns one non-negative score per feature, summing to 1
	// unless every score is 0.
	Importances() []float64
}

// Family names a model type and creates fresh, unfitted instances of it.
type Family struct {
	Name string
	New  func() Classifier
}

// validate checks the training input shape and returns the feature count.
func validate(x [][]float64, y []int, classes int) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrDimension, len(x), len(y))
	}
	if classes < 2 {
		return 0, fmt.Errorf("%w: need at least 2 classes, got %d", ErrDimension, classes)
	}
	p := len(x[0])
	if p == 0 {
		return 0, fmt.Errorf("%w: no feature columns", ErrDimension)
	}
	for i, row := range x {
		if len(row) != p {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimension, i, len(row), p)
		}
		if y[i] < 0 || y[i] >= classes {
			return 0, fmt.Errorf("%w: label %d of row %d outside [0,%d)", ErrDimension, y[i], i, classes)
		}
	}
	return p, nil
}

// checkRows validates prediction input against the fitted width.
func checkRows(x [][]float64, p int) error {
	for i, row := range x {
		if len(row) != p {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrDimension, i, len(row), p)
		}
	}
	return nil
}

// argmax returns the index of the largest value; ties go to the lowest index.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
