// Package evaluation trains and scores classifiers against the analytics base
// table without leaking test statistics into training.
package evaluation

import (
	"time"

	"github.com/okian/gradecast/internal/domain/types"
)

// CrossValidation summarises the k-fold diagnostic of one model family.
type CrossValidation struct {
	Model          string    `json:"model"`
	Folds          int       `json:"folds"`
	FoldAccuracies []float64 `json:"fold_accuracies"`
	MeanAccuracy   float64   `json:"mean_accuracy"`
}

// Result is the evaluation of one model family on one feature subset.
type Result struct {
	Subset   string   `json:"subset"`
	Model    string   `json:"model"`
	Features []string `json:"features"`
	Classes  []string `json:"classes"`
	Scores
	Importances     []types.FeatureImportance `json:"feature_importances,omitempty"`
	CrossValidation *CrossValidation          `json:"cross_validation,omitempty"`
	Duration        time.Duration             `json:"duration"`
}

// Report is the full-feature evaluation of every model family.
type Report struct {
	TrainSize       int                       `json:"train_size"`
	TestSize        int                       `json:"test_size"`
	CrossValidation []CrossValidation         `json:"cross_validation"`
	Results         []Result                  `json:"results"`
	Ranking         []types.FeatureImportance `json:"ranking,omitempty"`
}
