// Package types contains common types used across the application
package types

import "sort"

// FeatureImportance is one row of a feature-importance ranking.
type FeatureImportance struct {
	Rank    int     `json:"rank"`
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// RankImportances orders scores descending and assigns 1-based ranks. Ties
// keep the order of columns.
func RankImportances(columns []string, scores []float64) []FeatureImportance {
	out := make([]FeatureImportance, len(columns))
	for i, c := range columns {
		out[i] = FeatureImportance{Feature: c, Score: scores[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// TopFeatures returns the feature names of the first k entries.
func TopFeatures(ranking []FeatureImportance, k int) []string {
	if k > len(ranking) {
		k = len(ranking)
	}
	if k < 0 {
		k = 0
	}
	names := make([]string, k)
	for i := 0; i < k; i++ {
		names[i] = ranking[i].Feature
	}
	return names
}
