package experiment

import (
	"fmt"
	"strings"

	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/types"
)

// Subset names.
const (
	SubsetAll        = "All Features"
	SubsetEngagement = "Engagement Features"
	SubsetFrequency  = "Frequency Features"
)

// Default token lists of the substring rules.
var (
	DefaultEngagementTokens = []string{"activity", "engagement", "visit", "view", "attempt", "download"}
	DefaultFrequencyExclude = []string{"ratio", "consistency"}
)

// DefaultTopK is the size of the ranked subset.
const DefaultTopK = 5

// TopKName returns the name of the ranked subset of size k.
func TopKName(k int) string {
	return fmt.Sprintf("Top-%d Features", k)
}

// Rule selects a named feature subset from the table columns and the
// full-feature importance ranking.
type Rule struct {
	Name   string
	Select func(columns []string, ranking []types.FeatureImportance) ([]string, error)
}

// All selects every column.
func All() Rule {
	return Rule{Name: SubsetAll, Select: func(columns []string, _ []types.FeatureImportance) ([]string, error) {
		return append([]string(nil), columns...), nil
	}}
}

// TopK selects the k highest ranked columns in rank order.
func TopK(k int) Rule {
	return Rule{Name: TopKName(k), Select: func(_ []string, ranking []types.FeatureImportance) ([]string, error) {
		if len(ranking) == 0 {
			return nil, evaluation.ErrNoRanking
		}
		return types.TopFeatures(ranking, k), nil
	}}
}

// ContainsAny selects columns whose name contains any token. Matching is
// case-sensitive.
func ContainsAny(name string, tokens []string) Rule {
	return Rule{Name: name, Select: func(columns []string, _ []types.FeatureImportance) ([]string, error) {
		return filter(columns, func(c string) bool { return containsAny(c, tokens) }), nil
	}}
}

// ExcludeAny selects columns whose name contains none of the tokens.
func ExcludeAny(name string, tokens []string) Rule {
	return Rule{Name: name, Select: func(columns []string, _ []types.FeatureImportance) ([]string, error) {
		return filter(columns, func(c string) bool { return !containsAny(c, tokens) }), nil
	}}
}

// DefaultRules returns the four standard subsets.
func DefaultRules(k int, engagementTokens, frequencyExclude []string) []Rule {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(engagementTokens) == 0 {
		engagementTokens = DefaultEngagementTokens
	}
	if len(frequencyExclude) == 0 {
		frequencyExclude = DefaultFrequencyExclude
	}
	return []Rule{
		All(),
		TopK(k),
		ContainsAny(SubsetEngagement, engagementTokens),
		ExcludeAny(SubsetFrequency, frequencyExclude),
	}
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func filter(columns []string, keep func(string) bool) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
