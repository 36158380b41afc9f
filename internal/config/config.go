// Package config defines process configuration and its loading.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Input source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Source selects where events and labels are read from: csv or postgres.
	Source string `koanf:"source"`

	EventsPath string `koanf:"events_path"`
	LabelsPath string `koanf:"labels_path"`

	// DateLayout is the Go time layout of textual dates.
	DateLayout string `koanf:"date_layout"`

	PostgresDSN string `koanf:"postgres_dsn"`
	EventsQuery string `koanf:"events_query"`
	LabelsQuery string `koanf:"labels_query"`

	// Seed drives the split, the folds and the forest.
	Seed         int64   `koanf:"seed"`
	TestFraction float64 `koanf:"test_fraction"`
	CVFolds      int     `koanf:"cv_folds"`
	TopK         int     `koanf:"top_k"`

	// Workers bounds concurrent subset evaluations.
	Workers int `koanf:"workers"`

	ForestTrees           int `koanf:"forest_trees"`
	ForestMaxDepth        int `koanf:"forest_max_depth"`
	ForestMinSamplesSplit int `koanf:"forest_min_samples_split"`
	ForestMinSamplesLeaf  int `koanf:"forest_min_samples_leaf"`

	LogisticMaxIter      int     `koanf:"logistic_max_iter"`
	LogisticLearningRate float64 `koanf:"logistic_learning_rate"`
	LogisticC            float64 `koanf:"logistic_c"`
	LogisticTolerance    float64 `koanf:"logistic_tolerance"`

	// TemporalFeatures adds ratio and per-period columns.
	TemporalFeatures bool `koanf:"temporal_features"`

	EngagementTokens       []string `koanf:"engagement_tokens"`
	FrequencyExcludeTokens []string `koanf:"frequency_exclude_tokens"`

	// RedisAddr enables publishing reports to Redis when set.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	RedisTTLSeconds int    `koanf:"redis_ttl_seconds"`

	// ReportDSN enables the PostgreSQL run history when set.
	ReportDSN string `koanf:"report_dsn"`

	// MetricsAddr serves /metrics while the run is in progress when set.
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Source:                 SourceCSV,
		EventsPath:             "student_activity.csv",
		LabelsPath:             "student_outcomes.csv",
		DateLayout:             "2006-01-02",
		EventsQuery:            "SELECT student_id, activity, date FROM student_activity",
		LabelsQuery:            "SELECT student_id, final_grade FROM student_outcomes",
		Seed:                   42,
		TestFraction:           0.25,
		CVFolds:                5,
		TopK:                   5,
		Workers:                runtime.NumCPU(),
		ForestTrees:            100,
		ForestMinSamplesSplit:  2,
		ForestMinSamplesLeaf:   1,
		LogisticMaxIter:        1000,
		LogisticLearningRate:   0.1,
		LogisticC:              1.0,
		LogisticTolerance:      1e-6,
		EngagementTokens:       []string{"activity", "engagement", "visit", "view", "attempt", "download"},
		FrequencyExcludeTokens: []string{"ratio", "consistency"},
		RedisTTLSeconds:        int((24 * time.Hour).Seconds()),
	}
}

// RedisTTL returns the expiry of published reports.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSeconds) * time.Second
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.EventsPath == "" || c.LabelsPath == "" {
			return invalid("events_path and labels_path are required for the csv source")
		}
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres source")
		}
	default:
		return invalid(fmt.Sprintf("unknown source %q", c.Source))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("unknown log_format %q", c.LogFormat))
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return invalid(fmt.Sprintf("test_fraction %g must be in (0,1)", c.TestFraction))
	}
	if c.CVFolds < 2 {
		return invalid(fmt.Sprintf("cv_folds %d must be at least 2", c.CVFolds))
	}
	if c.TopK < 1 {
		return invalid(fmt.Sprintf("top_k %d must be positive", c.TopK))
	}
	if c.Workers < 1 {
		return invalid(fmt.Sprintf("workers %d must be positive", c.Workers))
	}
	if c.ForestTrees < 1 || c.ForestMaxDepth < 0 || c.ForestMinSamplesSplit < 2 || c.ForestMinSamplesLeaf < 1 {
		return invalid("forest parameters out of range")
	}
	if c.LogisticMaxIter < 1 || c.LogisticLearningRate <= 0 || c.LogisticC <= 0 || c.LogisticTolerance < 0 {
		return invalid("logistic parameters out of range")
	}
	if c.RedisDB < 0 || c.RedisTTLSeconds < 0 {
		return invalid("redis parameters out of range")
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
