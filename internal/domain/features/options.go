package features

import "github.com/okian/gradecast/pkg/logger"

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTemporalFeatures enables the weekend, half-ratio and per-period columns.
func WithTemporalFeatures(enabled bool) Option {
	return func(a *Aggregator) {
		a.temporal = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
