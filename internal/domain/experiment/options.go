package experiment

import "github.com/okian/gradecast/pkg/logger"

// Option configures an Experimenter.
type Option func(*Experimenter)

// WithRules replaces the subset rules.
func WithRules(rules ...Rule) Option {
	return func(e *Experimenter) {
		if len(rules) > 0 {
			e.rules = rules
		}
	}
}

// WithWorkers bounds the number of concurrent evaluations.
func WithWorkers(n int) Option {
	return func(e *Experimenter) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Experimenter) {
		if l != nil {
			e.logger = l
		}
	}
}
