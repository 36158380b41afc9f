package service

import (
	"github.com/okian/gradecast/internal/adapters/repository"
	"github.com/okian/gradecast/internal/adapters/source"
	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/evaluation"
	"github.com/okian/gradecast/internal/domain/experiment"
	"github.com/okian/gradecast/internal/domain/features"
	"github.com/okian/gradecast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where Run loads events and labels from.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore sets the event store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAggregator sets the feature aggregator.
func WithAggregator(a *features.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithAssembler sets the ABT assembler.
func WithAssembler(a *abt.Assembler) Option {
	return func(s *Service) {
		if a != nil {
			s.assembler = a
		}
	}
}

// WithHarness sets the evaluation harness.
func WithHarness(h *evaluation.Harness) Option {
	return func(s *Service) {
		if h != nil {
			s.harness = h
		}
	}
}

// WithExperimenter sets the feature-subset experimenter.
func WithExperimenter(e *experiment.Experimenter) Option {
	return func(s *Service) {
		if e != nil {
			s.experimenter = e
		}
	}
}

// WithPublishers adds report publishers. Nil publishers are skipped.
func WithPublishers(p ...Publisher) Option {
	return func(s *Service) {
		for _, pub := range p {
			if pub != nil {
				s.publishers = append(s.publishers, pub)
			}
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
