package repository

import "github.com/okian/gradecast/pkg/logger"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithExpectedStudents preallocates label tracking for n students.
func WithExpectedStudents(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.expectedStudents = n
		}
	}
}
