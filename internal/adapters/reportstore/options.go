package reportstore

import "github.com/okian/gradecast/pkg/logger"

// DefaultRecentLimit caps Recent when no positive limit is given.
const DefaultRecentLimit = 20

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
