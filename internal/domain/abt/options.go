package abt

import "github.com/okian/gradecast/pkg/logger"

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}
