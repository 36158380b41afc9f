package source

import (
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
)

// options shared by every source.
type options struct {
	dateLayout  string
	eventsQuery string
	labelsQuery string
	logger      logger.Logger
}

// Option configures a source.
type Option func(*options)

// WithDateLayout sets the time layout of the date column.
func WithDateLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.dateLayout = layout
		}
	}
}

// WithEventsQuery sets the query that selects student_id, activity and date.
func WithEventsQuery(q string) Option {
	return func(o *options) {
		if q != "" {
			o.eventsQuery = q
		}
	}
}

// WithLabelsQuery sets the query that selects student_id and final_grade.
func WithLabelsQuery(q string) Option {
	return func(o *options) {
		if q != "" {
			o.labelsQuery = q
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(component string, opts []Option) options {
	o := options{
		dateLayout:  model.DateLayout,
		eventsQuery: DefaultEventsQuery,
		labelsQuery: DefaultLabelsQuery,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named(component)
	}
	return o
}
