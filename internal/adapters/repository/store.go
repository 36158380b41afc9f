// Package repository holds the validated in-memory event store.
package repository

import (
	"context"
	"time"

	"github.com/okian/gradecast/internal/domain/model"
)

// Snapshot is an immutable copy of the store contents taken for one analysis run.
type Snapshot struct {
	Events  []model.Event // insertion order
	Labels  []model.Label
	MinDate time.Time
	MaxDate time.Time
}

// Store provides validated storage of activity events and outcome labels.
type Store interface {
	// AddEvents validates and appends a batch of events. A batch containing an
	// invalid event is rejected as a whole.
	AddEvents(ctx context.Context, events []model.Event) error

	// AddLabels validates and appends a batch of labels. A second label for the
	// same student is a schema error.
	AddLabels(ctx context.Context, labels []model.Label) error

	// Snapshot returns a copy of the stored data.
	// Returns ErrEmpty if no events were stored.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Students returns the sorted ids of students with at least one event.
	Students(ctx context.Context) []string

	// Count returns the number of stored events.
	Count(ctx context.Context) int
}
