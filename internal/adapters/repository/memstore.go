package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/gradecast/internal/domain/dedupe"
	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
	"github.com/okian/gradecast/pkg/metrics"
)

// MemoryStore implements Store in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	events   []model.Event
	labels   []model.Label
	students map[string]int // event count per student
	minDate  time.Time
	maxDate  time.Time

	labelKeys        dedupe.Deduper
	expectedStudents int

	logger logger.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		students: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("event-store")
	}
	s.labelKeys = dedupe.NewInMemoryDeduper(dedupe.WithCapacityHint(s.expectedStudents))
	return s
}

// AddEvents validates and appends a batch of events.
func (s *MemoryStore) AddEvents(ctx context.Context, events []model.Event) error {
	valid := make([]model.Event, len(events))
	for i, ev := range events {
		normalised, err := model.NewEvent(ev.StudentID, ev.Activity, ev.Date)
		if err != nil {
			metrics.RecordSchemaError("ingest_events")
			s.logger.Error(ctx, "rejecting event batch",
				logger.Int("row", i),
				logger.Int("batch_size", len(events)),
				logger.Error(err),
			)
			return err
		}
		valid[i] = normalised
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range valid {
		if len(s.events) == 0 {
			s.minDate, s.maxDate = ev.Date, ev.Date
		}
		if ev.Date.Before(s.minDate) {
			s.minDate = ev.Date
		}
		if ev.Date.After(s.maxDate) {
			s.maxDate = ev.Date
		}
		s.students[ev.StudentID]++
		s.events = append(s.events, ev)
	}

	metrics.RecordEventsIngested(len(valid))
	s.logger.Debug(ctx, "stored events", logger.Int("batch_size", len(valid)), logger.Int("total", len(s.events)))
	return nil
}

// AddLabels validates and appends a batch of labels.
func (s *MemoryStore) AddLabels(ctx context.Context, labels []model.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make([]model.Label, 0, len(labels))
	recorded := make([]string, 0, len(labels))
	rollback := func() {
		for _, id := range recorded {
			s.labelKeys.Unrecord(ctx, id)
		}
	}

	for i, l := range labels {
		label, err := model.NewLabel(l.StudentID, string(l.FinalGrade))
		if err != nil {
			rollback()
			metrics.RecordSchemaError("ingest_labels")
			s.logger.Error(ctx, "rejecting label batch", logger.Int("row", i), logger.Error(err))
			return err
		}
		if s.labelKeys.SeenAndRecord(ctx, label.StudentID) {
			rollback()
			metrics.RecordSchemaError("ingest_labels")
			err := model.SchemaError("repository.AddLabels", "student_id", "duplicate label for student "+label.StudentID)
			s.logger.Error(ctx, "rejecting label batch", logger.Int("row", i), logger.Error(err))
			return err
		}
		recorded = append(recorded, label.StudentID)
		valid = append(valid, label)
	}

	s.labels = append(s.labels, valid...)
	metrics.RecordLabelsIngested(len(valid))
	return nil
}

// Snapshot returns a copy of the stored data.
func (s *MemoryStore) Snapshot(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) == 0 {
		return Snapshot{}, ErrEmpty
	}

	events := make([]model.Event, len(s.events))
	copy(events, s.events)
	labels := make([]model.Label, len(s.labels))
	copy(labels, s.labels)

	return Snapshot{
		Events:  events,
		Labels:  labels,
		MinDate: s.minDate,
		MaxDate: s.maxDate,
	}, nil
}

// Students returns the sorted ids of students with at least one event.
func (s *MemoryStore) Students(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.students))
	for id := range s.students {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of stored events.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}
