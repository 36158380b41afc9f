// Package reportstore keeps a durable history of run reports in PostgreSQL.
package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/pkg/logger"
)

// RunRecord is one persisted run.
type RunRecord struct {
	ID          string         `gorm:"primaryKey;size:36"`
	StartedAt   time.Time      `gorm:"index;not null"`
	DurationMS  int64          `gorm:"not null"`
	Rows        int            `gorm:"not null"`
	LabeledRows int            `gorm:"not null"`
	Columns     int            `gorm:"not null"`
	BestSubset  string         `gorm:"size:128"`
	BestModel   string         `gorm:"size:64"`
	BestF1Macro float64        `gorm:"not null;default:0"`
	FailedPairs int            `gorm:"not null;default:0"`
	Report      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time
}

// TableName overrides the gorm default.
func (RunRecord) TableName() string {
	return "gradecast_runs"
}

// NewRecord flattens r into a RunRecord.
func NewRecord(r *report.Report) (*RunRecord, error) {
	if r == nil || r.RunID == "" {
		return nil, ErrInvalidReport
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	rec := &RunRecord{
		ID:          r.RunID,
		StartedAt:   r.StartedAt,
		DurationMS:  r.Duration.Milliseconds(),
		Rows:        r.Table.Rows,
		LabeledRows: r.Table.LabeledRows,
		Columns:     r.Table.Columns,
		FailedPairs: len(r.Failed()),
		Report:      datatypes.JSON(data),
	}
	if best, ok := r.Best(); ok {
		rec.BestSubset = best.Subset
		rec.BestModel = best.Model
		rec.BestF1Macro = best.Result.F1Macro
	}
	return rec, nil
}

// Decode restores the full report of a record.
func (rec *RunRecord) Decode() (*report.Report, error) {
	var r report.Report
	if err := json.Unmarshal(rec.Report, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", rec.ID, err)
	}
	return &r, nil
}

// Store persists run records with gorm.
type Store struct {
	db     *gorm.DB
	logger logger.Logger
}

// Open connects to PostgreSQL at dsn.
func Open(dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect report store: %w", err)
	}
	return New(db, opts...), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("report-store")
	}
	return s
}

// Migrate creates or updates the runs table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&RunRecord{}); err != nil {
		return fmt.Errorf("failed to migrate report store: %w", err)
	}
	return nil
}

// Save inserts the report of a run.
func (s *Store) Save(ctx context.Context, r *report.Report) error {
	rec, err := NewRecord(r)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	s.logger.Info(ctx, "saved run report",
		logger.String("run_id", rec.ID),
		logger.String("best_subset", rec.BestSubset),
		logger.String("best_model", rec.BestModel),
	)
	return nil
}

// Get loads the report of a run.
func (s *Store) Get(ctx context.Context, runID string) (*report.Report, error) {
	var rec RunRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", runID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return rec.Decode()
}

// Recent returns up to limit records, newest first. Reports are not decoded.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var recs []RunRecord
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return recs, nil
}

// Publish saves r. It lets the store receive reports from the pipeline.
func (s *Store) Publish(ctx context.Context, r *report.Report) error {
	return s.Save(ctx, r)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
