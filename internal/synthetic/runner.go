package synthetic

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/gradecast/internal/adapters/source"
	"github.com/okian/gradecast/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates a cohort and writes it to the configured CSV files.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "generating synthetic cohort",
		logger.Int("students", cfg.Students),
		logger.Int("days", cfg.Days),
		logger.Any("seed", cfg.Seed),
		logger.String("eventsFile", cfg.EventsFile),
		logger.String("labelsFile", cfg.LabelsFile))

	cohort, err := Generate(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cohort generation failed: %w", err)
	}

	if err := writeFile(cfg.EventsFile, func(f *os.File) error {
		return source.WriteEvents(f, cohort.Events, "")
	}); err != nil {
		return nil, fmt.Errorf("failed to write events: %w", err)
	}
	if err := writeFile(cfg.LabelsFile, func(f *os.File) error {
		return source.WriteLabels(f, cohort.Labels)
	}); err != nil {
		return nil, fmt.Errorf("failed to write labels: %w", err)
	}

	seen := make(map[string]struct{})
	for _, ev := range cohort.Events {
		seen[ev.StudentID] = struct{}{}
	}
	stats.StudentsGenerated = len(seen)
	stats.EventsGenerated = len(cohort.Events)
	stats.LabelsGenerated = len(cohort.Labels)
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "synthetic cohort written",
		logger.Int("students", stats.StudentsGenerated),
		logger.Int("events", stats.EventsGenerated),
		logger.Int("labels", stats.LabelsGenerated),
		logger.Duration("took", stats.Duration))
	return stats, nil
}

func writeFile(path string, write func(*os.File) error) error {
	if path == "" {
		return source.ErrMissingPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
