package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/gradecast/internal/synthetic"
	"github.com/okian/gradecast/pkg/logger"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		students   = flag.Int("students", synthetic.DefaultStudents, "Number of students")
		days       = flag.Int("days", synthetic.DefaultDays, "Length of the timeline in days")
		start      = flag.String("start", "2024-01-01", "First day of the timeline, YYYY-MM-DD")
		seed       = flag.Int64("seed", synthetic.DefaultSeed, "Random seed")
		unlabeled  = flag.Float64("unlabeled", synthetic.DefaultUnlabeledFraction, "Share of students without a label")
		eventsFile = flag.String("events", synthetic.DefaultEventsFile, "Output events file")
		labelsFile = flag.String("labels", synthetic.DefaultLabelsFile, "Output labels file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synthetic.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	startDate, err := time.Parse(dateLayout, *start)
	if err != nil {
		_, _ = os.Stderr.WriteString("Invalid -start: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := synthetic.Config{
		Students:          *students,
		Days:              *days,
		Start:             startDate,
		Seed:              *seed,
		UnlabeledFraction: *unlabeled,
		EventsFile:        *eventsFile,
		LabelsFile:        *labelsFile,
	}
	if _, err := synthetic.Run(ctx, cfg); err != nil {
		_, _ = os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
