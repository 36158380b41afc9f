package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/gradecast/internal/domain/model"
	"github.com/okian/gradecast/pkg/logger"
)

// Default queries. Both must return columns in the listed order.
const (
	DefaultEventsQuery = `SELECT student_id, activity, date FROM student_activity`
	DefaultLabelsQuery = `SELECT student_id, final_grade FROM student_outcomes`
)

// Querier is the subset of *pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads events and labels with SQL queries.
type PostgresSource struct {
	db   Querier
	opts options
}

// NewPostgresSource creates a source over an existing connection pool.
func NewPostgresSource(db Querier, opts ...Option) *PostgresSource {
	return &PostgresSource{db: db, opts: newOptions("postgres-source", opts)}
}

// Connect opens a pgx pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Events implements Source. The date column may be a DATE, a TIMESTAMP or a
// text value in the configured layout.
func (s *PostgresSource) Events(ctx context.Context) ([]model.Event, error) {
	const op = "source.PostgresSource.Events"
	rows, err := s.db.Query(ctx, s.opts.eventsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read event row: %w", err)
		}
		if len(values) < 3 {
			return nil, model.SchemaError(op, "", fmt.Sprintf("expected 3 columns, got %d", len(values)))
		}
		ev, err := s.event(values)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	s.opts.logger.Info(ctx, "loaded events", logger.Int("rows", len(events)))
	return events, nil
}

func (s *PostgresSource) event(values []any) (model.Event, error) {
	studentID, activity := text(values[0]), text(values[1])
	switch d := values[2].(type) {
	case time.Time:
		return model.NewEvent(studentID, activity, d)
	case nil:
		return model.ParseEvent(studentID, activity, "", s.opts.dateLayout)
	default:
		return model.ParseEvent(studentID, activity, text(d), s.opts.dateLayout)
	}
}

// Labels implements Source.
func (s *PostgresSource) Labels(ctx context.Context) ([]model.Label, error) {
	rows, err := s.db.Query(ctx, s.opts.labelsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	var labels []model.Label
	for rows.Next() {
		var studentID, grade *string
		if err := rows.Scan(&studentID, &grade); err != nil {
			return nil, model.WrapSchemaError("source.PostgresSource.Labels", "", "unreadable label row", err)
		}
		l, err := model.NewLabel(deref(studentID), deref(grade))
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labels: %w", err)
	}

	s.opts.logger.Info(ctx, "loaded labels", logger.Int("rows", len(labels)))
	return labels, nil
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
