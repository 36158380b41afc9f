// Package cache publishes run reports to Redis so other services can read the
// latest results without rerunning the pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/pkg/logger"
)

// Key layout.
const (
	PrefixRun = "gradecast:run:"
	KeyLatest = PrefixRun + "latest"
)

// DefaultTTL is how long a published report is kept.
const DefaultTTL = 24 * time.Hour

// Client is the subset of *redis.Client used by Cache.
type Client interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Cache stores reports keyed by run id.
type Cache struct {
	client Client
	ttl    time.Duration
	logger logger.Logger
}

// NewClient creates a go-redis client.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// New creates a cache over client.
func New(client Client, opts ...Option) *Cache {
	c := &Cache{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("report-cache")
	}
	return c
}

// RunKey returns the key of a run report.
func RunKey(runID string) string {
	return PrefixRun + runID
}

// Publish stores r under its run id and marks it as the latest run.
func (c *Cache) Publish(ctx context.Context, r *report.Report) error {
	if r == nil || r.RunID == "" {
		return ErrInvalidReport
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if err := c.client.Set(ctx, RunKey(r.RunID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	if err := c.client.Set(ctx, KeyLatest, r.RunID, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to update latest run: %w", err)
	}
	c.logger.Info(ctx, "published report", logger.String("run_id", r.RunID), logger.Int("bytes", len(data)))
	return nil
}

// Get loads the report of a run.
func (c *Cache) Get(ctx context.Context, runID string) (*report.Report, error) {
	data, err := c.client.Get(ctx, RunKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return &r, nil
}

// Latest loads the most recently published report.
func (c *Cache) Latest(ctx context.Context) (*report.Report, error) {
	runID, err := c.client.Get(ctx, KeyLatest).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to load latest run id: %w", err)
	}
	return c.Get(ctx, runID)
}
