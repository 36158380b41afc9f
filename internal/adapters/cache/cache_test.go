package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/gradecast/internal/adapters/cache"
	"github.com/okian/gradecast/internal/domain/abt"
	"github.com/okian/gradecast/internal/domain/report"
	"github.com/okian/gradecast/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// memClient is an in-memory stand-in for *redis.Client.
type memClient struct {
	data   map[string]string
	ttls   map[string]time.Duration
	setErr error
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func sample() *report.Report {
	return &report.Report{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration:  3 * time.Second,
		Table:     abt.Summary{Rows: 10, LabeledRows: 8, Columns: 12},
		Columns:   []string{"total_activities"},
	}
}

func TestCache_PublishAndGet(t *testing.T) {
	client := newMemClient()
	c := cache.New(client, cache.WithTTL(time.Hour))

	require.NoError(t, c.Publish(context.Background(), sample()))
	assert.Equal(t, "run-1", client.data[cache.KeyLatest])
	assert.Equal(t, time.Hour, client.ttls[cache.RunKey("run-1")])

	got, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	latest, err := c.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", latest.RunID)
}

func TestCache_Errors(t *testing.T) {
	client := newMemClient()
	c := cache.New(client)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	_, err = c.Latest(context.Background())
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	assert.ErrorIs(t, c.Publish(context.Background(), &report.Report{}), cache.ErrInvalidReport)

	client.data[cache.RunKey("bad")] = "{not json"
	_, err = c.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, cache.ErrSerialization)

	boom := errors.New("connection refused")
	client.setErr = boom
	assert.ErrorIs(t, c.Publish(context.Background(), sample()), boom)
}
