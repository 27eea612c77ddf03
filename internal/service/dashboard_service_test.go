package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type stubSummaryStore struct {
	summary *models.DailySummary
	calls   int
}

func (s *stubSummaryStore) DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, error) {
	s.calls++
	return s.summary, nil
}

type stubSummaryCache struct {
	summaries map[string]*models.DailySummary
}

func (c *stubSummaryCache) Get(ctx context.Context, key string, dest interface{}) error {
	summary, ok := c.summaries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*models.DailySummary)) = *summary
	return nil
}

func (c *stubSummaryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.summaries == nil {
		c.summaries = make(map[string]*models.DailySummary)
	}
	if summary, ok := value.(*models.DailySummary); ok {
		copied := *summary
		c.summaries[key] = &copied
	}
	return nil
}

func (c *stubSummaryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.summaries = nil
	return nil
}

func TestDashboardServiceComputesOnMiss(t *testing.T) {
	store := &stubSummaryStore{summary: &models.DailySummary{Present: 40, Absent: 10, Total: 50}}
	cache := &stubSummaryCache{}
	svc := NewDashboardService(store, cache, time.Minute, nil)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	summary, cached, err := svc.DailySummary(context.Background(), date)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 40, summary.Present)
	assert.Equal(t, 1, store.calls)
}

func TestDashboardServiceServesFromCache(t *testing.T) {
	store := &stubSummaryStore{summary: &models.DailySummary{Present: 40, Total: 50}}
	cache := &stubSummaryCache{}
	svc := NewDashboardService(store, cache, time.Minute, nil)

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.DailySummary(context.Background(), date)
	require.NoError(t, err)

	_, cached, err := svc.DailySummary(context.Background(), date)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, store.calls)
}

func TestDashboardServiceWorksWithoutCache(t *testing.T) {
	store := &stubSummaryStore{summary: &models.DailySummary{Total: 0}}
	svc := NewDashboardService(store, nil, time.Minute, nil)

	_, cached, err := svc.DailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, store.calls)
}
