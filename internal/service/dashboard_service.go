package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

type summaryStore interface {
	DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, error)
}

// DashboardService serves the day's aggregate counts behind a short-lived
// cache. Reads only; the engine's writers invalidate the cache after a
// reconciliation sweep.
type DashboardService struct {
	store  summaryStore
	cache  reportCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(store summaryStore, cache reportCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, cache: cache, ttl: ttl, logger: logger}
}

// DailySummary returns the cached summary for a date, computing and caching
// it on a miss. The boolean reports whether the cache served the value.
func (s *DashboardService) DailySummary(ctx context.Context, date time.Time) (*models.DailySummary, bool, error) {
	key := summaryCacheKey(date)

	if s.cache != nil {
		var cached models.DailySummary
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, true, nil
		}
		if appErrors.FromError(err).Code != appErrors.ErrCacheMiss.Code {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		}
	}

	summary, err := s.store.DailySummary(ctx, date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "compute daily summary")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, summary, s.ttl); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

func summaryCacheKey(date time.Time) string {
	return fmt.Sprintf("dashboard:summary:%s", date.Format("2006-01-02"))
}
