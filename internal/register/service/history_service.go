package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/register-pos/internal/cache"
	"github.com/register-pos/internal/domain/sale"
)

// DailySalesCacheKey is where the aggregated daily sales are cached
const DailySalesCacheKey = "register:daily_sales"

// HistoryService implements History. Concurrent rebuilds share one store read.
// generation counts invalidations; a rebuild that overlaps one is returned but not cached.
type HistoryService struct {
	repo       sale.Repository
	cache      cache.SalesCache
	policy     sale.DayPolicy
	ttl        time.Duration
	logger     *slog.Logger
	group      singleflight.Group
	generation atomic.Int64
}

// NewHistoryService creates the daily sales service. A nil cache disables caching.
func NewHistoryService(repo sale.Repository, salesCache cache.SalesCache, policy sale.DayPolicy, ttl time.Duration, logger *slog.Logger) *HistoryService {
	if salesCache == nil {
		salesCache = cache.NoopSalesCache{}
	}
	return &HistoryService{
		repo:   repo,
		cache:  salesCache,
		policy: policy,
		ttl:    ttl,
		logger: logger.With("component", "history"),
	}
}

func (s *HistoryService) DailySales(ctx context.Context) (*sale.Aggregation, error) {
	cached, found, err := s.cache.Get(ctx, DailySalesCacheKey)
	if err != nil {
		s.logger.Warn("Daily sales cache read failed", "error", err)
	} else if found {
		return cached, nil
	}

	v, err, shared := s.group.Do(DailySalesCacheKey, func() (interface{}, error) {
		return s.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Daily sales rebuild shared between callers")
	}

	return v.(*sale.Aggregation), nil
}

func (s *HistoryService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	s.group.Forget(DailySalesCacheKey)
	if err := s.cache.Invalidate(ctx, DailySalesCacheKey); err != nil {
		s.logger.Warn("Daily sales cache invalidation failed", "error", err)
	}
}

func (s *HistoryService) Refresh(ctx context.Context) (*sale.Aggregation, error) {
	s.Invalidate(ctx)
	return s.DailySales(ctx)
}

func (s *HistoryService) rebuild(ctx context.Context) (*sale.Aggregation, error) {
	generation := s.generation.Load()
	transactions, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load transactions for daily sales", "error", err)
		return nil, err
	}

	agg := sale.Aggregate(transactions, s.policy)
	if len(agg.Skipped) > 0 {
		s.logger.Warn("Transactions left out of daily sales", "count", len(agg.Skipped))
	}

	if s.generation.Load() != generation {
		s.logger.Debug("Daily sales invalidated during rebuild, result not cached")
		return &agg, nil
	}
	if err := s.cache.Set(ctx, DailySalesCacheKey, &agg, s.ttl); err != nil {
		s.logger.Warn("Daily sales cache write failed", "error", err)
	}

	return &agg, nil
}
