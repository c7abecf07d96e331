// Package cache keeps derived daily sales between rebuilds.
package cache

import (
	"context"
	"time"

	"github.com/register-pos/internal/domain/sale"
)

// SalesCache stores daily sales aggregations by key
type SalesCache interface {
	Get(ctx context.Context, key string) (*sale.Aggregation, bool, error)
	Set(ctx context.Context, key string, value *sale.Aggregation, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// NoopSalesCache never holds anything, so every read rebuilds
type NoopSalesCache struct{}

func (NoopSalesCache) Get(_ context.Context, _ string) (*sale.Aggregation, bool, error) {
	return nil, false, nil
}

func (NoopSalesCache) Set(_ context.Context, _ string, _ *sale.Aggregation, _ time.Duration) error {
	return nil
}

func (NoopSalesCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
