package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/register-pos/internal/domain/sale"
)

type RedisSalesCache struct {
	client *redis.Client
}

func NewRedisSalesCache(addr string, password string, db int) *RedisSalesCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSalesCache{client: client}
}

func (c *RedisSalesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSalesCache) Close() error {
	return c.client.Close()
}

func (c *RedisSalesCache) Get(ctx context.Context, key string) (*sale.Aggregation, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var agg sale.Aggregation
	if err := json.Unmarshal(val, &agg); err != nil {
		return nil, false, err
	}
	if agg.Days == nil {
		agg.Days = []sale.DailySales{}
	}
	return &agg, true, nil
}

func (c *RedisSalesCache) Set(ctx context.Context, key string, value *sale.Aggregation, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisSalesCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
