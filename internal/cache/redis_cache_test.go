package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisSalesCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c := NewRedisSalesCache(server.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, server
}

func sampleAggregation() *sale.Aggregation {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tx := sale.Transaction{
		ID:        uuid.New(),
		Items:     []catalog.Item{{Name: "ビール", Price: 500}},
		Total:     500,
		CreatedAt: &created,
		IsClosed:  true,
	}
	agg := sale.Aggregate([]sale.Transaction{tx}, sale.NewDayPolicy(time.UTC, ""))
	return &agg
}

func TestRedisSalesCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, server := newTestRedisCache(t)

	require.NoError(t, c.Ping(ctx))

	_, found, err := c.Get(ctx, "register:daily_sales")
	require.NoError(t, err)
	assert.False(t, found)

	want := sampleAggregation()
	require.NoError(t, c.Set(ctx, "register:daily_sales", want, time.Minute))
	assert.True(t, server.Exists("register:daily_sales"))

	got, found, err := c.Get(ctx, "register:daily_sales")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "2024/3/1", got.Days[0].Date)
	assert.Equal(t, int64(500), got.Days[0].Total)
	assert.Equal(t, want.Days[0].Transactions[0].ID, got.Days[0].Transactions[0].ID)

	server.FastForward(2 * time.Minute)
	_, found, err = c.Get(ctx, "register:daily_sales")
	require.NoError(t, err)
	assert.False(t, found, "entry expires after its ttl")
}

func TestRedisSalesCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, server := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "k", sampleAggregation(), time.Minute))
	require.NoError(t, c.Invalidate(ctx, "k"))
	assert.False(t, server.Exists("k"))

	assert.NoError(t, c.Invalidate(ctx, "k"), "invalidating a missing key is not an error")
}

func TestRedisSalesCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, server := newTestRedisCache(t)

	require.NoError(t, server.Set("k", "not json"))
	_, found, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisSalesCache_SetNil(t *testing.T) {
	c, server := newTestRedisCache(t)

	require.NoError(t, c.Set(context.Background(), "k", nil, time.Minute))
	assert.False(t, server.Exists("k"))
}

func TestNoopSalesCache(t *testing.T) {
	ctx := context.Background()
	var c SalesCache = NoopSalesCache{}

	require.NoError(t, c.Set(ctx, "k", sampleAggregation(), time.Minute))
	got, found, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, "k"))
}
