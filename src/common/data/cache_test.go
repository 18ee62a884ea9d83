package data

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jack-barr3tt/gbr-punctuality/src/common/config"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/reconcile"
	"github.com/jack-barr3tt/gbr-punctuality/src/common/types"
)

func TestPunctualityCache_Key(t *testing.T) {
	cache := NewPunctualityCache(nil, config.RedisConfig{KeyPrefix: "punctuality"})

	rows := reconcile.Reconcile([]types.TrainData{
		sampleTrainData("W12345", "2023-10-03", "0010", "1", "0015"),
		sampleTrainData("", "2023-10-03", "0010", "1", "0015"),
		sampleTrainData("W12345", "not a date", "0010", "1", "0015"),
	})

	key, ok := cache.Key(rows[0])
	assert.True(t, ok)
	assert.Equal(t, "punctuality:W12345:2023-10-04", key)

	_, ok = cache.Key(rows[1])
	assert.False(t, ok)

	_, ok = cache.Key(rows[2])
	assert.False(t, ok)
}

func TestPunctualityFields(t *testing.T) {
	rows := reconcile.Reconcile([]types.TrainData{
		sampleTrainData("W12345", "2023-10-01", "1000", "0", "1005"),
		sampleTrainData("W12346", "2023-10-01", "1000", "0", "None"),
	})

	fields := punctualityFields(rows[0])
	assert.Equal(t, "1A23", fields["train_id"])
	assert.Equal(t, "10:00:00", fields["booked_departure"])
	assert.Equal(t, "10:05:00", fields["realtime_departure"])
	assert.Equal(t, "300.0", fields["time_difference"])

	fields = punctualityFields(rows[1])
	assert.Equal(t, "", fields["realtime_departure"])
	assert.Equal(t, "", fields["time_difference"])
}

func newTestCache(t *testing.T, ttl time.Duration) (*PunctualityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewPunctualityCache(rdb, config.RedisConfig{TTL: ttl, KeyPrefix: "punctuality"})
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestPunctualityCache_Store(t *testing.T) {
	cache, mr := newTestCache(t, 48*time.Hour)

	rows := reconcile.Reconcile([]types.TrainData{
		sampleTrainData("W12345", "2023-10-01", "1000", "0", "1005"),
		sampleTrainData("", "2023-10-01", "1100", "0", "1100"),
		sampleTrainData("W12346", "2023-10-03", "0010", "1", "None"),
	})

	stored, err := cache.Store(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Len(t, mr.Keys(), 2)

	key := "punctuality:W12345:2023-10-01"
	assert.Equal(t, "1A23", mr.HGet(key, "train_id"))
	assert.Equal(t, "GW", mr.HGet(key, "atoc_code"))
	assert.Equal(t, "Reading", mr.HGet(key, "location"))
	assert.Equal(t, "10:00:00", mr.HGet(key, "booked_departure"))
	assert.Equal(t, "10:05:00", mr.HGet(key, "realtime_departure"))
	assert.Equal(t, "300.0", mr.HGet(key, "time_difference"))
	assert.Equal(t, "CALL", mr.HGet(key, "display_as"))
	assert.Equal(t, 48*time.Hour, mr.TTL(key))

	nextDay := "punctuality:W12346:2023-10-04"
	assert.True(t, mr.Exists(nextDay))
	assert.Equal(t, "", mr.HGet(nextDay, "time_difference"))
}

func TestPunctualityCache_StoreWithoutTTL(t *testing.T) {
	cache, mr := newTestCache(t, 0)

	rows := reconcile.Reconcile([]types.TrainData{
		sampleTrainData("W12345", "2023-10-01", "1000", "0", "1005"),
	})

	stored, err := cache.Store(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	assert.Equal(t, time.Duration(0), mr.TTL("punctuality:W12345:2023-10-01"))
}

func TestPunctualityCache_StoreUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cache := NewPunctualityCache(redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1}), config.RedisConfig{TTL: time.Hour, KeyPrefix: "punctuality"})
	defer cache.Close()

	rows := reconcile.Reconcile([]types.TrainData{
		sampleTrainData("W12345", "2023-10-01", "1000", "0", "1005"),
	})

	stored, err := cache.Store(context.Background(), rows)
	assert.Error(t, err)
	assert.Zero(t, stored)
}
