package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../.env")

	rdb, err := NewRedisClient(Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, rdb.FlushDB(context.Background()).Err(), "Failed to flush test DB")
	return rdb
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6379", Config{Host: "cache", Port: "6379"}.Addr())
	assert.Equal(t, "[::1]:6380", Config{Host: "::1", Port: "6380"}.Addr())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}

func TestRedisSnapshotStore_Integration(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()
	store := NewRedisSnapshotStore(rdb, time.Minute)

	view := &domain.HabitProgress{
		UserID:        "u1",
		HabitID:       "water",
		ReferenceDate: time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Series: map[domain.TimeFrame]domain.ProgressSeries{
			domain.TimeFrameWeek: {HabitID: "water", Ratios: []float64{1, 0.5}},
		},
		Stats: domain.LifetimeStats{HabitID: "water", LongestStreak: 3},
	}

	t.Run("Miss before the first save", func(t *testing.T) {
		_, err := store.Load(ctx, "u1", "water")
		assert.ErrorIs(t, err, domain.ErrSnapshotMiss)
	})

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, view))

		loaded, err := store.Load(ctx, "u1", "water")
		require.NoError(t, err)
		assert.True(t, loaded.ReferenceDate.Equal(view.ReferenceDate))
		assert.Equal(t, []float64{1, 0.5}, loaded.Series[domain.TimeFrameWeek].Ratios)
		assert.Equal(t, 3, loaded.Stats.LongestStreak)

		ttl, err := rdb.TTL(ctx, "progress:u1:water").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("Snapshots are scoped per user", func(t *testing.T) {
		_, err := store.Load(ctx, "u2", "water")
		assert.ErrorIs(t, err, domain.ErrSnapshotMiss)
	})

	t.Run("Corrupted snapshot is dropped", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, "progress:u1:broken", "{not json", time.Minute).Err())

		_, err := store.Load(ctx, "u1", "broken")
		assert.ErrorIs(t, err, domain.ErrSnapshotMiss)

		_, err = rdb.Get(ctx, "progress:u1:broken").Result()
		assert.ErrorIs(t, err, redis.Nil)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "u1", "water"))
		_, err := store.Load(ctx, "u1", "water")
		assert.ErrorIs(t, err, domain.ErrSnapshotMiss)
	})
}
