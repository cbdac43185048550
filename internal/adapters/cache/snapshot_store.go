package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ domain.SnapshotStore = (*RedisSnapshotStore)(nil)

// RedisSnapshotStore persists the last good progress view of each habit as
// JSON under progress:{user}:{habit}.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(userID, habitID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, habitID)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, view *domain.HabitProgress) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.client.Set(ctx, snapshotKey(view.UserID, view.HabitID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (s *RedisSnapshotStore) Load(ctx context.Context, userID, habitID string) (*domain.HabitProgress, error) {
	key := snapshotKey(userID, habitID)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSnapshotMiss
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var view domain.HabitProgress
	if err := json.Unmarshal(data, &view); err != nil {
		s.client.Del(ctx, key)
		return nil, fmt.Errorf("%w: corrupted snapshot dropped", domain.ErrSnapshotMiss)
	}
	return &view, nil
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, userID, habitID string) error {
	return s.client.Del(ctx, snapshotKey(userID, habitID)).Err()
}
