package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var _ domain.HabitRepository = (*CachedHabitRepository)(nil)

// CachedHabitRepository is a read-through Redis layer over a habit store.
// Every refresh of a progress view reads the habit by ID and every summary
// lists the user's habits, so both reads are cached:
//
//	habits:{user}  the user's habit list
//	habit:{id}     a single habit
//
// Writes drop both keys. Redis failures are logged and the store answers.
type CachedHabitRepository struct {
	next  domain.HabitRepository
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedHabitRepository(next domain.HabitRepository, cache *redis.Client, ttl time.Duration) *CachedHabitRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedHabitRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

func listKey(userID string) string { return "habits:" + userID }

func habitKey(id string) string { return "habit:" + id }

// readThrough decodes key into dst. It reports false on a miss, on a Redis
// error or on a corrupted entry, which is removed.
func (r *CachedHabitRepository) readThrough(ctx context.Context, key string, dst any) bool {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("key", key).Warn("[CACHE] read failed")
		}
		return false
	}

	if err := json.Unmarshal(val, dst); err != nil {
		log.WithField("key", key).Warn("[CACHE] corrupted entry, dropping it")
		r.cache.Del(ctx, key)
		return false
	}
	return true
}

func (r *CachedHabitRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Warn("[CACHE] write failed")
	}
}

func (r *CachedHabitRepository) invalidate(ctx context.Context, userID, habitID string) {
	_, err := r.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listKey(userID))
		pipe.Del(ctx, habitKey(habitID))
		return nil
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": userID, "habit_id": habitID}).Warn("[CACHE] invalidation failed")
	}
}

func (r *CachedHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	var habits []*domain.Habit
	if r.readThrough(ctx, listKey(userID), &habits) {
		return habits, nil
	}

	habits, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, listKey(userID), habits)
	return habits, nil
}

func (r *CachedHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	var habit domain.Habit
	if r.readThrough(ctx, habitKey(id), &habit) {
		return &habit, nil
	}

	h, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, habitKey(id), h)
	return h, nil
}

func (r *CachedHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	if err := r.next.Create(ctx, habit); err != nil {
		return err
	}
	r.invalidate(ctx, habit.UserID, habit.ID)
	return nil
}

func (r *CachedHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	err := r.next.Update(ctx, habit)
	// a version conflict means the cached copy may be the stale one
	r.invalidate(ctx, habit.UserID, habit.ID)
	return err
}

func (r *CachedHabitRepository) Delete(ctx context.Context, id string) error {
	habit, lookupErr := r.next.GetByID(ctx, id)

	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}

	if lookupErr == nil {
		r.invalidate(ctx, habit.UserID, id)
	} else {
		r.cache.Del(ctx, habitKey(id))
	}
	return nil
}
