package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository         = (*InMemoryHabitRepository)(nil)
	_ domain.TrackingEventRepository = (*InMemoryTrackingEventRepository)(nil)
)

// InMemoryHabitRepository backs the memory storage driver. It stores copies,
// so callers never share state with the store.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; ok {
		return domain.ErrHabitConflict
	}

	habit.Version = 1
	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.UpdatedAt = now
	stored.Version++
	return nil
}

type InMemoryTrackingEventRepository struct {
	store map[string]*domain.TrackingEvent

	mu sync.RWMutex
}

func NewInMemoryTrackingEventRepository() *InMemoryTrackingEventRepository {
	return &InMemoryTrackingEventRepository{
		store: make(map[string]*domain.TrackingEvent),
	}
}

func (r *InMemoryTrackingEventRepository) Create(ctx context.Context, event *domain.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if _, ok := r.store[event.ID]; ok {
		return domain.ErrEventConflict
	}

	clone := *event
	r.store[event.ID] = &clone
	return nil
}

func (r *InMemoryTrackingEventRepository) Update(ctx context.Context, event *domain.TrackingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[event.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrEventNotFound
	}
	if stored.Version != event.Version-1 {
		return domain.ErrEventConflict
	}

	clone := *event
	r.store[event.ID] = &clone
	return nil
}

func (r *InMemoryTrackingEventRepository) Delete(ctx context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[id]
	if !ok || stored.DeletedAt != nil || stored.UserID != userID {
		return domain.ErrEventNotFound
	}

	now := time.Now().UTC()
	stored.DeletedAt = &now
	stored.UpdatedAt = now
	stored.Version++
	return nil
}

func (r *InMemoryTrackingEventRepository) GetByID(ctx context.Context, id string) (*domain.TrackingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.store[id]
	if !ok || stored.DeletedAt != nil {
		return nil, domain.ErrEventNotFound
	}
	clone := *stored
	return &clone, nil
}

func (r *InMemoryTrackingEventRepository) ListByUser(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.TrackingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []*domain.TrackingEvent{}
	for _, e := range r.store {
		if e.UserID != userID || e.DeletedAt != nil {
			continue
		}
		if habitID != "" && e.HabitID != habitID {
			continue
		}
		if !from.IsZero() && e.OccurredAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.OccurredAt.Before(to) {
			continue
		}
		clone := *e
		events = append(events, &clone)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].OccurredAt.Before(events[j].OccurredAt) })
	return events, nil
}

func (r *InMemoryTrackingEventRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []*domain.TrackingEvent{}
	for _, e := range r.store {
		if e.UserID == userID && e.UpdatedAt.After(since) {
			clone := *e
			events = append(events, &clone)
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].UpdatedAt.Before(events[j].UpdatedAt) })
	return events, nil
}
