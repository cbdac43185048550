package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

type MockRepo struct {
	store         map[string]*domain.Habit
	simulateError error
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		store: make(map[string]*domain.Habit),
	}
}

func (m *MockRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}

	if _, exists := m.store[habit.ID]; exists {
		return errors.New("duplicate key value violates unique constraint")
	}

	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	h, ok := m.store[id]
	if !ok || h.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Habit
	for _, h := range m.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}

	stored, ok := m.store[habit.ID]
	if !ok {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	clone := *habit
	clone.Version++
	habit.Version = clone.Version
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	now := time.Now().UTC()
	h.DeletedAt = &now
	h.Version++
	h.UpdatedAt = now
	return nil
}

type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.TrackingEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepo) Update(ctx context.Context, event *domain.TrackingEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockEventRepo) GetByID(ctx context.Context, id string) (*domain.TrackingEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingEvent), args.Error(1)
}

func (m *MockEventRepo) ListByUser(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.TrackingEvent, error) {
	args := m.Called(ctx, userID, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingEvent), args.Error(1)
}

func (m *MockEventRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingEvent, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingEvent), args.Error(1)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []domain.TrackingChange
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, change domain.TrackingChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return p.err
}

func (p *recordingPublisher) Changes() []domain.TrackingChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TrackingChange(nil), p.changes...)
}

type memorySnapshots struct {
	mu    sync.Mutex
	views map[string]*domain.HabitProgress
	saves int
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{views: make(map[string]*domain.HabitProgress)}
}

func (s *memorySnapshots) Save(ctx context.Context, view *domain.HabitProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view.UserID+"/"+view.HabitID] = view
	s.saves++
	return nil
}

func (s *memorySnapshots) Load(ctx context.Context, userID, habitID string) (*domain.HabitProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[userID+"/"+habitID]
	if !ok {
		return nil, domain.ErrSnapshotMiss
	}
	return v, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
