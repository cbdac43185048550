package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

type HabitService struct {
	repo      domain.HabitRepository
	publisher domain.ChangePublisher
}

// NewHabitService wires the habit use cases. publisher may be nil, in which
// case edits that change a habit's goal are not announced.
func NewHabitService(repo domain.HabitRepository, publisher domain.ChangePublisher) *HabitService {
	return &HabitService{
		repo:      repo,
		publisher: publisher,
	}
}

type CreateHabitInput struct {
	ID              string
	UserID          string
	Title           string
	Color           string
	Icon            string
	FrequencyPeriod string
	TargetValue     int
}

type UpdateHabitInput struct {
	ID              string
	UserID          string
	Title           string
	Color           string
	Icon            string
	FrequencyPeriod string
	TargetValue     int
	Version         int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	if input.TargetValue == 0 {
		input.TargetValue = 1
	}

	habit, err := domain.NewHabit(input.UserID, input.Title, input.Color, input.Icon, input.FrequencyPeriod, input.TargetValue)
	if err != nil {
		return nil, err
	}
	if input.ID != "" {
		habit.ID = input.ID
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// GetOwned loads a habit and hides it from anyone but its owner.
func (s *HabitService) GetOwned(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetOwned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	target := habit.TargetValue
	if input.TargetValue != 0 {
		target = input.TargetValue
	}
	goalChanged := target != habit.TargetValue ||
		(input.FrequencyPeriod != "" && input.FrequencyPeriod != habit.FrequencyPeriod)

	err = habit.Update(
		mergeString(input.Title, habit.Title),
		mergeString(input.Color, habit.Color),
		mergeString(input.Icon, habit.Icon),
		mergeString(input.FrequencyPeriod, habit.FrequencyPeriod),
		target,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if goalChanged {
		s.announce(ctx, habit, domain.ChangeUpdate)
	}

	return habit, nil
}

func (s *HabitService) UpdatePosition(ctx context.Context, id, userID string, position int) error {
	habit, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := habit.ChangePosition(position); err != nil {
		return err
	}

	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) error {
	habit, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Archive()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) error {
	habit, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	habit.Restore()
	return s.repo.Update(ctx, habit)
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	habit, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.announce(ctx, habit, domain.ChangeDelete)
	return nil
}

func (s *HabitService) announce(ctx context.Context, habit *domain.Habit, kind domain.ChangeType) {
	if s.publisher == nil {
		return
	}

	change := domain.TrackingChange{
		Type:    kind,
		UserID:  habit.UserID,
		HabitID: habit.ID,
		At:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		log.WithError(err).WithField("habit_id", habit.ID).Warn("[HABIT] failed to publish change")
	}
}
