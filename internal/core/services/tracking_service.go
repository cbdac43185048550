package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// TrackingService is the only writer of tracking events. Every successful
// write is announced on the change feed so progress views can refresh.
type TrackingService struct {
	repo      domain.TrackingEventRepository
	habitRepo domain.HabitRepository
	publisher domain.ChangePublisher
}

func NewTrackingService(repo domain.TrackingEventRepository, habitRepo domain.HabitRepository, publisher domain.ChangePublisher) *TrackingService {
	return &TrackingService{
		repo:      repo,
		habitRepo: habitRepo,
		publisher: publisher,
	}
}

type LogEventInput struct {
	ID         string
	HabitID    string
	UserID     string
	OccurredAt time.Time
	Count      int
}

type CorrectEventInput struct {
	ID      string
	UserID  string
	Count   int
	Version int
}

func (s *TrackingService) Log(ctx context.Context, input LogEventInput) (*domain.TrackingEvent, error) {
	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrUnauthorized
	}
	if habit.ArchivedAt != nil {
		return nil, domain.ErrHabitArchived
	}

	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	event := domain.NewTrackingEvent(habit, occurred, input.Count)
	if input.ID != "" {
		event.ID = input.ID
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.announce(ctx, event, domain.ChangeInsert)

	return event, nil
}

// Correct replaces the count of an existing event. A non-zero input version
// must match the stored one.
func (s *TrackingService) Correct(ctx context.Context, input CorrectEventInput) (*domain.TrackingEvent, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrEventConflict, input.Version, existing.Version)
	}

	existing.Count = input.Count
	if err := existing.Validate(); err != nil {
		return nil, err
	}

	existing.Version++
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.announce(ctx, existing, domain.ChangeUpdate)

	return existing, nil
}

func (s *TrackingService) GetByID(ctx context.Context, id string, userID string) (*domain.TrackingEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return event, nil
}

// List returns the events of a user in [from, to). A non-empty habitID must
// belong to the user.
func (s *TrackingService) List(ctx context.Context, userID, habitID string, from, to time.Time) ([]*domain.TrackingEvent, error) {
	if habitID != "" {
		habit, err := s.habitRepo.GetByID(ctx, habitID)
		if err != nil {
			return nil, err
		}
		if habit.UserID != userID {
			return nil, domain.ErrUnauthorized
		}
	}

	return s.repo.ListByUser(ctx, userID, habitID, from, to)
}

func (s *TrackingService) Delete(ctx context.Context, id string, userID string) error {
	event, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.announce(ctx, event, domain.ChangeDelete)

	return nil
}

func (s *TrackingService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingEvent, error) {
	return s.repo.GetChanges(ctx, userID, since)
}

func (s *TrackingService) announce(ctx context.Context, event *domain.TrackingEvent, kind domain.ChangeType) {
	if s.publisher == nil {
		return
	}

	change := domain.TrackingChange{
		Type:    kind,
		UserID:  event.UserID,
		HabitID: event.HabitID,
		EventID: event.ID,
		At:      time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"event_id": event.ID,
			"habit_id": event.HabitID,
		}).Warn("[TRACKING] failed to publish change")
	}
}
