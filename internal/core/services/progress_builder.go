package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/progress"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/workers"
)

var _ workers.Loader = (*ProgressBuilder)(nil)

// ProgressBuilder fetches what the progress pipeline needs and runs it.
// Repository failures come back wrapped in domain.ErrDataFetch.
type ProgressBuilder struct {
	habitRepo domain.HabitRepository
	eventRepo domain.TrackingEventRepository
	snapshots domain.SnapshotStore
	clock     domain.Clock
}

func NewProgressBuilder(habitRepo domain.HabitRepository, eventRepo domain.TrackingEventRepository, snapshots domain.SnapshotStore, clock domain.Clock) *ProgressBuilder {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ProgressBuilder{
		habitRepo: habitRepo,
		eventRepo: eventRepo,
		snapshots: snapshots,
		clock:     clock,
	}
}

// Build computes the view of one habit as seen on the reference date.
func (b *ProgressBuilder) Build(ctx context.Context, userID, habitID string, reference time.Time) (*domain.HabitProgress, error) {
	habit, err := b.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: habit %s: %w", domain.ErrDataFetch, habitID, err)
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	to := progress.Day(reference).AddDate(0, 0, 1)
	events, err := b.eventRepo.ListByUser(ctx, userID, habitID, time.Time{}, to)
	if err != nil {
		return nil, fmt.Errorf("%w: events of habit %s: %w", domain.ErrDataFetch, habitID, err)
	}

	view := progress.Build(progress.Input{
		UserID:    userID,
		Habit:     habit,
		Events:    events,
		Reference: reference,
		Now:       b.clock.Now(),
	})
	if view.SkippedEvents > 0 {
		log.WithFields(log.Fields{"habit_id": habitID, "skipped": view.SkippedEvents}).Warn("[PROGRESS] malformed events skipped")
	}

	return view, nil
}

// Load builds the live view of a habit, as of now, and stores it as the
// latest snapshot.
func (b *ProgressBuilder) Load(ctx context.Context, userID, habitID string) (*domain.HabitProgress, error) {
	view, err := b.Build(ctx, userID, habitID, b.clock.Now())
	if err != nil {
		return nil, err
	}

	if b.snapshots != nil {
		if err := b.snapshots.Save(ctx, view); err != nil {
			log.WithError(err).WithField("habit_id", habitID).Warn("[PROGRESS] failed to save snapshot")
		}
	}

	return view, nil
}

// BuildSummary computes the user-level lifetime stats across every habit.
func (b *ProgressBuilder) BuildSummary(ctx context.Context, userID string, reference time.Time) (*domain.LifetimeStats, error) {
	habits, err := b.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: habits of user %s: %w", domain.ErrDataFetch, userID, err)
	}

	to := progress.Day(reference).AddDate(0, 0, 1)
	events, err := b.eventRepo.ListByUser(ctx, userID, "", time.Time{}, to)
	if err != nil {
		return nil, fmt.Errorf("%w: events of user %s: %w", domain.ErrDataFetch, userID, err)
	}

	summary := progress.BuildSummary(habits, events, reference)
	return &summary, nil
}
