package services

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/progress"
	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/workers"
)

// ProgressService is the read side of the engine.
//
// Reads for today are served from the coordinator's live view, then from the
// snapshot store, and only then built synchronously; the result primes the
// coordinator. Reads for another reference date are always built on demand.
type ProgressService struct {
	builder     *ProgressBuilder
	coordinator *workers.RefreshCoordinator
	snapshots   domain.SnapshotStore
	clock       domain.Clock
}

func NewProgressService(builder *ProgressBuilder, coordinator *workers.RefreshCoordinator, snapshots domain.SnapshotStore, clock domain.Clock) *ProgressService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ProgressService{
		builder:     builder,
		coordinator: coordinator,
		snapshots:   snapshots,
		clock:       clock,
	}
}

func (s *ProgressService) GetProgressSeries(ctx context.Context, session domain.Session, habitID string, tf domain.TimeFrame) (*domain.ProgressSeries, error) {
	view, err := s.View(ctx, session, habitID)
	if err != nil {
		return nil, err
	}

	series, ok := view.Series[tf]
	if !ok {
		return nil, domain.ErrInvalidTimeFrame
	}
	series.Stale = view.Stale
	return &series, nil
}

func (s *ProgressService) GetHeatmapGrid(ctx context.Context, session domain.Session, habitID string) (*domain.HeatmapGrid, error) {
	view, err := s.View(ctx, session, habitID)
	if err != nil {
		return nil, err
	}

	grid := view.Heatmap
	grid.Stale = view.Stale
	return &grid, nil
}

func (s *ProgressService) GetLifetimeStats(ctx context.Context, session domain.Session, habitID string) (*domain.LifetimeStats, error) {
	view, err := s.View(ctx, session, habitID)
	if err != nil {
		return nil, err
	}

	stats := view.Stats
	stats.Stale = view.Stale
	return &stats, nil
}

// GetSummary returns the lifetime stats of the user across all habits.
func (s *ProgressService) GetSummary(ctx context.Context, session domain.Session) (*domain.LifetimeStats, error) {
	return s.builder.BuildSummary(ctx, session.UserID, session.ReferenceOr(s.clock))
}

func (s *ProgressService) OnProgressUpdated(fn func(domain.ProgressUpdate)) func() {
	return s.coordinator.OnProgressUpdated(fn)
}

// Updates streams the published views of one user until ctx is done.
func (s *ProgressService) Updates(ctx context.Context, userID string, buffer int) <-chan domain.ProgressUpdate {
	all := s.coordinator.Updates(ctx, buffer)
	out := make(chan domain.ProgressUpdate, buffer)

	go func() {
		defer close(out)
		for u := range all {
			if u.UserID != userID {
				continue
			}
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// View returns the whole progress view of a habit for the session.
func (s *ProgressService) View(ctx context.Context, session domain.Session, habitID string) (*domain.HabitProgress, error) {
	reference := session.ReferenceOr(s.clock)
	day := progress.Day(reference)

	if !day.Equal(progress.Day(s.clock.Now())) {
		return s.builder.Build(ctx, session.UserID, habitID, reference)
	}

	live, hasLive := s.coordinator.View(session.UserID, habitID)
	if hasLive && live.ReferenceDate.Equal(day) {
		return live, nil
	}

	if !hasLive && s.snapshots != nil {
		snap, err := s.snapshots.Load(ctx, session.UserID, habitID)
		switch {
		case err == nil && snap.ReferenceDate.Equal(day):
			s.coordinator.Prime(snap)
			return snap, nil
		case err != nil && !errors.Is(err, domain.ErrSnapshotMiss):
			log.WithError(err).WithField("habit_id", habitID).Warn("[PROGRESS] snapshot read failed")
		}
	}

	view, err := s.builder.Load(ctx, session.UserID, habitID)
	if err != nil {
		if hasLive && errors.Is(err, domain.ErrDataFetch) {
			return live.WithStale(true), nil
		}
		return nil, err
	}

	if hasLive {
		// yesterday's view: let the coordinator publish the new day
		s.coordinator.Notify(session.UserID, habitID)
	} else {
		s.coordinator.Prime(view)
	}

	return view, nil
}
