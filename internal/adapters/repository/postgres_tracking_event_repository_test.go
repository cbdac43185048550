package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

func TestPostgresTrackingEventRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	habits := NewPostgresHabitRepository(db)
	repo := NewPostgresTrackingEventRepository(db)
	ctx := context.Background()

	uid := "user-" + uuid.NewString()
	habit, err := domain.NewHabit(uid, "Drink Water", "", "", domain.PeriodDaily, 3)
	require.NoError(t, err)
	require.NoError(t, habits.Create(ctx, habit))

	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Full CRUD Lifecycle & Soft Delete", func(t *testing.T) {
		event := domain.NewTrackingEvent(habit, day, 2)
		require.NoError(t, repo.Create(ctx, event))

		fetched, err := repo.GetByID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.Count)
		assert.Equal(t, 3, fetched.Goal)
		assert.True(t, fetched.OccurredAt.Equal(day))
		assert.Equal(t, 1, fetched.Version)

		fetched.Count = 3
		fetched.Version++
		fetched.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(ctx, fetched))

		updated, _ := repo.GetByID(ctx, event.ID)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, 3, updated.Count)

		assert.ErrorIs(t, repo.Delete(ctx, event.ID, "someone-else"), domain.ErrEventNotFound)
		require.NoError(t, repo.Delete(ctx, event.ID, uid))

		_, err = repo.GetByID(ctx, event.ID)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("Optimistic Locking: Version Conflict", func(t *testing.T) {
		event := domain.NewTrackingEvent(habit, day, 1)
		require.NoError(t, repo.Create(ctx, event))

		clientA, _ := repo.GetByID(ctx, event.ID)
		clientB, _ := repo.GetByID(ctx, event.ID)

		clientA.Count = 5
		clientA.Version++
		require.NoError(t, repo.Update(ctx, clientA))

		clientB.Count = 9
		clientB.Version++
		assert.ErrorIs(t, repo.Update(ctx, clientB), domain.ErrEventConflict)
	})

	t.Run("Unknown habit is rejected", func(t *testing.T) {
		orphan := domain.NewTrackingEvent(&domain.Habit{ID: uuid.NewString(), UserID: uid, TargetValue: 1}, day, 1)
		assert.ErrorIs(t, repo.Create(ctx, orphan), domain.ErrHabitNotFound)
	})

	t.Run("ListByUser honours habit and half-open range", func(t *testing.T) {
		cleanupEvents := func() { db.MustExec("DELETE FROM tracking_events") }
		cleanupEvents()

		other, _ := domain.NewHabit(uid, "Read", "", "", domain.PeriodDaily, 1)
		require.NoError(t, habits.Create(ctx, other))

		for _, e := range []*domain.TrackingEvent{
			domain.NewTrackingEvent(habit, day, 1),
			domain.NewTrackingEvent(habit, day.AddDate(0, 0, 1), 1),
			domain.NewTrackingEvent(habit, day.AddDate(0, 0, 7), 1),
			domain.NewTrackingEvent(other, day, 1),
		} {
			require.NoError(t, repo.Create(ctx, e))
		}

		all, err := repo.ListByUser(ctx, uid, "", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Len(t, all, 4)

		week, err := repo.ListByUser(ctx, uid, habit.ID, day, day.AddDate(0, 0, 7))
		require.NoError(t, err)
		assert.Len(t, week, 2, "to is exclusive")

		none, err := repo.ListByUser(ctx, "stranger", "", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("GetChanges includes soft deletes", func(t *testing.T) {
		since := time.Now().UTC().Add(-time.Second)
		event := domain.NewTrackingEvent(habit, day, 1)
		require.NoError(t, repo.Create(ctx, event))
		require.NoError(t, repo.Delete(ctx, event.ID, uid))

		changes, err := repo.GetChanges(ctx, uid, since)
		require.NoError(t, err)

		found := false
		for _, c := range changes {
			if c.ID == event.ID {
				found = true
				assert.NotNil(t, c.DeletedAt)
			}
		}
		assert.True(t, found)
	})
}
