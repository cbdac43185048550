package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

func TestInMemoryHabitRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryHabitRepository()

	h, _ := domain.NewHabit("u1", "Drink Water", "", "", domain.PeriodDaily, 3)
	require.NoError(t, repo.Create(ctx, h))
	assert.ErrorIs(t, repo.Create(ctx, h), domain.ErrHabitConflict)

	t.Run("Returned habits are copies", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		fetched.Title = "mutated"

		again, _ := repo.GetByID(ctx, h.ID)
		assert.Equal(t, "Drink Water", again.Title)
	})

	t.Run("Update bumps the version and rejects stale writes", func(t *testing.T) {
		a, _ := repo.GetByID(ctx, h.ID)
		b, _ := repo.GetByID(ctx, h.ID)

		require.NoError(t, repo.Update(ctx, a))
		assert.Equal(t, 2, a.Version)
		assert.ErrorIs(t, repo.Update(ctx, b), domain.ErrHabitConflict)
	})

	t.Run("Soft delete hides the habit", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, h.ID))
		_, err := repo.GetByID(ctx, h.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		list, _ := repo.ListByUserID(ctx, "u1")
		assert.Empty(t, list)
		assert.ErrorIs(t, repo.Delete(ctx, h.ID), domain.ErrHabitNotFound)
	})
}

func TestInMemoryTrackingEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryTrackingEventRepository()
	habit := &domain.Habit{ID: "h1", UserID: "u1", TargetValue: 3, FrequencyPeriod: domain.PeriodDaily}
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	e1 := domain.NewTrackingEvent(habit, day, 1)
	e2 := domain.NewTrackingEvent(habit, day.AddDate(0, 0, 2), 2)
	require.NoError(t, repo.Create(ctx, e1))
	require.NoError(t, repo.Create(ctx, e2))

	t.Run("ListByUser filters by range", func(t *testing.T) {
		list, err := repo.ListByUser(ctx, "u1", "h1", day, day.AddDate(0, 0, 2))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, e1.ID, list[0].ID)

		all, _ := repo.ListByUser(ctx, "u1", "", time.Time{}, time.Time{})
		assert.Len(t, all, 2)
		assert.True(t, all[0].OccurredAt.Before(all[1].OccurredAt))
	})

	t.Run("Update requires the previous version", func(t *testing.T) {
		fetched, _ := repo.GetByID(ctx, e1.ID)
		fetched.Count = 4
		assert.ErrorIs(t, repo.Update(ctx, fetched), domain.ErrEventConflict)

		fetched.Version++
		require.NoError(t, repo.Update(ctx, fetched))
		stored, _ := repo.GetByID(ctx, e1.ID)
		assert.Equal(t, 4, stored.Count)
	})

	t.Run("Delete checks the owner", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, e2.ID, "u2"), domain.ErrEventNotFound)
		require.NoError(t, repo.Delete(ctx, e2.ID, "u1"))

		_, err := repo.GetByID(ctx, e2.ID)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)

		changes, _ := repo.GetChanges(ctx, "u1", time.Time{})
		assert.Len(t, changes, 2, "soft-deleted events still sync")
	})
}
