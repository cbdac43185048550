package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with defaults AND Sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Drink Water", "", "", "", 3)

		require.NoError(t, err)
		assert.Equal(t, "Drink Water", h.Title)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)

		assert.Equal(t, domain.PeriodDaily, h.FrequencyPeriod)
		assert.Equal(t, 3, h.TargetValue)
		assert.Equal(t, domain.DefaultIcon, h.Icon)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt)

		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Error: Empty Title", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "   ", "", "", "", 1)
		assert.Equal(t, domain.ErrHabitTitleEmpty, err)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit("", "Title", "", "", "", 1)
		assert.Equal(t, domain.ErrHabitInvalidUserID, err)
	})
}

func TestHabit_Validation(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		color      string
		period     string
		target     int
		wantErr    error
		wantPeriod string
	}{
		{name: "Success: Weekly", title: "Gym", period: domain.PeriodWeekly, target: 3, wantPeriod: domain.PeriodWeekly},
		{name: "Success: Biweekly with color", title: "Call mom", color: "#AABBCC", period: domain.PeriodBiweekly, target: 1, wantPeriod: domain.PeriodBiweekly},
		{name: "Success: Short color", title: "Read", color: "#abc", target: 1, wantPeriod: domain.PeriodDaily},
		{name: "Error: Unknown period", title: "Read", period: "monthly", target: 1, wantErr: domain.ErrInvalidPeriod},
		{name: "Error: Zero target", title: "Read", target: 0, wantErr: domain.ErrInvalidTarget},
		{name: "Error: Bad color", title: "Read", color: "red", target: 1, wantErr: domain.ErrInvalidColor},
		{name: "Error: Title too long", title: strings.Repeat("a", domain.MaxTitleLen+1), target: 1, wantErr: domain.ErrHabitTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := domain.NewHabit("u1", tt.title, tt.color, "", tt.period, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPeriod, h.FrequencyPeriod)
		})
	}
}

func TestHabit_DailyGoal(t *testing.T) {
	assert.Equal(t, 3.0, (&domain.Habit{TargetValue: 3, FrequencyPeriod: domain.PeriodDaily}).DailyGoal())
	assert.InDelta(t, 1.0, (&domain.Habit{TargetValue: 7, FrequencyPeriod: domain.PeriodWeekly}).DailyGoal(), 1e-9)
	assert.InDelta(t, 0.5, (&domain.Habit{TargetValue: 7, FrequencyPeriod: domain.PeriodBiweekly}).DailyGoal(), 1e-9)
	assert.Equal(t, 0.0, (&domain.Habit{TargetValue: 0}).DailyGoal())
}

func TestHabit_Lifecycle(t *testing.T) {
	h, err := domain.NewHabit("u1", "Meditate", "", "", "", 1)
	require.NoError(t, err)

	t.Run("Update changes goal fields", func(t *testing.T) {
		err := h.Update("Meditate longer", "#000000", "zen", domain.PeriodWeekly, 5)
		require.NoError(t, err)
		assert.Equal(t, "Meditate longer", h.Title)
		assert.Equal(t, 5, h.TargetValue)
		assert.Equal(t, domain.PeriodWeekly, h.FrequencyPeriod)
	})

	t.Run("Archived habit rejects updates and reordering", func(t *testing.T) {
		h.Archive()
		require.NotNil(t, h.ArchivedAt)

		assert.ErrorIs(t, h.Update("x", "", "", "", 1), domain.ErrHabitArchived)
		assert.ErrorIs(t, h.ChangePosition(3), domain.ErrHabitArchived)
	})

	t.Run("Restore makes it editable again", func(t *testing.T) {
		h.Restore()
		assert.Nil(t, h.ArchivedAt)
		assert.NoError(t, h.ChangePosition(3))
		assert.Equal(t, 3, h.SortOrder)
	})
}
