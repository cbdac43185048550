package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func event(habitID string, at time.Time, count, goal int) *domain.TrackingEvent {
	return &domain.TrackingEvent{
		ID:              at.Format(time.RFC3339Nano) + habitID,
		HabitID:         habitID,
		UserID:          "u1",
		OccurredAt:      at,
		Count:           count,
		Goal:            goal,
		FrequencyPeriod: domain.PeriodDaily,
	}
}

func drinkWater() *domain.Habit {
	return &domain.Habit{
		ID:              "water",
		UserID:          "u1",
		Title:           "Drink Water",
		TargetValue:     3,
		FrequencyPeriod: domain.PeriodDaily,
		CreatedAt:       date(2024, 1, 1),
	}
}

func drinkWaterEvents() []*domain.TrackingEvent {
	return []*domain.TrackingEvent{
		event("water", date(2024, 3, 1).Add(9*time.Hour), 3, 3),
		event("water", date(2024, 3, 2).Add(9*time.Hour), 1, 3),
	}
}
