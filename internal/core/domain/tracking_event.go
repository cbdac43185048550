package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMalformedEvent = errors.New("malformed tracking event")
)

// TrackingEvent is a single logged occurrence (or correction) of a habit,
// recorded against the period window it counts towards.
type TrackingEvent struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	OccurredAt      time.Time `json:"occurred_at" db:"occurred_at"`
	PeriodStart     time.Time `json:"period_start" db:"period_start"`
	PeriodEnd       time.Time `json:"period_end" db:"period_end"`
	Count           int       `json:"count" db:"count"`
	Goal            int       `json:"goal" db:"goal"`
	FrequencyPeriod string    `json:"frequency_period" db:"frequency_period"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// NewTrackingEvent snapshots the habit's goal and period at logging time and
// derives the period window containing occurredAt.
func NewTrackingEvent(habit *Habit, occurredAt time.Time, count int) *TrackingEvent {
	now := time.Now().UTC()
	occurred := occurredAt.UTC()
	start, end := PeriodWindow(habit.FrequencyPeriod, habit.CreatedAt, occurred)

	return &TrackingEvent{
		ID:              uuid.New().String(),
		HabitID:         habit.ID,
		UserID:          habit.UserID,
		OccurredAt:      occurred,
		PeriodStart:     start,
		PeriodEnd:       end,
		Count:           count,
		Goal:            habit.TargetValue,
		FrequencyPeriod: habit.FrequencyPeriod,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PeriodWindow returns the [start, end) window of the given period that
// contains t. Weekly and bi-weekly windows are anchored on the UTC day the
// habit was created.
func PeriodWindow(period string, anchor, t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	length := PeriodDays(period)
	if length == 1 || anchor.IsZero() {
		return day, day.AddDate(0, 0, length)
	}

	a := anchor.UTC()
	anchorDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(day.Sub(anchorDay).Hours() / 24)
	shift := offset % length
	if shift < 0 {
		shift += length
	}

	start := day.AddDate(0, 0, -shift)
	return start, start.AddDate(0, 0, length)
}

func (e *TrackingEvent) Validate() error {
	if strings.TrimSpace(e.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrMalformedEvent)
	}
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrMalformedEvent)
	}
	if e.Count < 0 {
		return fmt.Errorf("%w: count cannot be negative", ErrMalformedEvent)
	}
	if e.Goal < 0 {
		return fmt.Errorf("%w: goal cannot be negative", ErrMalformedEvent)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurred_at is required", ErrMalformedEvent)
	}
	return nil
}
