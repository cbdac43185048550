package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrEventNotFound = errors.New("tracking event not found")
	ErrEventConflict = errors.New("tracking event version conflict")
	ErrUnauthorized  = errors.New("resource belongs to another user")
	ErrDataFetch     = errors.New("failed to fetch tracking data")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	// Implementations must reject stale versions with ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit.
	Delete(ctx context.Context, id string) error
}

type TrackingEventRepository interface {
	Create(ctx context.Context, event *TrackingEvent) error

	// Update modifies an existing event.
	// Implementations must handle Optimistic Locking (version check) to prevent data races.
	Update(ctx context.Context, event *TrackingEvent) error

	// Delete performs a Soft Delete on the event.
	// It requires userID to ensure the user actually owns the event being deleted.
	Delete(ctx context.Context, id string, userID string) error

	// GetByID retrieves a single active (non-deleted) event by its ID.
	GetByID(ctx context.Context, id string) (*TrackingEvent, error)

	// ListByUser retrieves active events of a user whose occurrence falls in
	// [from, to). An empty habitID means every habit of the user.
	ListByUser(ctx context.Context, userID, habitID string, from, to time.Time) ([]*TrackingEvent, error)

	// GetChanges returns all changes (creations, updates, soft-deletes)
	// that occurred after the 'since' timestamp.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*TrackingEvent, error)
}
