package domain

import (
	"context"
	"errors"
)

var ErrSnapshotMiss = errors.New("progress snapshot not found")

// SnapshotStore keeps the last good progress view of each habit so that a
// restarted process can serve it before the first recomputation.
type SnapshotStore interface {
	Save(ctx context.Context, view *HabitProgress) error

	// Load returns ErrSnapshotMiss when nothing is stored for the habit.
	Load(ctx context.Context, userID, habitID string) (*HabitProgress, error)
}
