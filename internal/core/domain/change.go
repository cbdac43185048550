package domain

import (
	"context"
	"time"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// TrackingChange is a notification that a tracking event of a habit was
// inserted, updated or deleted.
type TrackingChange struct {
	Type    ChangeType `json:"type"`
	UserID  string     `json:"user_id"`
	HabitID string     `json:"habit_id"`
	EventID string     `json:"event_id,omitempty"`
	At      time.Time  `json:"at"`
}

type ChangePublisher interface {
	Publish(ctx context.Context, change TrackingChange) error
}

// ChangeFeed delivers tracking changes until ctx is cancelled, at which point
// the underlying connection is released and the channel is closed.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan TrackingChange, error)
}
