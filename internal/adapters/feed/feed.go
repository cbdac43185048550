// Package feed carries tracking changes from the writers to the refresh
// coordinator. Three transports share one contract: an in-process broker,
// Redis pub/sub and Postgres LISTEN/NOTIFY.
package feed

import (
	"encoding/json"
	"fmt"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// Channel is the Redis channel and Postgres notification channel name.
const Channel = "tracking_changes"

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Feed publishes and delivers tracking changes.
type Feed interface {
	domain.ChangePublisher
	domain.ChangeFeed
}

func encode(change domain.TrackingChange) ([]byte, error) {
	data, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("encode change: %w", err)
	}
	return data, nil
}

func decode(payload string) (domain.TrackingChange, error) {
	var change domain.TrackingChange
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return change, fmt.Errorf("decode change: %w", err)
	}
	if change.UserID == "" || change.HabitID == "" {
		return change, fmt.Errorf("decode change: missing user or habit id")
	}
	return change, nil
}
