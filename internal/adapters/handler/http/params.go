package http

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseInstant accepts RFC3339 timestamps and plain YYYY-MM-DD dates, the
// latter read as UTC midnight. An empty string yields the zero time.
func parseInstant(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use RFC3339 or YYYY-MM-DD)", raw)
	}
	return t, nil
}
