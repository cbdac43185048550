package domain

import "time"

// Session carries the caller identity and the reference date of a request
// through every progress operation.
type Session struct {
	UserID    string
	Reference time.Time
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ReferenceOr returns the session reference date, or clock.Now() when unset.
func (s Session) ReferenceOr(clock Clock) time.Time {
	if s.Reference.IsZero() {
		return clock.Now().UTC()
	}
	return s.Reference.UTC()
}
