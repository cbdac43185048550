package progress

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

type DayKey struct {
	HabitID string
	Day     time.Time
}

// LedgerEntry is the canonical record of one habit on one UTC day. Goal is
// expressed per day: a weekly target of 7 contributes 1 to each day.
type LedgerEntry struct {
	HabitID string    `json:"habit_id"`
	Day     time.Time `json:"day"`
	Count   int       `json:"count"`
	Goal    float64   `json:"goal"`
}

type Ledger map[DayKey]LedgerEntry

type NormalizeReport struct {
	Events  int `json:"events"`
	Skipped int `json:"skipped"`
}

func (l Ledger) Get(habitID string, day time.Time) (LedgerEntry, bool) {
	e, ok := l[DayKey{HabitID: habitID, Day: Day(day)}]
	return e, ok
}

// Entries returns the entries of one habit in ascending day order.
func (l Ledger) Entries(habitID string) []LedgerEntry {
	var out []LedgerEntry
	for k, e := range l {
		if k.HabitID == habitID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// FirstDay returns the earliest day recorded for a habit.
func (l Ledger) FirstDay(habitID string) (time.Time, bool) {
	var first time.Time
	found := false
	for k := range l {
		if k.HabitID != habitID {
			continue
		}
		if !found || k.Day.Before(first) {
			first = k.Day
			found = true
		}
	}
	return first, found
}

// Normalize folds events into one ledger entry per (habit, UTC day).
// Counts are summed; the goal comes from the chronologically last event of
// the day. Malformed events are skipped and counted, soft-deleted ones are
// ignored.
func Normalize(events []*domain.TrackingEvent) (Ledger, NormalizeReport) {
	ledger := make(Ledger)
	latest := make(map[DayKey]*domain.TrackingEvent)
	report := NormalizeReport{}

	for _, e := range events {
		if e == nil {
			continue
		}
		if e.DeletedAt != nil {
			continue
		}
		if err := e.Validate(); err != nil {
			report.Skipped++
			continue
		}
		report.Events++

		key := DayKey{HabitID: e.HabitID, Day: Day(e.OccurredAt)}
		entry := ledger[key]
		entry.HabitID = key.HabitID
		entry.Day = key.Day
		entry.Count += e.Count

		if prev, ok := latest[key]; !ok || isLater(e, prev) {
			latest[key] = e
			entry.Goal = float64(e.Goal) / float64(domain.PeriodDays(e.FrequencyPeriod))
		}

		ledger[key] = entry
	}

	return ledger, report
}

func isLater(a, b *domain.TrackingEvent) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.After(b.OccurredAt)
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}
