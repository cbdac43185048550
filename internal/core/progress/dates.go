// Package progress turns tracking events into bucketed progress series,
// baselines, streaks and heatmaps. Every function here is pure: same input,
// same output, no I/O. Calendar days are UTC days.
package progress

import "time"

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Sunday starting the week that contains t.
func StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// HeatmapWindowStart is the first day of the five-week window ending with
// the week that contains reference.
func HeatmapWindowStart(reference time.Time) time.Time {
	return StartOfWeek(reference).AddDate(0, 0, -28)
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
