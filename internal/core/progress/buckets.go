package progress

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// Partition splits r into contiguous empty buckets. Week buckets start on
// the weekday of r.Start; month buckets are calendar months. The last
// bucket is clipped to r.End.
func Partition(r domain.DateRange) []domain.Bucket {
	var buckets []domain.Bucket

	for start := r.Start; start.Before(r.End); {
		var next time.Time
		switch r.Granularity {
		case domain.GranularityWeek:
			next = start.AddDate(0, 0, 7)
		case domain.GranularityBiweek:
			next = start.AddDate(0, 0, 14)
		case domain.GranularityMonth:
			next = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		default:
			next = start.AddDate(0, 0, 1)
		}
		if next.After(r.End) {
			next = r.End
		}

		buckets = append(buckets, domain.Bucket{Index: len(buckets), Start: start, End: next})
		start = next
	}

	return buckets
}

// Aggregate fills the buckets of r from the ledger of one habit. Each day
// contributes its own goal, so goal changes over time are honoured; days
// missing from the ledger count as misses against dailyGoal.
func Aggregate(ledger Ledger, habitID string, dailyGoal float64, r domain.DateRange) []domain.Bucket {
	buckets := Partition(r)

	for i := range buckets {
		b := &buckets[i]
		goal := 0.0
		for day := b.Start; day.Before(b.End); day = day.AddDate(0, 0, 1) {
			if e, ok := ledger.Get(habitID, day); ok {
				b.Achieved += e.Count
				goal += e.Goal
			} else {
				goal += dailyGoal
			}
		}
		b.Goal = roundGoal(goal)
		b.Ratio = Ratio(b.Achieved, b.Goal)
	}

	return buckets
}

// Ratio is achieved/goal, or 0 when there is no goal.
func Ratio(achieved int, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return float64(achieved) / goal
}

// roundGoal drops the float noise left by summing fractional daily goals,
// so seven days of 3/7 add up to exactly 3.
func roundGoal(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
