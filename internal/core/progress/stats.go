package progress

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// Baseline is the cumulative goal: where the habit would stand after each
// bucket had no bucket ever been missed.
func Baseline(buckets []domain.Bucket) []float64 {
	out := make([]float64, len(buckets))
	sum := 0.0
	for i, b := range buckets {
		sum += b.Goal
		out[i] = roundGoal(sum)
	}
	return out
}

// Cumulative is the running total of achieved counts, plotted against
// Baseline.
func Cumulative(buckets []domain.Bucket) []int {
	out := make([]int, len(buckets))
	sum := 0
	for i, b := range buckets {
		sum += b.Achieved
		out[i] = sum
	}
	return out
}

func Ratios(buckets []domain.Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Ratio
	}
	return out
}

// Streaks returns the current and the longest run of met buckets. Buckets
// without a goal neither extend nor break a run. A trailing unmet bucket
// that contains the reference day is still open and does not end the
// current streak.
func Streaks(buckets []domain.Bucket, reference time.Time) (int, int) {
	longest, run := 0, 0
	for _, b := range buckets {
		if b.Goal <= 0 {
			continue
		}
		if b.Met() {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	ref := Day(reference)
	current := 0
	open := true
	for i := len(buckets) - 1; i >= 0; i-- {
		b := buckets[i]
		if b.Goal <= 0 {
			continue
		}
		if b.Met() {
			current++
			open = false
			continue
		}
		if open && !ref.Before(b.Start) && ref.Before(b.End) {
			open = false
			continue
		}
		break
	}

	return current, longest
}

// ComputeStats derives the lifetime figures of one habit from its
// all-time buckets.
func ComputeStats(habitID string, buckets []domain.Bucket, ledger Ledger, reference time.Time) domain.LifetimeStats {
	stats := domain.LifetimeStats{HabitID: habitID}

	goal := 0.0
	for _, b := range buckets {
		stats.TotalAchieved += b.Achieved
		goal += b.Goal
	}
	stats.TotalGoal = roundGoal(goal)
	stats.CompletionRate = Ratio(stats.TotalAchieved, stats.TotalGoal)
	stats.CurrentStreak, stats.LongestStreak = Streaks(buckets, reference)

	for _, e := range ledger.Entries(habitID) {
		if e.Count > 0 {
			stats.TotalDaysTracked++
		}
	}

	return stats
}

// Summarize folds per-habit stats into the user-level view. Days tracked are
// distinct days across all habits. The most consistent habit is the one with
// the highest completion rate, ties going to the smallest habit id.
func Summarize(perHabit []domain.LifetimeStats, ledger Ledger, joinDate time.Time) domain.LifetimeStats {
	summary := domain.LifetimeStats{}

	goal := 0.0
	bestRate := -1.0
	sorted := append([]domain.LifetimeStats(nil), perHabit...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].HabitID < sorted[j].HabitID })

	for _, s := range sorted {
		summary.TotalAchieved += s.TotalAchieved
		goal += s.TotalGoal
		if s.LongestStreak > summary.LongestStreak {
			summary.LongestStreak = s.LongestStreak
		}
		if s.CurrentStreak > summary.CurrentStreak {
			summary.CurrentStreak = s.CurrentStreak
		}
		if s.TotalGoal > 0 && s.CompletionRate > bestRate {
			bestRate = s.CompletionRate
			summary.MostConsistentHabitID = s.HabitID
		}
	}
	summary.TotalGoal = roundGoal(goal)
	summary.CompletionRate = Ratio(summary.TotalAchieved, summary.TotalGoal)

	days := make(map[time.Time]struct{})
	for k, e := range ledger {
		if e.Count > 0 {
			days[k.Day] = struct{}{}
		}
	}
	summary.TotalDaysTracked = len(days)

	if !joinDate.IsZero() {
		join := Day(joinDate)
		summary.JoinDate = &join
	}

	return summary
}
