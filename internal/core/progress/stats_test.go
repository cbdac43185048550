package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// series builds consecutive daily buckets from a pattern:
// 'm' met, 'x' missed, '-' no goal.
func series(start time.Time, pattern string) []domain.Bucket {
	buckets := make([]domain.Bucket, 0, len(pattern))
	for i, c := range pattern {
		b := domain.Bucket{Index: i, Start: start.AddDate(0, 0, i), End: start.AddDate(0, 0, i+1)}
		switch c {
		case 'm':
			b.Goal, b.Achieved = 1, 1
		case 'x':
			b.Goal, b.Achieved = 1, 0
		}
		b.Ratio = Ratio(b.Achieved, b.Goal)
		buckets = append(buckets, b)
	}
	return buckets
}

func TestBaselineAndCumulative(t *testing.T) {
	ledger, _ := Normalize(drinkWaterEvents())
	buckets := Aggregate(ledger, "water", 3, Resolve(domain.TimeFrameWeek, date(2024, 3, 7), time.Time{}))

	assert.Equal(t, []float64{3, 6, 9, 12, 15, 18, 21}, Baseline(buckets))
	assert.Equal(t, []int{3, 4, 4, 4, 4, 4, 4}, Cumulative(buckets))
	assert.Len(t, Ratios(buckets), len(buckets))
}

func TestStreaks(t *testing.T) {
	start := date(2024, 1, 1)
	later := date(2030, 1, 1)

	tests := []struct {
		name        string
		pattern     string
		reference   time.Time
		wantCurrent int
		wantLongest int
	}{
		{name: "Empty", pattern: "", reference: later},
		{name: "Drink Water week", pattern: "mxxxxxx", reference: later, wantCurrent: 0, wantLongest: 1},
		{name: "Perfect run", pattern: "mmmm", reference: later, wantCurrent: 4, wantLongest: 4},
		{name: "Longest streak in the past", pattern: "mmmxmm", reference: later, wantCurrent: 2, wantLongest: 3},
		{name: "No-goal buckets are transparent", pattern: "m-m--m", reference: later, wantCurrent: 3, wantLongest: 3},
		{name: "Only no-goal buckets", pattern: "---", reference: later},
		{name: "Open bucket on the reference day keeps the streak", pattern: "mmx", reference: start.AddDate(0, 0, 2).Add(10 * time.Hour), wantCurrent: 2, wantLongest: 2},
		{name: "Open bucket grace applies only once", pattern: "mxx", reference: start.AddDate(0, 0, 2), wantCurrent: 0, wantLongest: 1},
		{name: "Closed missed bucket breaks the streak", pattern: "mmx", reference: later, wantCurrent: 0, wantLongest: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := Streaks(series(start, tt.pattern), tt.reference)
			assert.Equal(t, tt.wantCurrent, current, "Current Streak mismatch")
			assert.Equal(t, tt.wantLongest, longest, "Longest Streak mismatch")
		})
	}
}

func TestStreaks_Monotonicity(t *testing.T) {
	start := date(2024, 1, 1)
	later := date(2030, 1, 1)

	base := series(start, "xmm")
	_, longest := Streaks(base, later)

	extended := series(start, "xmmm")
	current, longestAfterMet := Streaks(extended, later)
	assert.Equal(t, longest+1, longestAfterMet)
	assert.Equal(t, 3, current)

	broken := series(start, "xmmmx")
	current, longestAfterMiss := Streaks(broken, later)
	assert.Equal(t, 0, current)
	assert.Equal(t, longestAfterMet, longestAfterMiss, "a miss never lowers the recorded longest streak")
}

func TestComputeStats(t *testing.T) {
	ledger, _ := Normalize(drinkWaterEvents())
	ref := date(2024, 3, 7)
	buckets := Aggregate(ledger, "water", 3, Resolve(domain.TimeFrameWeek, ref, time.Time{}))

	stats := ComputeStats("water", buckets, ledger, ref)

	assert.Equal(t, "water", stats.HabitID)
	assert.Equal(t, 2, stats.TotalDaysTracked)
	assert.Equal(t, 4, stats.TotalAchieved)
	assert.Equal(t, 21.0, stats.TotalGoal)
	assert.InDelta(t, 4.0/21.0, stats.CompletionRate, 1e-9)
	assert.Equal(t, 1, stats.LongestStreak)
	assert.Equal(t, 0, stats.CurrentStreak)

	t.Run("Zero goal yields zero completion", func(t *testing.T) {
		empty := ComputeStats("none", series(date(2024, 1, 1), "---"), Ledger{}, ref)
		assert.Equal(t, 0.0, empty.CompletionRate)
	})
}

func TestSummarize(t *testing.T) {
	ledger, _ := Normalize([]*domain.TrackingEvent{
		event("a", date(2024, 1, 1), 1, 1),
		event("b", date(2024, 1, 1), 1, 1),
		event("b", date(2024, 1, 2), 1, 1),
		event("c", date(2024, 1, 3), 0, 1),
	})

	perHabit := []domain.LifetimeStats{
		{HabitID: "b", TotalAchieved: 8, TotalGoal: 10, CompletionRate: 0.8, LongestStreak: 4, CurrentStreak: 1},
		{HabitID: "a", TotalAchieved: 4, TotalGoal: 5, CompletionRate: 0.8, LongestStreak: 2, CurrentStreak: 2},
		{HabitID: "z", TotalAchieved: 0, TotalGoal: 0},
	}

	summary := Summarize(perHabit, ledger, date(2023, 12, 31).Add(5*time.Hour))

	assert.Equal(t, "a", summary.MostConsistentHabitID, "ties go to the smallest habit id")
	assert.Equal(t, 12, summary.TotalAchieved)
	assert.Equal(t, 15.0, summary.TotalGoal)
	assert.InDelta(t, 0.8, summary.CompletionRate, 1e-9)
	assert.Equal(t, 4, summary.LongestStreak)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.TotalDaysTracked, "distinct days with a positive count")
	if assert.NotNil(t, summary.JoinDate) {
		assert.Equal(t, date(2023, 12, 31), *summary.JoinDate)
	}
}
