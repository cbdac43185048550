package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// Input is everything needed to rebuild the progress view of one habit.
// Events may contain other habits; they are ignored.
type Input struct {
	UserID    string
	Habit     *domain.Habit
	Events    []*domain.TrackingEvent
	Reference time.Time
	Now       time.Time
}

// Origin is the first day of a habit's history: its creation day, or an
// earlier tracked day when events predate it.
func Origin(habit *domain.Habit, ledger Ledger) time.Time {
	origin := time.Time{}
	if !habit.CreatedAt.IsZero() {
		origin = Day(habit.CreatedAt)
	}
	if first, ok := ledger.FirstDay(habit.ID); ok {
		if origin.IsZero() {
			origin = first
		} else {
			origin = minTime(origin, first)
		}
	}
	return origin
}

// LifetimeBuckets covers the whole history of a habit in buckets as long as
// its frequency period, which is the unit streaks are counted in.
func LifetimeBuckets(habit *domain.Habit, ledger Ledger, reference time.Time) []domain.Bucket {
	r := Resolve(domain.TimeFrameAll, reference, Origin(habit, ledger))
	switch habit.FrequencyPeriod {
	case domain.PeriodWeekly:
		r.Granularity = domain.GranularityWeek
	case domain.PeriodBiweekly:
		r.Granularity = domain.GranularityBiweek
	default:
		r.Granularity = domain.GranularityDay
	}
	return Aggregate(ledger, habit.ID, habit.DailyGoal(), r)
}

// Series builds the progress series of one habit for one time frame.
func Series(habit *domain.Habit, ledger Ledger, tf domain.TimeFrame, reference, now time.Time) domain.ProgressSeries {
	r := Resolve(tf, reference, Origin(habit, ledger))
	buckets := Aggregate(ledger, habit.ID, habit.DailyGoal(), r)

	return domain.ProgressSeries{
		HabitID:         habit.ID,
		HabitTitle:      habit.Title,
		TargetValue:     habit.TargetValue,
		FrequencyPeriod: habit.FrequencyPeriod,
		TimeFrame:       tf,
		Granularity:     r.Granularity,
		StartDate:       r.Start,
		EndDate:         r.End,
		Buckets:         buckets,
		Ratios:          Ratios(buckets),
		Baseline:        Baseline(buckets),
		Cumulative:      Cumulative(buckets),
		ReferenceDate:   Day(reference),
		ComputedAt:      now,
	}
}

// Build runs the whole pipeline for one habit: normalize, bucket every time
// frame, compute lifetime stats on the all-time buckets and lay out the
// heatmap.
func Build(in Input) *domain.HabitProgress {
	ledger, report := Normalize(in.Events)
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	view := &domain.HabitProgress{
		UserID:        in.UserID,
		HabitID:       in.Habit.ID,
		Series:        make(map[domain.TimeFrame]domain.ProgressSeries, len(domain.TimeFrames)),
		SkippedEvents: report.Skipped,
		ReferenceDate: Day(in.Reference),
		ComputedAt:    now,
	}

	for _, tf := range domain.TimeFrames {
		view.Series[tf] = Series(in.Habit, ledger, tf, in.Reference, now)
	}

	view.Stats = ComputeStats(in.Habit.ID, LifetimeBuckets(in.Habit, ledger, in.Reference), ledger, in.Reference)
	if origin := Origin(in.Habit, ledger); !origin.IsZero() {
		view.Stats.JoinDate = &origin
	}

	view.Heatmap = BuildGrid(ledger, in.Habit.ID, in.Reference)

	return view
}

// BuildSummary computes the user-level lifetime stats across habits from a
// single event snapshot.
func BuildSummary(habits []*domain.Habit, events []*domain.TrackingEvent, reference time.Time) domain.LifetimeStats {
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}

	owned := make([]*domain.TrackingEvent, 0, len(events))
	for _, e := range events {
		if e != nil && known[e.HabitID] {
			owned = append(owned, e)
		}
	}
	ledger, _ := Normalize(owned)

	perHabit := make([]domain.LifetimeStats, 0, len(habits))
	join := time.Time{}
	for _, h := range habits {
		origin := Origin(h, ledger)
		if !origin.IsZero() && (join.IsZero() || origin.Before(join)) {
			join = origin
		}

		perHabit = append(perHabit, ComputeStats(h.ID, LifetimeBuckets(h, ledger, reference), ledger, reference))
	}

	return Summarize(perHabit, ledger, join)
}
