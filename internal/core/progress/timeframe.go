package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// Resolve maps a time frame and a reference date to a [Start, End) range of
// UTC days plus the granularity its buckets use. End is the day after the
// reference, so the reference day is always part of the range.
//
// When origin (the first day the habit existed) is set, Start never precedes
// it; a reference before origin yields an empty range instead of an error.
// Unknown frames resolve like 1w.
func Resolve(tf domain.TimeFrame, reference, origin time.Time) domain.DateRange {
	end := Day(reference).AddDate(0, 0, 1)

	var r domain.DateRange
	switch tf {
	case domain.TimeFrameMonth:
		r = domain.DateRange{Start: HeatmapWindowStart(reference), End: end, Granularity: domain.GranularityDay}
	case domain.TimeFrameYTD:
		ref := Day(reference)
		r = domain.DateRange{Start: time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), End: end, Granularity: domain.GranularityWeek}
	case domain.TimeFrameYear:
		r = domain.DateRange{Start: end.AddDate(0, 0, -365), End: end, Granularity: domain.GranularityMonth}
	case domain.TimeFrameAll:
		start := end
		if !origin.IsZero() {
			start = Day(origin)
		}
		r = domain.DateRange{Start: start, End: end, Granularity: domain.GranularityMonth}
	default:
		r = domain.DateRange{Start: end.AddDate(0, 0, -7), End: end, Granularity: domain.GranularityDay}
	}

	if !origin.IsZero() && r.Start.Before(Day(origin)) {
		r.Start = Day(origin)
	}
	if r.Start.After(r.End) {
		r.End = r.Start
	}

	return r
}
