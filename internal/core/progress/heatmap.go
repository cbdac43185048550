package progress

import (
	"time"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

// BuildGrid lays out the five Sunday-based weeks ending with the week of
// reference. Days after reference stay nil; days without a ledger entry are
// tracked zeros.
func BuildGrid(ledger Ledger, habitID string, reference time.Time) domain.HeatmapGrid {
	ref := Day(reference)
	start := HeatmapWindowStart(reference)

	grid := domain.HeatmapGrid{
		HabitID:       habitID,
		WindowStart:   start,
		ReferenceDate: ref,
	}

	for w := 0; w < domain.HeatmapWeeks; w++ {
		for d := 0; d < domain.HeatmapDays; d++ {
			day := start.AddDate(0, 0, w*domain.HeatmapDays+d)
			if day.After(ref) {
				continue
			}

			count := 0
			if e, ok := ledger.Get(habitID, day); ok {
				count = e.Count
			}
			grid.Weeks[w][d] = &domain.HeatmapCell{Date: day, Count: count}
		}
	}

	return grid
}
