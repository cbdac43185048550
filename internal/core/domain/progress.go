package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidTimeFrame = errors.New("invalid time frame (must be 1w, 1m, YTD, 1y or All)")

type TimeFrame string

const (
	TimeFrameWeek  TimeFrame = "1w"
	TimeFrameMonth TimeFrame = "1m"
	TimeFrameYTD   TimeFrame = "YTD"
	TimeFrameYear  TimeFrame = "1y"
	TimeFrameAll   TimeFrame = "All"
)

// TimeFrames lists every frame in the order the progress screens show them.
var TimeFrames = []TimeFrame{TimeFrameWeek, TimeFrameMonth, TimeFrameYTD, TimeFrameYear, TimeFrameAll}

func ParseTimeFrame(s string) (TimeFrame, error) {
	for _, tf := range TimeFrames {
		if strings.EqualFold(string(tf), strings.TrimSpace(s)) {
			return tf, nil
		}
	}
	return "", ErrInvalidTimeFrame
}

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"

	// GranularityBiweek only backs lifetime stats of bi-weekly habits.
	GranularityBiweek Granularity = "biweek"
)

// DateRange is a [Start, End) span of UTC days.
type DateRange struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Granularity Granularity `json:"granularity"`
}

func (r DateRange) Days() int {
	if !r.End.After(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}

type Bucket struct {
	Index    int       `json:"index"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Achieved int       `json:"achieved"`
	Goal     float64   `json:"goal"`
	Ratio    float64   `json:"ratio"`
}

// Met reports whether the bucket carried an obligation and fulfilled it.
func (b Bucket) Met() bool {
	return b.Goal > 0 && float64(b.Achieved) >= b.Goal
}

type ProgressSeries struct {
	HabitID         string      `json:"habit_id"`
	HabitTitle      string      `json:"habit_title"`
	TargetValue     int         `json:"target_value"`
	FrequencyPeriod string      `json:"frequency_period"`
	TimeFrame       TimeFrame   `json:"time_frame"`
	Granularity     Granularity `json:"granularity"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	Buckets         []Bucket    `json:"buckets"`
	Ratios          []float64   `json:"ratios"`
	Baseline        []float64   `json:"baseline"`
	Cumulative      []int       `json:"cumulative"`
	ReferenceDate   time.Time   `json:"reference_date"`
	ComputedAt      time.Time   `json:"computed_at"`
	Stale           bool        `json:"stale,omitempty"`
}

type HeatmapCell struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

const (
	HeatmapWeeks = 5
	HeatmapDays  = 7
)

// HeatmapGrid is a week-major calendar: Weeks[0] is the oldest week and
// Weeks[i][0] is its Sunday. Future cells are nil.
type HeatmapGrid struct {
	HabitID       string                                  `json:"habit_id"`
	WindowStart   time.Time                               `json:"window_start"`
	ReferenceDate time.Time                               `json:"reference_date"`
	Weeks         [HeatmapWeeks][HeatmapDays]*HeatmapCell `json:"weeks"`
	Stale         bool                                    `json:"stale,omitempty"`
}

// Cells returns the populated cells in chronological order.
func (g *HeatmapGrid) Cells() []HeatmapCell {
	var cells []HeatmapCell
	for _, week := range g.Weeks {
		for _, c := range week {
			if c != nil {
				cells = append(cells, *c)
			}
		}
	}
	return cells
}

type LifetimeStats struct {
	HabitID               string     `json:"habit_id,omitempty"`
	TotalDaysTracked      int        `json:"total_days_tracked"`
	TotalAchieved         int        `json:"total_achieved"`
	TotalGoal             float64    `json:"total_goal"`
	CompletionRate        float64    `json:"completion_rate"`
	LongestStreak         int        `json:"longest_streak"`
	CurrentStreak         int        `json:"current_streak"`
	MostConsistentHabitID string     `json:"most_consistent_habit_id,omitempty"`
	JoinDate              *time.Time `json:"join_date,omitempty"`
	Stale                 bool       `json:"stale,omitempty"`
}

// HabitProgress is the whole published view of one habit. It is replaced,
// never patched.
type HabitProgress struct {
	UserID        string                       `json:"user_id"`
	HabitID       string                       `json:"habit_id"`
	Series        map[TimeFrame]ProgressSeries `json:"series"`
	Heatmap       HeatmapGrid                  `json:"heatmap"`
	Stats         LifetimeStats                `json:"stats"`
	SkippedEvents int                          `json:"skipped_events"`
	ReferenceDate time.Time                    `json:"reference_date"`
	ComputedAt    time.Time                    `json:"computed_at"`
	Stale         bool                         `json:"stale"`
}

// WithStale returns a copy of the view carrying the given staleness flag.
func (p *HabitProgress) WithStale(stale bool) *HabitProgress {
	clone := *p
	clone.Stale = stale
	return &clone
}

type ProgressUpdate struct {
	UserID   string         `json:"user_id"`
	HabitID  string         `json:"habit_id"`
	Progress *HabitProgress `json:"progress"`
}
