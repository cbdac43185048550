package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidTarget      = errors.New("target must be at least 1")
	ErrInvalidPeriod      = errors.New("invalid frequency period (must be daily, weekly or biweekly)")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	PeriodDaily    = "daily"
	PeriodWeekly   = "weekly"
	PeriodBiweekly = "biweekly"
	DefaultIcon    = "default_icon"
	MaxTitleLen    = 100
)

type Habit struct {
	ID              string     `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	Title           string     `json:"title" db:"title"`
	Color           string     `json:"color" db:"color"`
	Icon            string     `json:"icon" db:"icon"`
	SortOrder       int        `json:"sort_order" db:"sort_order"`
	TargetValue     int        `json:"target_value" db:"target_value"`
	FrequencyPeriod string     `json:"frequency_period" db:"frequency_period"`
	Version         int        `json:"version" db:"version"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	ArchivedAt      *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// PeriodDays returns the length in days of a frequency period. Unknown
// periods count as daily.
func PeriodDays(period string) int {
	switch period {
	case PeriodWeekly:
		return 7
	case PeriodBiweekly:
		return 14
	default:
		return 1
	}
}

// DailyGoal spreads the habit target evenly over the days of its period.
func (h *Habit) DailyGoal() float64 {
	if h.TargetValue <= 0 {
		return 0
	}
	return float64(h.TargetValue) / float64(PeriodDays(h.FrequencyPeriod))
}

func validateAndNormalize(title, color, period string, target int) (string, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return "", ErrHabitTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return "", ErrHabitTitleTooLong
	}

	if target < 1 {
		return "", ErrInvalidTarget
	}

	if color != "" && !colorRegex.MatchString(color) {
		return "", ErrInvalidColor
	}

	switch period {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodBiweekly:
		return period, nil
	default:
		return "", ErrInvalidPeriod
	}
}

func NewHabit(userID, title, color, icon, period string, target int) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	safePeriod, err := validateAndNormalize(title, color, period, target)
	if err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:              uuid.New().String(),
		UserID:          userID,
		Title:           strings.TrimSpace(title),
		Color:           color,
		Icon:            icon,
		TargetValue:     target,
		FrequencyPeriod: safePeriod,
		SortOrder:       0,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (h *Habit) Update(title, color, icon, period string, target int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	safePeriod, err := validateAndNormalize(title, color, period, target)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	h.Title = strings.TrimSpace(title)
	h.Color = color
	h.Icon = icon
	h.TargetValue = target
	h.FrequencyPeriod = safePeriod

	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
