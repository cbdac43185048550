package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	metStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	// darkest to brightest
	heatLevels = []lipgloss.Color{"#2D333B", "#0E4429", "#006D32", "#26A641", "#39D353"}
)

const barWidth = 20

func bar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*barWidth + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func bucketLabel(b domain.Bucket, g domain.Granularity) string {
	switch g {
	case domain.GranularityMonth:
		return b.Start.Format("Jan 2006")
	case domain.GranularityWeek:
		return "wk " + b.Start.Format("01-02")
	default:
		return b.Start.Format("Mon 01-02")
	}
}

func renderSeries(s domain.ProgressSeries) string {
	var rows []string
	rows = append(rows, titleStyle.Render(fmt.Sprintf("%s  %s", s.HabitTitle, s.TimeFrame)))
	rows = append(rows, labelStyle.Render(fmt.Sprintf("%d per %s, %s to %s",
		s.TargetValue, s.FrequencyPeriod,
		s.StartDate.Format("2006-01-02"), s.EndDate.AddDate(0, 0, -1).Format("2006-01-02"))))

	for _, b := range s.Buckets {
		style := missStyle
		if b.Met() {
			style = metStyle
		}
		rows = append(rows, fmt.Sprintf("%-10s %s %4d / %-6.1f",
			bucketLabel(b, s.Granularity), style.Render(bar(b.Ratio)), b.Achieved, b.Goal))
	}

	if len(s.Cumulative) > 0 {
		rows = append(rows, labelStyle.Render(fmt.Sprintf("total %d", s.Cumulative[len(s.Cumulative)-1])))
	}
	if s.Stale {
		rows = append(rows, missStyle.Render("stale"))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// heatLevel maps a count onto one of the heat colors, scaled to the busiest day.
func heatLevel(count, max int) int {
	if count <= 0 || max <= 0 {
		return 0
	}
	level := 1 + count*(len(heatLevels)-2)/max
	if level >= len(heatLevels) {
		level = len(heatLevels) - 1
	}
	return level
}

func renderHeatmap(g domain.HeatmapGrid) string {
	max := 0
	for _, c := range g.Cells() {
		if c.Count > max {
			max = c.Count
		}
	}

	header := labelStyle.Render("S M T W T F S")
	lines := []string{header}
	for _, week := range g.Weeks {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			if c == nil {
				cells = append(cells, " ")
				continue
			}
			cells = append(cells, lipgloss.NewStyle().Foreground(heatLevels[heatLevel(c.Count, max)]).Render("■"))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	title := titleStyle.Render(fmt.Sprintf("%s to %s",
		g.WindowStart.Format("2006-01-02"), g.ReferenceDate.Format("2006-01-02")))
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

func renderStats(title string, s domain.LifetimeStats) string {
	rows := [][2]string{
		{"days tracked", fmt.Sprintf("%d", s.TotalDaysTracked)},
		{"achieved", fmt.Sprintf("%d / %.1f", s.TotalAchieved, s.TotalGoal)},
		{"completion", fmt.Sprintf("%.0f%%", s.CompletionRate*100)},
		{"current streak", fmt.Sprintf("%d", s.CurrentStreak)},
		{"longest streak", fmt.Sprintf("%d", s.LongestStreak)},
	}
	if s.MostConsistentHabitID != "" {
		rows = append(rows, [2]string{"most consistent", s.MostConsistentHabitID})
	}
	if s.JoinDate != nil {
		rows = append(rows, [2]string{"joined", s.JoinDate.Format("2006-01-02")})
	}

	labels := make([]string, len(rows))
	values := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = labelStyle.Render(r[0])
		values[i] = r[1]
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, labels...),
		"  ",
		lipgloss.JoinVertical(lipgloss.Left, values...),
	)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), body))
}
