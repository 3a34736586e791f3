package quota

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/coffeeviz-cli/internal/application"
	"github.com/bnema/coffeeviz-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Now time.Time
}

func renderView(view application.QuotaView, opts RenderOptions, s styles) string {
	quotas := view.Board.Sorted()

	header := fmt.Sprintf("quotas: %d", len(quotas))
	if !view.Board.CapturedAt.IsZero() {
		header += fmt.Sprintf(" · captured %s", formatCaptured(view.Board.CapturedAt, opts.Now))
	}
	if view.Stale {
		header += " " + s.warning.Render("[stale]")
	}

	lines := []string{
		s.title.Render("CoffeeViz Quotas"),
		s.header.Render(header),
	}

	if len(quotas) == 0 {
		lines = append(lines, s.empty.Render("No quotas reported."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	width := labelWidth(quotas)
	rows := make([]string, 0, len(quotas))
	for _, quota := range quotas {
		rows = append(rows, quotaLine(quota, width, opts, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func quotaLine(quota domain.Quota, width int, opts RenderOptions, s styles) string {
	label := s.quotaKey.Render(fmt.Sprintf("%-*s", width+1, quotaLabel(quota.Type)+":"))

	if quota.Unlimited() {
		return lipgloss.JoinHorizontal(
			lipgloss.Top,
			label,
			" ",
			s.unlimited.Render("unlimited"),
			" ",
			s.quotaMeta.Render(fmt.Sprintf("(%d used)", quota.Used)),
		)
	}

	leftPercent := 100 - clampPercent(float64(quota.UsedPercent()))
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(leftPercent, 0, 100))

	parts := []string{
		label,
		" ",
		renderProgressBar(float64(quota.UsedPercent()), barWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%3.0f%% left", leftPercent)),
		" ",
		s.quotaMeta.Render(fmt.Sprintf("(%d/%d)", quota.Used, quota.Limit)),
	}
	if reset := formatReset(quota, opts.Now); reset != "" {
		parts = append(parts, " ", s.quotaMeta.Render(reset))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func quotaLabel(quotaType string) string {
	return strings.ReplaceAll(quotaType, "_", " ")
}

func labelWidth(quotas []domain.Quota) int {
	width := 0
	for _, quota := range quotas {
		if n := len(quotaLabel(quota.Type)); n > width {
			width = n
		}
	}
	return width
}

func renderProgressBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	used := clampPercent(usedPercent)
	leftFraction := (100.0 - used) / 100.0
	filled := int(math.Round(float64(width) * leftFraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatReset(quota domain.Quota, now time.Time) string {
	if quota.ResetCycle == domain.ResetNever {
		return "(never resets)"
	}

	next := quota.NextResetAt()
	if next.IsZero() {
		if quota.ResetCycle == "" {
			return ""
		}
		return fmt.Sprintf("(resets %s)", quota.ResetCycle)
	}

	return "(" + formatResetRelative(next, now) + ")"
}

func formatResetRelative(resetsAt, now time.Time) string {
	if now.IsZero() {
		return "resets " + resetsAt.Format("15:04 on 02 Jan")
	}

	if !resetsAt.After(now) {
		return "reset due"
	}

	remaining := resetsAt.Sub(now)
	if remaining < 24*time.Hour {
		hours := int(math.Ceil(remaining.Hours()))
		if hours < 1 {
			hours = 1
		}
		suffix := "hours"
		if hours == 1 {
			suffix = "hour"
		}
		return fmt.Sprintf("resets in %d %s", hours, suffix)
	}

	days := int(math.Ceil(remaining.Hours() / 24))
	suffix := "days"
	if days == 1 {
		suffix = "day"
	}

	return fmt.Sprintf("resets in %d %s (%s)", days, suffix, resetsAt.Format("02 Jan"))
}

func formatCaptured(capturedAt, now time.Time) string {
	if now.IsZero() || capturedAt.After(now) {
		return capturedAt.Format("2006-01-02 15:04")
	}

	age := now.Sub(capturedAt)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return capturedAt.Format("2006-01-02 15:04")
	}
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright at max.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
