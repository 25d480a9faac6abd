package tui

import (
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent  = lipgloss.Color("62")
	colorMuted   = lipgloss.Color("243")
	colorError   = lipgloss.Color("203")
	colorPanel   = lipgloss.Color("235")
	colorLow     = lipgloss.Color("39")
	colorMedium  = lipgloss.Color("220")
	colorHigh    = lipgloss.Color("196")
	colorFocused = lipgloss.Color("212")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	labelStyle    = lipgloss.NewStyle().Bold(true)
	footerStyle   = lipgloss.NewStyle().Faint(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 2)
	cardValueStyle = lipgloss.NewStyle().Bold(true)

	chipStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	chipActiveStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("231")).Background(colorAccent)

	rowStyle         = lipgloss.NewStyle().PaddingLeft(2)
	rowSelectedStyle = lipgloss.NewStyle().PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorFocused)
	detailStyle = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("252"))

	buttonStyle = lipgloss.NewStyle().Padding(0, 2).
			Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238"))
	buttonFocusedStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
				Foreground(lipgloss.Color("231")).Background(colorAccent)
	buttonDisabledStyle = lipgloss.NewStyle().Padding(0, 2).Faint(true).
				Foreground(colorMuted).Background(lipgloss.Color("236"))
)

func severityColor(s domain.Severity) lipgloss.Color {
	switch s {
	case domain.SeverityLow:
		return colorLow
	case domain.SeverityMedium:
		return colorMedium
	case domain.SeverityHigh:
		return colorHigh
	default:
		return colorMuted
	}
}

// severityBadge renders e.g. " HIGH " on the severity colour.
func severityBadge(s domain.Severity) string {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("16")).
		Background(severityColor(s)).
		Render(string(s))
}

func severityIcon(s domain.Severity) string {
	icon := "●"
	if s == domain.SeverityHigh {
		icon = "▲"
	}
	return lipgloss.NewStyle().Foreground(severityColor(s)).Render(icon)
}
