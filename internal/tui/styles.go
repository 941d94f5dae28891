package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/fintrack/internal/model"
)

// ------- Lip Gloss styles for the work items page -------
var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	inputStyle = frameStyle
)

var badgeBase = lipgloss.NewStyle().Padding(0, 1)

// Status badge colours: Completed green, InProgress blue, anything else grey.
func statusBadge(status string) string {
	st := badgeBase.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("240"))
	switch status {
	case model.StatusCompleted:
		st = badgeBase.Foreground(lipgloss.Color("22")).Background(lipgloss.Color("157"))
	case model.StatusInProgress:
		st = badgeBase.Foreground(lipgloss.Color("18")).Background(lipgloss.Color("153"))
	}
	return st.Render(status)
}

// Priority badge colours: High red, Medium yellow, anything else grey.
func priorityBadge(priority string) string {
	st := badgeBase.Foreground(lipgloss.Color("252")).Background(lipgloss.Color("240"))
	switch priority {
	case model.PriorityHigh:
		st = badgeBase.Foreground(lipgloss.Color("88")).Background(lipgloss.Color("217"))
	case model.PriorityMedium:
		st = badgeBase.Foreground(lipgloss.Color("94")).Background(lipgloss.Color("229"))
	}
	return st.Render(priority)
}
