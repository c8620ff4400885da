package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Danger    = lipgloss.Color("#FF6B6B")
	Success   = lipgloss.Color("#95E1A3")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	// Inline form errors
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Danger)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success)

	// Form card
	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Feed
	FeedStyle = lipgloss.NewStyle().
			Padding(1, 2)

	PostTitleStyle = lipgloss.NewStyle().
			Bold(true)

	PostSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(Surface)

	PostMetaStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	DividerStyle = lipgloss.NewStyle().
			Foreground(Border)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)
