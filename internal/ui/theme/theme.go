// Package theme holds the lipgloss styles used by the command-line output.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary = lipgloss.Color("#8B5CF6")
	Accent  = lipgloss.Color("#F97316")
	Success = lipgloss.Color("#22C55E")
	Warning = lipgloss.Color("#EAB308")
	Error   = lipgloss.Color("#F43F5E")
	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	Border  = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text).
		Underline(true)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Code = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Verdicts and difficulty badges
var (
	Pass = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Fail = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Easy   = lipgloss.NewStyle().Foreground(Success)
	Medium = lipgloss.NewStyle().Foreground(Warning)
	Hard   = lipgloss.NewStyle().Foreground(Error)
)

// Difficulty returns the badge style for a difficulty name.
func Difficulty(name string) lipgloss.Style {
	switch name {
	case "Easy":
		return Easy
	case "Medium":
		return Medium
	case "Hard":
		return Hard
	}
	return Body
}

// Bar renders a solved/total progress bar of the given width.
func Bar(solved, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = solved * width / total
	}
	full := lipgloss.NewStyle().Foreground(Primary)
	empty := lipgloss.NewStyle().Foreground(Border)
	return full.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", width-filled))
}

