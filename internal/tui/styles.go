package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Header   lipgloss.Style
	State    lipgloss.Style
	Content  lipgloss.Style
	Action   lipgloss.Style
	Disabled lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		State:    lipgloss.NewStyle().Faint(true),
		Content:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1),
		Action:   lipgloss.NewStyle().Bold(true),
		Disabled: lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87")),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
	}
}

// PlainStyles renders without colors or borders, for logs and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:   plain,
		State:    plain,
		Content:  plain,
		Action:   plain,
		Disabled: plain,
		Error:    plain,
		Info:     plain,
	}
}
