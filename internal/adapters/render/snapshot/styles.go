package snapshot

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	resource lipgloss.Style
	amount   lipgloss.Style
	detail   lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	category lipgloss.Style
	meta     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		resource: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		amount:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("159")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		category: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
