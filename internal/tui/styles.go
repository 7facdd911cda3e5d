package tui

import "github.com/charmbracelet/lipgloss"

type styleSet struct {
	header   lipgloss.Style
	section  lipgloss.Style
	rowLabel lipgloss.Style
	selected lipgloss.Style
	count    lipgloss.Style
	mention  lipgloss.Style
	muted    lipgloss.Style
	footer   lipgloss.Style
	errText  lipgloss.Style
}

func defaultStyles() styleSet {
	return styleSet{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		section:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		rowLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("238")),
		count:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		mention:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		footer:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}
