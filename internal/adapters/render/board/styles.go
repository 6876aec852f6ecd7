package board

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title         lipgloss.Style
	header        lipgloss.Style
	phase         lipgloss.Style
	detail        lipgloss.Style
	notice        lipgloss.Style
	warning       lipgloss.Style
	section       lipgloss.Style
	empty         lipgloss.Style
	constraintKey lipgloss.Style
	constraintVal lipgloss.Style
	row           lipgloss.Style
	verdictGood   lipgloss.Style
	verdictClose  lipgloss.Style
	verdictBad    lipgloss.Style
	barBracket    lipgloss.Style
	barFill       lipgloss.Style
	barEmpty      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:         lipgloss.NewStyle().Bold(true),
		header:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		phase:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		notice:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		warning:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:       lipgloss.NewStyle().MarginTop(1),
		empty:         lipgloss.NewStyle().Faint(true),
		constraintKey: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		constraintVal: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		row:           lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		verdictGood:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		verdictClose:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		verdictBad:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		barBracket:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:       lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
