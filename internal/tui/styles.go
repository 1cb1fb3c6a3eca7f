package tui

import "github.com/charmbracelet/lipgloss"

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleChinese = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Padding(1, 2)
	stylePinyin  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).PaddingLeft(2)
	styleEnglish = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).PaddingLeft(2)
	styleOn      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSubtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleCard    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Width(60)
)

func flag(name string, on bool) string {
	if on {
		return styleOn.Render(name)
	}
	return styleSubtle.Render(name)
}
