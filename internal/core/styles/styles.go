// Package styles provides shared lipgloss styles for the terminal reviewer.
package styles

import "github.com/charmbracelet/lipgloss"

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports, rebuilt by SetTheme.
var (
	HeaderStyle   lipgloss.Style
	ProgressStyle lipgloss.Style
	MutedStyle    lipgloss.Style
	SuccessStyle  lipgloss.Style
	WarningStyle  lipgloss.Style
	ErrorStyle    lipgloss.Style

	// Side by side proposal panes.
	PaneTitleStyle lipgloss.Style
	OldPaneStyle   lipgloss.Style
	NewPaneStyle   lipgloss.Style
	ContextStyle   lipgloss.Style
)

func init() {
	p, _ := GetPalette(DefaultTheme)
	SetTheme(p)
}

// SetTheme rebuilds every exported style from p.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	ProgressStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Error)

	PaneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Foreground).MarginBottom(1)

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(p.Foreground)
	OldPaneStyle = pane.BorderForeground(p.Muted)
	NewPaneStyle = pane.BorderForeground(p.Success)

	ContextStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true)
}
