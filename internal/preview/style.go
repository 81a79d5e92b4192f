package preview

import "github.com/charmbracelet/lipgloss"

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorSubtext lipgloss.Color = "#a6adc8"
	colorOverlay lipgloss.Color = "#6c7086"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorYellow  lipgloss.Color = "#f9e2af"
	colorRed     lipgloss.Color = "#f38ba8"
	colorPink    lipgloss.Color = "#f5c2e7"
	colorBlue    lipgloss.Color = "#89b4fa"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPink)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext)
	valueStyle    = lipgloss.NewStyle().Foreground(colorText)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	currentStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	dimStyle      = lipgloss.NewStyle().Foreground(colorOverlay)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorOverlay).Padding(0, 1)
	idleStyle     = dimStyle
	playingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	stoppingStyle = lipgloss.NewStyle().Foreground(colorYellow)
)
