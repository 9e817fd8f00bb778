package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorGreen = lipgloss.Color("#2E7D32")
	ColorRed   = lipgloss.Color("#D32F2F")
	ColorGray  = lipgloss.Color("#9E9E9E")
	ColorWhite = lipgloss.Color("#FFFFFF")
)

var (
	iconStyle   = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true).MarginTop(1)
	detailStyle = lipgloss.NewStyle().Foreground(ColorGray).MarginTop(1)
	bannerStyle = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorRed).Bold(true).Padding(0, 2)
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Padding(1, 3)
	modalTitleStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	hintStyle       = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
)

// glyphs maps icon names to terminal glyphs.
var glyphs = map[string]string{
	"check-circle": "✔",
	"car":          "🚗",
}
