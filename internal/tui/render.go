package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/core/parking"
)

// Render draws the parking screen centered in a width x height area. A
// non-nil alert is drawn as a modal below the content. Zero dimensions
// disable centering.
func Render(v parking.View, a *alert.Alert, width, height int) string {
	var blocks []string
	if v.ErrorBanner != "" {
		blocks = append(blocks, bannerStyle.Render(v.ErrorBanner), "")
	}
	if v.Kind != parking.ViewBlank {
		if g, ok := glyphs[v.Icon]; ok {
			blocks = append(blocks, iconStyle.Render(g))
		}
		blocks = append(blocks, titleStyle.Render(v.Title))
		if v.Detail != "" {
			blocks = append(blocks, detailStyle.Render(v.Detail))
		}
	}
	if a != nil {
		blocks = append(blocks, "", renderAlert(*a))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, blocks...)
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderAlert(a alert.Alert) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		modalTitleStyle.Render(a.Title),
		a.Message,
		"",
		hintStyle.Render("press enter to dismiss"),
	)
	return modalStyle.Render(body)
}
