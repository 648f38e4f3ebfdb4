package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the dial panel and point list horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, dialPanel, pointList, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, dialPanel, pointList)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
