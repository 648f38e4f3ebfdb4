package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, variant, source string, running bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"S", "tart"},
		{"P", "ause"},
		{"+/-", " period"},
		{"H", "eading"},
		{"Q", "uit"},
	}

	var menu strings.Builder
	for _, k := range keys {
		menu.WriteString("  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label))
	}

	status := StyleStatusStopped.Render("STOPPED")
	if running {
		status = StyleStatusRunning.Render("SWEEPING")
	}

	info := StyleMenuLabel.Render(fmt.Sprintf("%s  Source: %s", strings.ToUpper(variant), source))

	left := StyleMenuKey.Render(title) + menu.String()
	right := status + "  " + info + " "

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
