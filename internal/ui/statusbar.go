package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar.klederson.com/internal/sonar"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, f sonar.Frame, periodMillis int, notice string) string {
	var status string
	switch {
	case !f.Sensors:
		status = StyleStatusError.Render("[NO SENSORS]")
	case f.Running:
		status = StyleStatusRunning.Render("[SWEEPING]")
	default:
		status = StyleStatusStopped.Render("[STOPPED]")
	}

	info := fmt.Sprintf(" Heading: %4ddeg  Target: %4ddeg  Sweep: %3ddeg  Period: %dms  Points: %d/%d",
		f.Heading, f.Target, f.Sweep, periodMillis, f.VisibleCount(), len(f.Points))
	if f.Dropped > 0 {
		info += fmt.Sprintf("  Dropped: %d", f.Dropped)
	}
	if notice != "" {
		info += "  " + notice
	}

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - 2 - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}
	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
