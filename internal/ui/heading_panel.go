package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar.klederson.com/internal/sonar"
)

// RenderHeadingPanel renders the heading detail overlay that replaces the
// dial area: orientation state, a heading sparkline and a compass arrow.
func RenderHeadingPanel(f sonar.Frame, source string, width, height int, history []float64) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("HEADING")
	escHint := StyleHelp.Render("[ESC]")
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(escHint))) + escHint

	lines := []string{titleLine, StyleSeparator.Render(strings.Repeat("-", innerW)), ""}

	sensors := "available"
	if !f.Sensors {
		sensors = "missing"
	}
	fields := []struct{ label, value string }{
		{"Variant", f.Variant.String()},
		{"Source", source},
		{"Sensors", sensors},
		{"Heading", fmt.Sprintf("%d deg %s", f.Heading, DirectionName(f.Heading))},
		{"Target", fmt.Sprintf("%d deg", f.Target)},
		{"Rotation", fmt.Sprintf("%d deg", f.Rotation())},
		{"Dropped", fmt.Sprintf("%d", f.Dropped)},
	}
	for _, fl := range fields {
		lines = append(lines, StyleFieldLabel.Render(fmt.Sprintf("  %-10s", fl.label))+StyleFieldValue.Render(fl.value))
	}
	lines = append(lines, "")

	if len(history) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, StyleFieldLabel.Render("  Heading History:"))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(RenderSparkline(history, sparkW)))
		lines = append(lines, "")
	}

	compassH := height - len(lines) - 4
	if compassH < 5 {
		compassH = 5
	}
	compassW := innerW
	if compassW > compassH*3 {
		compassW = compassH * 3 // keep roughly proportional
	}
	if compass := RenderCompass(compassW, compassH, f.Heading, f.Target); compass != "" {
		prefix := strings.Repeat(" ", max(0, (innerW-compassW)/2))
		for _, cl := range strings.Split(compass, "\n") {
			lines = append(lines, prefix+cl)
		}
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	if len(lines) > height-2 && height > 2 {
		lines = lines[:height-2]
	}

	return StylePanelActive.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// DirectionName returns the nearest of the eight compass points for a
// heading in degrees.
func DirectionName(deg int) string {
	dirs := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	d := ((deg % 360) + 360) % 360
	return dirs[((d+22)/45)%8]
}

// RenderSparkline draws the last width values scaled between their min and max.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = min(minV, v)
		maxV = max(maxV, v)
	}
	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}
