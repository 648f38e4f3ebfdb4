package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sonar.klederson.com/internal/sonar"
)

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

// Undetected or faded point style: very dim
var fadedPointSty = lipgloss.NewStyle().
	Foreground(ColorDimGreen)

// RenderPointList renders the scrollable point list panel with a cursor.
// The title stays fixed at the top; only the point entries scroll.
func RenderPointList(points []sonar.PointView, width, height int, cursorIndex int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	visible := 0
	for _, p := range points {
		if p.Visible {
			visible++
		}
	}
	title := StylePanelTitle.Render(fmt.Sprintf("POINTS [%d/%d]", visible, len(points)))
	separator := StyleSeparator.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}
	headerCount := len(headerLines)

	// Total inner height (excluding border top+bottom)
	innerH := height - 2
	if innerH < headerCount+1 {
		innerH = headerCount + 1
	}

	entrySpace := innerH - headerCount
	if entrySpace < 1 {
		entrySpace = 1
	}

	var entryLines []string
	if len(points) == 0 {
		entryLines = append(entryLines, "")
		entryLines = append(entryLines, StyleHelp.Render(" No points..."))
		entryLines = append(entryLines, StyleHelp.Render(" Waiting for sources"))
	} else {
		linesPerPoint := 4 // 3 content + 1 blank
		maxVisible := entrySpace / linesPerPoint
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Compute viewport start so cursor is always visible
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		count := 0
		for i := viewStart; i < len(points) && count < entrySpace; i++ {
			for _, l := range renderPointEntry(points[i], innerW, i == cursorIndex) {
				if count >= entrySpace {
					break
				}
				entryLines = append(entryLines, l)
				count++
			}
		}
	}

	for len(entryLines) < entrySpace {
		entryLines = append(entryLines, "")
	}

	all := make([]string, 0, innerH)
	all = append(all, headerLines...)
	all = append(all, entryLines...)
	if len(all) > innerH {
		all = all[:innerH]
	}

	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))

	// Hard clamp rendered output to exactly `height` lines.
	// lipgloss Height() only sets a minimum; it won't truncate overflow.
	outLines := strings.Split(rendered, "\n")
	if len(outLines) > height {
		outLines = outLines[:height]
	}
	for len(outLines) < height {
		outLines = append(outLines, "")
	}
	return strings.Join(outLines, "\n")
}

// PointName returns the label of a point, or a short form of its ID.
func PointName(p sonar.PointView) string {
	if p.Label != "" {
		return p.Label
	}
	if len(p.ID) > 8 {
		return "#" + p.ID[:8]
	}
	return "#" + p.ID
}

func renderPointEntry(p sonar.PointView, maxW int, isCursor bool) []string {
	name := PointName(p)
	nameMax := maxW - 8
	if nameMax < 4 {
		nameMax = 4
	}
	if len(name) > nameMax {
		name = name[:nameMax]
	}

	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	symbol := " "
	if p.Visible {
		symbol = "*"
	}

	state := "waiting"
	if p.Detected {
		state = fmt.Sprintf("seen %3d%%", int(p.Visibility*100))
	}

	raw1 := truncRaw(fmt.Sprintf("%s %s %s", cursor, symbol, name), maxW)
	raw2 := truncRaw(fmt.Sprintf("     %4ddeg  r=%.2f", p.Angle, p.Distance), maxW)
	raw3 := truncRaw(fmt.Sprintf("     %s %s", fadeBar(p.Visibility, 8), state), maxW)

	switch {
	case isCursor:
		return []string{cursorRowSty.Render(raw1), cursorRowSty.Render(raw2), cursorRowSty.Render(raw3), ""}
	case !p.Visible:
		return []string{fadedPointSty.Render(raw1), fadedPointSty.Render(raw2), fadedPointSty.Render(raw3), ""}
	}

	nameSty := StylePointName
	if p.Color != "" {
		nameSty = nameSty.Foreground(lipgloss.Color(p.Color))
	}
	line1 := fmt.Sprintf("   %s %s", nameSty.Render("*"), nameSty.Render(name))
	return []string{line1, StylePointInfo.Render(raw2), StylePointID.Render(raw3), ""}
}

// fadeBar draws visibility as a bar of width cells.
func fadeBar(v float64, width int) string {
	filled := int(sonar.Fade(v)*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("|", filled) + strings.Repeat("-", width-filled) + "]"
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
