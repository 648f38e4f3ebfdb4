package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderCompass renders a compass rose with an arrow along the current
// heading and a marker on the ring at the target heading. Both are degrees,
// 0=north, clockwise.
func RenderCompass(width, height int, heading, target int) string {
	if width < 9 || height < 5 {
		return ""
	}

	grid := make([][]byte, height)
	isArrow := make([][]bool, height)
	for i := range grid {
		grid[i] = make([]byte, width)
		isArrow[i] = make([]bool, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	fcx := float64(width) / 2.0
	fcy := float64(height) / 2.0
	rx := fcx - 2.0 // horizontal radius in columns
	ry := fcy - 2.0 // vertical radius in rows
	if rx < 3 {
		rx = 3
	}
	if ry < 2 {
		ry = 2
	}

	// Draw compass ring
	steps := 80
	for i := 0; i < steps; i++ {
		a := float64(i) * 2 * math.Pi / float64(steps)
		col := int(math.Round(fcx + rx*math.Sin(a)))
		row := int(math.Round(fcy - ry*math.Cos(a)))
		if col >= 0 && col < width && row >= 0 && row < height && grid[row][col] == ' ' {
			grid[row][col] = ringChar(a)
		}
	}

	cx := int(math.Round(fcx))
	cy := int(math.Round(fcy))

	// Cardinal markers
	setGrid(grid, width, height, cx, cy-int(math.Round(ry))-1, 'N')
	setGrid(grid, width, height, cx, cy+int(math.Round(ry))+1, 'S')
	setGrid(grid, width, height, cx+int(math.Round(rx))+1, cy, 'E')
	setGrid(grid, width, height, cx-int(math.Round(rx))-1, cy, 'W')

	// Target marker on the ring
	ta := degToRad(target)
	tCol := int(math.Round(fcx + rx*math.Sin(ta)))
	tRow := int(math.Round(fcy - ry*math.Cos(ta)))
	setGrid(grid, width, height, tCol, tRow, 'x')

	setGrid(grid, width, height, cx, cy, '+')

	// Arrow from center along the heading
	angle := degToRad(heading)
	sinA := math.Sin(angle)
	cosA := math.Cos(angle)
	const arrowFrac = 0.8

	shaftSteps := int(math.Max(rx, ry) * arrowFrac)
	if shaftSteps < 2 {
		shaftSteps = 2
	}

	tipCol, tipRow := cx, cy
	for s := 1; s <= shaftSteps; s++ {
		t := float64(s) / float64(shaftSteps) * arrowFrac
		col := int(math.Round(fcx + t*rx*sinA))
		row := int(math.Round(fcy - t*ry*cosA))
		if col >= 0 && col < width && row >= 0 && row < height {
			grid[row][col] = shaftChar(angle)
			isArrow[row][col] = true
			tipCol = col
			tipRow = row
		}
	}
	grid[tipRow][tipCol] = arrowTip(angle)
	isArrow[tipRow][tipCol] = true

	arrowColor := ColorMatrixGreen
	if heading != target {
		arrowColor = ColorWarning
	}
	arrowSty := lipgloss.NewStyle().Foreground(arrowColor).Bold(true)
	ringSty := lipgloss.NewStyle().Foreground(ColorDimGreen)
	markSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)
	targetSty := lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			ch := grid[row][col]
			switch {
			case isArrow[row][col]:
				sb.WriteString(arrowSty.Render(string(ch)))
			case ch == 'N' || ch == 'S' || ch == 'E' || ch == 'W' || ch == '+':
				sb.WriteString(markSty.Render(string(ch)))
			case ch == 'x':
				sb.WriteString(targetSty.Render(string(ch)))
			case ch != ' ':
				sb.WriteString(ringSty.Render(string(ch)))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

func degToRad(deg int) float64 {
	return float64(deg) * math.Pi / 180
}

func setGrid(grid [][]byte, w, h, col, row int, ch byte) {
	if col >= 0 && col < w && row >= 0 && row < h {
		grid[row][col] = ch
	}
}

func sector8(a float64) int {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return int(math.Round(a/(math.Pi/4))) % 8
}

func ringChar(a float64) byte {
	switch sector8(a) {
	case 0, 4:
		return '-'
	case 1, 5:
		return '\\'
	case 2, 6:
		return '|'
	default:
		return '/'
	}
}

// shaftChar returns the line character for a given angle direction.
func shaftChar(a float64) byte {
	switch sector8(a) {
	case 0, 4: // N, S
		return '|'
	case 2, 6: // E, W
		return '-'
	case 1, 5: // NE, SW
		return '/'
	default: // SE, NW
		return '\\'
	}
}

// arrowTip returns the arrowhead character for a given angle.
func arrowTip(a float64) byte {
	switch sector8(a) {
	case 0:
		return '^'
	case 2:
		return '>'
	case 4:
		return 'v'
	case 6:
		return '<'
	default:
		return shaftChar(a)
	}
}
