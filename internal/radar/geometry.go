package radar

import (
	"math"

	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/sonar"
)

// CellDistance computes the distance from a cell to the dial center,
// accounting for terminal aspect ratio.
func CellDistance(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / config.AspectRatio
	return math.Sqrt(dx*dx + dy*dy)
}

// CellDegrees computes the screen angle from center to a cell.
// Returns degrees in [0, 360), where 0=top, increasing clockwise.
func CellDegrees(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / config.AspectRatio
	deg := math.Atan2(dx, -dy) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DialToCell places a dial position (distance 0..1 from the center, angle in
// degrees clockwise from the top) onto the character grid.
func DialToCell(centerX, centerY int, radius, distance float64, angle int) (col, row int) {
	x, y := sonar.PointOnCircle(0, 0, radius*distance, angle)
	return centerX + int(math.Round(x)), centerY + int(math.Round(y*config.AspectRatio))
}

// RingChar returns the appropriate character for a ring at the given angle
// in degrees.
func RingChar(deg float64) rune {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}

	// 8 sectors for character selection
	switch int(math.Round(deg/45)) % 8 {
	case 0, 4: // North, South
		return '-'
	case 1, 5: // NE, SW
		return '/'
	case 2, 6: // East, West
		return '|'
	default: // SE, NW
		return '\\'
	}
}

// SpokeChar returns the character for a radial line leaving the center at
// the given angle in degrees.
func SpokeChar(deg float64) rune {
	deg = math.Mod(deg, 180)
	if deg < 0 {
		deg += 180
	}
	switch int(math.Round(deg/45)) % 4 {
	case 0:
		return '|'
	case 1:
		return '/'
	case 2:
		return '-'
	default:
		return '\\'
	}
}

// TrailIntensity returns the glow intensity [0, 1] of a cell at cellDeg for a
// sweep head at sweepDeg. The beam leaves a trail of config.SweepTrailDeg
// behind it; cells outside the trail return 0.
func TrailIntensity(sweepDeg, cellDeg float64) float64 {
	behind := math.Mod(sweepDeg-cellDeg, 360)
	if behind < 0 {
		behind += 360
	}
	if behind > config.SweepTrailDeg {
		return 0
	}
	// Linear falloff: 1.0 at sweep head → 0.0 at trail end
	return 1.0 - behind/config.SweepTrailDeg
}
