package sonar

import "math"

// Normalize wraps any integer degree value into (-179, 180].
func Normalize(angle int) int {
	a := (angle + 179) % 360
	if a < 0 {
		a += 360
	}
	return a - 179
}

// SignedDiff returns the shortest signed angular distance from one angle to
// another. Positive means to lies clockwise of from.
//
// Inputs are normalized first. When the two angles are exactly 180 degrees
// apart the result is to-from, so SignedDiff(0, 180) == 180 while
// SignedDiff(180, 0) == -180.
func SignedDiff(from, to int) int {
	from = Normalize(from)
	to = Normalize(to)

	diff := to - from
	if abs(diff) > 180 {
		diff = 180 - abs(to) + 180 - abs(from)
		if to > 0 {
			diff = -diff
		}
	}
	return diff
}

// IsClockwiseCloser reports whether the shortest way from one angle to
// another is clockwise.
func IsClockwiseCloser(from, to int) bool {
	return SignedDiff(from, to) > 0
}

// OffsetAngle maps a sweep angle in [0, 360) onto (-179, 180].
func OffsetAngle(positive int) int {
	if positive > 180 {
		return positive - 360
	}
	return positive
}

// AzimuthDegrees converts a raw azimuth in radians to normalized integer
// degrees. The sign is flipped so that turning the device clockwise rotates
// the dial counter-clockwise.
func AzimuthDegrees(rad float64) int {
	deg := -rad * 180 / math.Pi
	return Normalize(int(math.Floor(deg + 0.5)))
}

// PointOnCircle returns the point at the given radius and angle around a
// center. 0 degrees is the top of the circle, increasing clockwise.
func PointOnCircle(cx, cy, radius float64, angle int) (x, y float64) {
	rad := float64(angle-90) * math.Pi / 180
	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}

// DistanceOnArc returns the chord length between the top of a circle and the
// point at the given angle.
func DistanceOnArc(radius float64, angle int) float64 {
	ax, ay := PointOnCircle(0, 0, radius, 0)
	bx, by := PointOnCircle(0, 0, radius, angle)
	return math.Hypot(ax-bx, ay-by)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
