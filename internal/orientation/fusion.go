package orientation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// minHorizontalNorm rejects fusion when gravity and the magnetic field are
// nearly parallel (or either is missing), where east is undefined.
const minHorizontalNorm = 0.1

// Fuse computes an orientation from an accelerometer (gravity) vector and a
// magnetometer vector in device coordinates. It reports false when the
// vectors do not define a usable frame.
//
// The rotation matrix rows are east (H), north (M) and up (A):
//
//	H = normalize(E × A)
//	M = A × H
//
// Azimuth, pitch and roll are read off the matrix the same way for any tilt:
// azimuth from the east and north components of the device y axis, pitch and
// roll from the up row.
func Fuse(accel, mag r3.Vec) (Reading, bool) {
	h := r3.Cross(mag, accel)
	normH := r3.Norm(h)
	normA := r3.Norm(accel)
	if normH < minHorizontalNorm || normA == 0 {
		return Reading{}, false
	}

	h = r3.Scale(1/normH, h)
	a := r3.Scale(1/normA, accel)
	m := r3.Cross(a, h)

	return Reading{
		Azimuth: math.Atan2(h.Y, m.Y),
		Pitch:   math.Asin(clampUnit(-a.Y)),
		Roll:    math.Atan2(-a.X, a.Z),
	}, true
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
