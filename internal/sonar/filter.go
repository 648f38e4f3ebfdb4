package sonar

import "sonar.klederson.com/internal/config"

// OrientationFilter turns a stream of azimuth readings into a denoised
// target heading. Readings that barely differ from the current heading, and
// spurious zero readings far from it, are dropped. Accepted readings are
// averaged in batches of config.SmoothingBatch.
type OrientationFilter struct {
	buf []int
}

// NewOrientationFilter returns an empty filter.
func NewOrientationFilter() *OrientationFilter {
	return &OrientationFilter{
		buf: make([]int, 0, config.SmoothingBatch),
	}
}

// Accept offers a reading in degrees. It returns the new target and true
// once a full batch has been collected.
func (f *OrientationFilter) Accept(reading, current int) (int, bool) {
	reading = Normalize(reading)
	diff := abs(SignedDiff(current, reading))

	// The magnetometer occasionally reports exactly 0 for a single sample.
	if diff < config.MinimalDiff || (diff > config.SensorDiffTolerance && reading == 0) {
		return 0, false
	}

	f.buf = append(f.buf, reading)
	if len(f.buf) < config.SmoothingBatch {
		return 0, false
	}

	// Average differences rather than raw angles so that samples straddling
	// the 180/-179 seam do not average to the opposite direction.
	sum := 0
	for _, s := range f.buf {
		sum += SignedDiff(current, s)
	}
	target := Normalize(current + sum/len(f.buf))
	f.buf = f.buf[:0]
	return target, true
}

// Pending returns the number of readings waiting for a full batch.
func (f *OrientationFilter) Pending() int {
	return len(f.buf)
}

// Reset drops any buffered readings.
func (f *OrientationFilter) Reset() {
	f.buf = f.buf[:0]
}
