package sonar

import "math"

// Frame is a snapshot of the dial after a Tick, for rendering.
type Frame struct {
	Variant    Variant
	Heading    int // smoothed heading, (-179, 180]
	Target     int
	Sweep      int // sweep angle, [0, 360)
	Running    bool
	Sensors    bool
	Points     []PointView
	Detections []string // IDs of points crossed on this tick
	Dropped    int64
}

// PointView is the render state of one point.
type PointView struct {
	ID         string
	Label      string
	Color      string
	Angle      int // absolute angle of the last detection
	Distance   float64
	Visibility float64
	Visible    bool
	Detected   bool
}

// Rotation is the angle the whole dial is drawn rotated by.
func (f Frame) Rotation() int {
	if f.Variant == VariantCompass {
		return f.Heading
	}
	return 0
}

// VisibleCount returns the number of points currently shown.
func (f Frame) VisibleCount() int {
	n := 0
	for _, p := range f.Points {
		if p.Visible {
			n++
		}
	}
	return n
}

// Fade maps a linear visibility onto a decelerating curve so a freshly
// detected point lingers before it fades out.
func Fade(visibility float64) float64 {
	if visibility <= 0 {
		return 0
	}
	if visibility >= 1 {
		return 1
	}
	return 1 - math.Pow(1-visibility, 2*fadeFactor)
}

// fadeFactor shapes the Fade curve; 0.5 is linear.
const fadeFactor = 0.6
