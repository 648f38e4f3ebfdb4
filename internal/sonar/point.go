package sonar

import (
	"github.com/google/uuid"

	"sonar.klederson.com/internal/config"
)

// InfiniteVisibility keeps a point visible at all times once it is on the
// dial, regardless of detections.
const InfiniteVisibility int64 = -1

// PointSpec describes a point of interest.
type PointSpec struct {
	ID               string  `json:"id,omitempty"`
	Angle            int     `json:"angle"`    // degrees when facing north, 0=top, clockwise
	Distance         float64 `json:"distance"` // 0=center, 1=edge of the dial
	Color            string  `json:"color,omitempty"`
	VisibilityMillis int64   `json:"visibility_millis,omitempty"`
	Label            string  `json:"label,omitempty"`
}

// ScanPoint is a point of interest tracked by the sweep. Its identity is
// fixed at construction; only the detection state changes, through Detect.
type ScanPoint struct {
	id               string
	angle            int
	distance         float64
	color            string
	visibilityMillis int64
	label            string

	lastSignedDiff    int
	detected          bool
	detectionMillis   int64
	detectionAngle    int
	detectionDistance float64
	visibility        float64
}

// NewScanPoint builds a point from spec. The angle is wrapped into [0, 360),
// a negative distance becomes 0 and a non-positive visibility other than
// InfiniteVisibility falls back to config.DefaultVisibilityMillis. A missing
// ID is generated.
func NewScanPoint(spec PointSpec) *ScanPoint {
	angle := spec.Angle % 360
	if angle < 0 {
		angle += 360
	}
	dist := spec.Distance
	if dist < 0 {
		dist = 0
	}
	vis := spec.VisibilityMillis
	if vis <= 0 && vis != InfiniteVisibility {
		vis = config.DefaultVisibilityMillis
	}
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &ScanPoint{
		id:               id,
		angle:            angle,
		distance:         dist,
		color:            spec.Color,
		visibilityMillis: vis,
		label:            spec.Label,
	}
}

func (p *ScanPoint) ID() string              { return p.id }
func (p *ScanPoint) Angle() int              { return p.angle }
func (p *ScanPoint) Distance() float64       { return p.distance }
func (p *ScanPoint) Color() string           { return p.color }
func (p *ScanPoint) VisibilityMillis() int64 { return p.visibilityMillis }
func (p *ScanPoint) Label() string           { return p.label }

// Visibility is the fade value in [0, 1] computed by the last Detect call.
func (p *ScanPoint) Visibility() float64 { return p.visibility }

// DetectionAngle is the absolute angle at which the point was last detected.
func (p *ScanPoint) DetectionAngle() int { return p.detectionAngle }

// DetectionDistance is the point's distance at its last detection.
func (p *ScanPoint) DetectionDistance() float64 { return p.detectionDistance }

// Detected reports whether the sweep has crossed the point at least once.
func (p *ScanPoint) Detected() bool { return p.detected }

// Infinite reports whether the point never fades.
func (p *ScanPoint) Infinite() bool { return p.visibilityMillis == InfiniteVisibility }

// IsVisible reports whether the point should be drawn.
func (p *ScanPoint) IsVisible() bool {
	return (p.visibility > 0 && p.detectionDistance <= 1) || p.Infinite()
}

// Spec returns the identity of the point.
func (p *ScanPoint) Spec() PointSpec {
	return PointSpec{
		ID:               p.id,
		Angle:            p.angle,
		Distance:         p.distance,
		Color:            p.color,
		VisibilityMillis: p.visibilityMillis,
		Label:            p.label,
	}
}

// Moved returns a new point at a different distance that keeps p's identity
// and detection state. The new distance applies from the next detection.
func (p *ScanPoint) Moved(distance float64) *ScanPoint {
	spec := p.Spec()
	spec.Distance = distance
	return p.carry(spec)
}

// Relabeled returns a copy of p with a new label and the same detection state.
func (p *ScanPoint) Relabeled(label string) *ScanPoint {
	spec := p.Spec()
	spec.Label = label
	return p.carry(spec)
}

func (p *ScanPoint) carry(spec PointSpec) *ScanPoint {
	np := NewScanPoint(spec)
	np.lastSignedDiff = p.lastSignedDiff
	np.detected = p.detected
	np.detectionMillis = p.detectionMillis
	np.detectionAngle = p.detectionAngle
	np.detectionDistance = p.detectionDistance
	np.visibility = p.visibility
	return np
}

// Detect updates the detection state for one sweep tick. referenceAngle is
// the frame the point's angle is relative to (the dial heading, or 0 for a
// fixed north). It reports whether the sweep crossed the point on this tick.
func (p *ScanPoint) Detect(nowMillis int64, referenceAngle, sweepAngle int) bool {
	absolute := Normalize(referenceAngle + p.angle)
	diff := SignedDiff(OffsetAngle(sweepAngle), absolute)

	// The sweep moves clockwise, so the point flips from ahead (>0) to
	// behind (<=0) exactly when the beam passes it.
	fired := p.lastSignedDiff > 0 && diff <= 0
	if fired {
		p.detected = true
		p.detectionMillis = nowMillis
		p.detectionAngle = absolute
		p.detectionDistance = p.distance
	}

	p.visibility = p.visibilityAt(nowMillis)
	p.lastSignedDiff = diff
	return fired
}

// prime records where the sweep stands relative to the point without
// firing, so the next Detect only sees crossings from here on.
func (p *ScanPoint) prime(referenceAngle, sweepAngle int) {
	p.lastSignedDiff = SignedDiff(OffsetAngle(sweepAngle), Normalize(referenceAngle+p.angle))
}

func (p *ScanPoint) visibilityAt(nowMillis int64) float64 {
	if p.Infinite() {
		return 1
	}
	if !p.detected {
		return 0
	}
	v := 1 - float64(nowMillis-p.detectionMillis)/float64(p.visibilityMillis)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
