package bluetooth

import (
	"math"

	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/sonar"
)

// PointTracker maps store snapshots onto dial points. A device keeps the
// same ScanPoint for as long as it is tracked, so RSSI jitter does not reset
// its fade.
type PointTracker struct {
	maxRange         float64
	visibilityMillis int64
	color            string
	points           map[string]*sonar.ScanPoint
}

// NewPointTracker creates a tracker placing devices at maxRange on the dial
// edge. Points get color, or the dial color when it is empty.
func NewPointTracker(maxRange float64, visibilityMillis int64, color string) *PointTracker {
	if maxRange <= 0 {
		maxRange = config.MaxRange
	}
	return &PointTracker{
		maxRange:         maxRange,
		visibilityMillis: visibilityMillis,
		color:            color,
		points:           make(map[string]*sonar.ScanPoint),
	}
}

// Sync updates the tracked points from devices and returns them in the same
// order. changed is false when the dial can keep its current point list.
func (t *PointTracker) Sync(devices []*Device) (points []*sonar.ScanPoint, changed bool) {
	seen := make(map[string]bool, len(devices))
	points = make([]*sonar.ScanPoint, 0, len(devices))

	for _, d := range devices {
		seen[d.MAC] = true
		dist := d.DialDistance(t.maxRange)

		p, ok := t.points[d.MAC]
		switch {
		case !ok:
			p = sonar.NewScanPoint(sonar.PointSpec{
				ID:               d.MAC,
				Angle:            d.Angle,
				Distance:         dist,
				Color:            t.color,
				VisibilityMillis: t.visibilityMillis,
				Label:            d.Name,
			})
			changed = true
		case math.Abs(p.Distance()-dist) > config.DistanceJitter:
			p = p.Moved(dist)
			changed = true
		}
		if d.Name != "" && d.Name != p.Label() {
			p = p.Relabeled(d.Name)
			changed = true
		}
		t.points[d.MAC] = p
		points = append(points, p)
	}

	for mac := range t.points {
		if !seen[mac] {
			delete(t.points, mac)
			changed = true
		}
	}
	return points, changed
}

// Len returns the number of tracked points.
func (t *PointTracker) Len() int {
	return len(t.points)
}
