package app

import (
	"math/rand"

	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/sonar"
)

// StaticPoints builds the configured points of interest. When none are
// configured and the demo is on, n random points are placed instead.
func StaticPoints(s config.Settings, rnd *rand.Rand) []*sonar.ScanPoint {
	var points []*sonar.ScanPoint
	for _, ps := range s.Points {
		vis := ps.VisibilityMillis
		if vis == 0 {
			vis = s.VisibilityMillis
		}
		points = append(points, sonar.NewScanPoint(sonar.PointSpec{
			Angle:            ps.Angle,
			Distance:         ps.Distance,
			Color:            ps.Color,
			VisibilityMillis: vis,
			Label:            ps.Label,
		}))
	}
	if len(points) == 0 && s.Demo {
		points = RandomPoints(rnd, s.RandomPoints, s.VisibilityMillis)
	}
	return points
}

// RandomPoints scatters n points over the dial.
func RandomPoints(rnd *rand.Rand, n int, visibilityMillis int64) []*sonar.ScanPoint {
	if n <= 0 {
		return nil
	}
	if visibilityMillis == 0 {
		visibilityMillis = config.DefaultVisibilityMillis
	}
	points := make([]*sonar.ScanPoint, n)
	for i := range points {
		points[i] = sonar.NewScanPoint(sonar.PointSpec{
			Angle:            rnd.Intn(360),
			Distance:         rnd.Float64(),
			VisibilityMillis: visibilityMillis,
		})
	}
	return points
}
