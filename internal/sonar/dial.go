package sonar

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/orientation"
)

// Variant selects how a dial relates points to the device heading.
type Variant int

const (
	// VariantSonar detects points relative to the heading on a fixed,
	// degree-marked dial.
	VariantSonar Variant = iota
	// VariantPlain is VariantSonar on an unmarked dial.
	VariantPlain
	// VariantCompass detects points against fixed north and rotates the
	// whole dial, direction labels included, by the heading.
	VariantCompass
)

func (v Variant) String() string {
	switch v {
	case VariantPlain:
		return "plain"
	case VariantCompass:
		return "compass"
	default:
		return "sonar"
	}
}

// ParseVariant parses a variant name as produced by Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sonar":
		return VariantSonar, nil
	case "plain":
		return VariantPlain, nil
	case "compass":
		return VariantCompass, nil
	}
	return VariantSonar, fmt.Errorf("unknown dial variant %q: expected sonar, plain or compass", s)
}

// DialConfig configures a Dial.
type DialConfig struct {
	Variant          Variant
	PeriodMillis     int
	QueueSize        int
	SensorsAvailable bool
	Logger           logrus.FieldLogger
}

// Dial ties the heading filter, the easing, the sweep and the points
// together. Everything except Offer must be called from a single goroutine.
type Dial struct {
	variant Variant
	angles  AngleState
	filter  *OrientationFilter
	sweep   SweepState
	points  []*ScanPoint
	sensors bool

	startedAt time.Time
	samples   chan orientation.Reading
	dropped   atomic.Int64

	log logrus.FieldLogger
}

// NewDial creates a stopped dial.
func NewDial(cfg DialConfig) *Dial {
	size := cfg.QueueSize
	if size <= 0 {
		size = config.SampleQueueSize
	}
	period := cfg.PeriodMillis
	if period == 0 {
		period = config.DefaultPeriodMillis
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	return &Dial{
		variant: cfg.Variant,
		filter:  NewOrientationFilter(),
		sweep:   NewSweepState(period),
		sensors: cfg.SensorsAvailable,
		samples: make(chan orientation.Reading, size),
		log:     log.WithField("component", "dial"),
	}
}

// Offer queues an orientation reading for the next Tick. It never blocks;
// when the queue is full the reading is dropped and false is returned.
// Safe to call from any goroutine.
func (d *Dial) Offer(r orientation.Reading) bool {
	select {
	case d.samples <- r:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped returns how many readings were discarded because the queue was full.
func (d *Dial) Dropped() int64 {
	return d.dropped.Load()
}

// Variant returns the dial variant.
func (d *Dial) Variant() Variant { return d.variant }

// Angles returns the current heading state.
func (d *Dial) Angles() AngleState { return d.angles }

// Sweep returns the current sweep state.
func (d *Dial) Sweep() SweepState { return d.sweep }

// SensorsAvailable reports whether orientation input exists.
func (d *Dial) SensorsAvailable() bool { return d.sensors }

// SetSensorsAvailable records whether an orientation source is attached.
// Without one the sweep still runs but no point is detected or shown.
func (d *Dial) SetSensorsAvailable(ok bool) {
	if ok == d.sensors {
		return
	}
	d.log.WithField("available", ok).Info("orientation sensors changed")
	d.sensors = ok
	if ok {
		d.primePoints()
	}
}

// SetPeriod changes the sweep period. Out of range values are clamped.
func (d *Dial) SetPeriod(periodMillis int) {
	d.sweep = d.sweep.WithPeriod(periodMillis)
}

// SetPoints replaces the tracked points.
func (d *Dial) SetPoints(points []*ScanPoint) {
	d.points = append(d.points[:0:0], points...)
}

// AddPoints appends to the tracked points.
func (d *Dial) AddPoints(points ...*ScanPoint) {
	d.points = append(d.points, points...)
}

// Points returns the tracked points.
func (d *Dial) Points() []*ScanPoint {
	return d.points
}

// Running reports whether the sweep is running.
func (d *Dial) Running() bool { return d.sweep.Running }

// Start begins sweeping from 0 degrees at now.
func (d *Dial) Start(now time.Time) {
	if d.sweep.Running {
		return
	}
	d.startedAt = now
	d.sweep = d.sweep.Start()
	d.primePoints()
	d.log.WithField("period_ms", d.sweep.PeriodMillis).Debug("sweep started")
}

// Stop halts the sweep and turns the dial back to north. Point
// visibilities are left as they are.
func (d *Dial) Stop() {
	d.sweep = d.sweep.Stop()
	d.angles = d.angles.Reset()
	d.log.Debug("sweep stopped")
}

// Reference returns the angle point angles are measured from.
func (d *Dial) Reference() int {
	if d.variant == VariantCompass {
		return 0
	}
	return d.angles.Current
}

// Tick runs one update cycle: queued readings are filtered, the heading
// eases one step, the sweep advances and every point is checked against it.
func (d *Dial) Tick(now time.Time) Frame {
	d.drain()
	if d.sweep.Running {
		d.angles = d.angles.Ease()
	}

	var detections []string
	if d.sweep.Running {
		prev := d.sweep.Angle
		d.sweep = d.sweep.Tick(now.Sub(d.startedAt).Milliseconds())
		if d.sensors {
			detections = d.detect(now.UnixMilli(), prev, d.sweep.Angle)
		}
	}

	return d.frame(detections)
}

func (d *Dial) drain() {
	for {
		select {
		case r := <-d.samples:
			d.accept(r)
		default:
			return
		}
	}
}

func (d *Dial) accept(r orientation.Reading) {
	reading := AzimuthDegrees(r.Azimuth)
	target, ok := d.filter.Accept(reading, d.angles.Current)
	if !ok {
		return
	}
	d.angles = d.angles.WithTarget(target)
	d.log.WithFields(logrus.Fields{
		"current": d.angles.Current,
		"target":  target,
	}).Trace("heading target updated")
}

// detect checks every point for sweep positions between prev and cur. Large
// jumps are split into steps of config.MaxSweepStep so a slow frame cannot
// carry the beam past a point unnoticed.
func (d *Dial) detect(nowMillis int64, prev, cur int) []string {
	ref := d.Reference()
	delta := (cur - prev + 360) % 360

	var fired []string
	for _, p := range d.points {
		hit := false
		for step := config.MaxSweepStep; step < delta; step += config.MaxSweepStep {
			if p.Detect(nowMillis, ref, (prev+step)%360) {
				hit = true
			}
		}
		if p.Detect(nowMillis, ref, cur) {
			hit = true
		}
		if hit {
			fired = append(fired, p.ID())
		}
	}
	return fired
}

// primePoints aligns every point with the current sweep position. Crossings
// that happened while detection was off are not reported afterwards.
func (d *Dial) primePoints() {
	ref := d.Reference()
	for _, p := range d.points {
		p.prime(ref, d.sweep.Angle)
	}
}

func (d *Dial) frame(detections []string) Frame {
	f := Frame{
		Variant:    d.variant,
		Heading:    d.angles.Current,
		Target:     d.angles.Target,
		Sweep:      d.sweep.Angle,
		Running:    d.sweep.Running,
		Sensors:    d.sensors,
		Detections: detections,
		Dropped:    d.dropped.Load(),
		Points:     make([]PointView, 0, len(d.points)),
	}

	ref := d.Reference()
	for _, p := range d.points {
		pv := PointView{
			ID:         p.ID(),
			Label:      p.Label(),
			Color:      p.Color(),
			Angle:      p.DetectionAngle(),
			Distance:   p.DetectionDistance(),
			Visibility: p.Visibility(),
			Detected:   p.Detected(),
			Visible:    f.Running && f.Sensors && p.IsVisible(),
		}
		if !p.Detected() {
			pv.Angle = Normalize(ref + p.Angle())
			pv.Distance = p.Distance()
		}
		f.Points = append(f.Points, pv)
	}
	return f
}
