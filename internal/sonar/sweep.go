package sonar

import "sonar.klederson.com/internal/config"

// SweepState is the rotating detection beam. Angle runs linearly from 0 to
// 359 over PeriodMillis and then wraps.
type SweepState struct {
	Angle        int
	PeriodMillis int
	Running      bool
}

// NewSweepState returns a stopped sweep with the given period, clamped to
// [config.MinPeriodMillis, config.MaxPeriodMillis].
func NewSweepState(periodMillis int) SweepState {
	return SweepState{PeriodMillis: ClampPeriod(periodMillis)}
}

// ClampPeriod limits a sweep period to the supported range.
func ClampPeriod(periodMillis int) int {
	return Clamp(periodMillis, config.MinPeriodMillis, config.MaxPeriodMillis)
}

// WithPeriod returns a copy of s with a new, clamped period.
func (s SweepState) WithPeriod(periodMillis int) SweepState {
	s.PeriodMillis = ClampPeriod(periodMillis)
	return s
}

// Start begins a fresh cycle at 0 degrees. Starting a running sweep is a
// no-op.
func (s SweepState) Start() SweepState {
	if s.Running {
		return s
	}
	s.Running = true
	s.Angle = 0
	return s
}

// Stop halts the sweep. The angle is left where it stopped.
func (s SweepState) Stop() SweepState {
	s.Running = false
	return s
}

// Tick positions the sweep for elapsedMillis since Start.
func (s SweepState) Tick(elapsedMillis int64) SweepState {
	if !s.Running {
		return s
	}
	if elapsedMillis < 0 {
		elapsedMillis = 0
	}
	period := int64(s.PeriodMillis)
	s.Angle = int((elapsedMillis % period) * 360 / period)
	return s
}

// TickFraction positions the sweep at a fraction of the current cycle.
// Fractions outside [0, 1) wrap.
func (s SweepState) TickFraction(fraction float64) SweepState {
	if !s.Running {
		return s
	}
	a := int(fraction*360) % 360
	if a < 0 {
		a += 360
	}
	s.Angle = a
	return s
}
