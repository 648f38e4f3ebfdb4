package sonar

import "sonar.klederson.com/internal/config"

// AngleState holds the displayed heading and the heading it is easing
// toward. Both are kept in (-179, 180].
type AngleState struct {
	Current int
	Target  int
}

// WithTarget returns a copy of s easing toward target.
func (s AngleState) WithTarget(target int) AngleState {
	s.Target = Normalize(target)
	return s
}

// Ease advances Current one step toward Target. Far from the target the step
// is config.FastRotateStep, close to it config.RotateStep, so the dial
// catches up quickly without oscillating around the target.
func (s AngleState) Ease() AngleState {
	if s.Current == s.Target {
		return s
	}

	diff := SignedDiff(s.Current, s.Target)
	step := config.RotateStep
	if abs(diff) >= config.FastRotateThreshold {
		step = config.FastRotateStep
	}
	if diff < 0 {
		step = -step
	}

	s.Current = Normalize(s.Current + step)
	return s
}

// Settled reports whether Current has reached Target.
func (s AngleState) Settled() bool {
	return s.Current == s.Target
}

// Reset returns s with the displayed heading back at north. The target is
// left alone so easing resumes from north on the next reading.
func (s AngleState) Reset() AngleState {
	s.Current = 0
	return s
}
