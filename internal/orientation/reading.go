package orientation

import "context"

// Reading is one orientation estimate. Angles are radians.
type Reading struct {
	Azimuth float64
	Pitch   float64
	Roll    float64
}

// Sink receives readings. Offer must not block.
type Sink interface {
	Offer(Reading) bool
}

// Source produces readings on its own goroutine until stopped.
type Source interface {
	// Start begins delivering readings to sink. It returns once the source
	// is running.
	Start(ctx context.Context, sink Sink) error
	// Stop halts delivery.
	Stop()
	// Available reports whether the source can produce readings at all.
	Available() bool
	// Name identifies the source in logs and the status bar.
	Name() string
}

// None is a source for hosts without orientation sensors.
type None struct{}

func (None) Start(context.Context, Sink) error { return nil }
func (None) Stop()                             {}
func (None) Available() bool                   { return false }
func (None) Name() string                      { return "none" }

// FailureNotifier is implemented by sources that can stop on their own after
// a successful Start.
type FailureNotifier interface {
	OnFailure(fn func(error))
}
