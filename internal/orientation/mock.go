package orientation

import (
	"context"
	"math"
	"math/rand"
	"time"

	"sonar.klederson.com/internal/clock"
)

// mockInterval matches a UI-rate sensor delivery.
const mockInterval = 60 * time.Millisecond

// MockSource fakes a magnetometer for demo mode: the heading wanders
// slowly, with jitter and the occasional spurious zero reading real
// sensors produce.
type MockSource struct {
	clock  clock.Clock
	rng    *rand.Rand
	cancel context.CancelFunc

	// Heading drift in radians per second and its amplitude.
	rate      float64
	amplitude float64
	base      float64
	glitch    float64 // probability of a zero reading
	jitter    float64 // radians
}

// NewMockSource creates a demo source.
func NewMockSource(c clock.Clock, seed int64) *MockSource {
	rng := rand.New(rand.NewSource(seed))
	return &MockSource{
		clock:     c,
		rng:       rng,
		rate:      0.15 + rng.Float64()*0.2,
		amplitude: math.Pi * (0.5 + rng.Float64()*0.5),
		base:      rng.Float64() * 2 * math.Pi,
		glitch:    0.02,
		jitter:    0.02,
	}
}

func (s *MockSource) Name() string     { return "demo" }
func (s *MockSource) Available() bool { return true }

// Start begins emitting readings.
func (s *MockSource) Start(ctx context.Context, sink Sink) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	ticker := s.clock.NewTicker(mockInterval)
	start := s.clock.Now()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C():
				sink.Offer(s.reading(now.Sub(start).Seconds()))
			}
		}
	}()
	return nil
}

func (s *MockSource) reading(t float64) Reading {
	if s.rng.Float64() < s.glitch {
		return Reading{}
	}
	az := s.base + s.amplitude*math.Sin(t*s.rate) + (s.rng.Float64()-0.5)*2*s.jitter
	return Reading{Azimuth: math.Remainder(az, 2*math.Pi)}
}

// Stop halts the source.
func (s *MockSource) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
