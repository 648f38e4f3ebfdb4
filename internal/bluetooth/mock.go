package bluetooth

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"sonar.klederson.com/internal/clock"
)

var mockDeviceNames = []string{
	"iPhone 15 Pro",
	"Galaxy S24 Ultra",
	"Pixel 9 Pro",
	"AirPods Pro",
	"MacBook Air",
	"Apple Watch",
	"Fitbit Charge 6",
	"Tile Tracker",
	"Tesla Model 3",
	"iPad Pro",
	"OnePlus Buds 3",
	"Ruuvi Tag",
	"Oura Ring",
	"Sonos Roam",
}

type mockDevice struct {
	mac       string
	name      string
	baseRSSI  float64
	phase     float64
	amplitude float64
	active    bool
}

// MockScanner generates fake advertisers for demo mode.
type MockScanner struct {
	clock   clock.Clock
	rnd     *rand.Rand
	devices []mockDevice
	sender  Sender

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMockScanner creates a mock scanner with count random fake devices.
func NewMockScanner(c clock.Clock, seed int64, count int) *MockScanner {
	if c == nil {
		c = clock.Real{}
	}
	rnd := rand.New(rand.NewSource(seed))
	if count <= 0 || count > len(mockDeviceNames) {
		count = len(mockDeviceNames)
	}

	perm := rnd.Perm(len(mockDeviceNames))
	devices := make([]mockDevice, count)
	for i := range devices {
		devices[i] = mockDevice{
			mac:       randomMAC(rnd),
			name:      mockDeviceNames[perm[i]],
			baseRSSI:  -40 - rnd.Float64()*40, // -40 to -80 dBm
			phase:     rnd.Float64() * 2 * math.Pi,
			amplitude: 3 + rnd.Float64()*8, // 3-11 dBm fluctuation
			active:    true,
		}
	}

	return &MockScanner{clock: c, rnd: rnd, devices: devices}
}

// Start begins the mock scanner.
func (s *MockScanner) Start(sender Sender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	s.sender = sender
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.clock.NewTicker(200*time.Millisecond))
	return nil
}

func (s *MockScanner) loop(ctx context.Context, ticker clock.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			t += 0.2
			s.emitDevices(t)
		}
	}
}

func (s *MockScanner) emitDevices(t float64) {
	for i := range s.devices {
		d := &s.devices[i]

		// Randomly toggle device presence (appear/disappear)
		if s.rnd.Float64() < 0.005 {
			d.active = !d.active
		}
		if !d.active {
			continue
		}

		// Sinusoidal RSSI fluctuation + noise
		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.5+d.phase) + (s.rnd.Float64()-0.5)*4

		name := d.name
		// Some advertisements carry no name
		if s.rnd.Float64() < 0.05 {
			name = ""
		}

		if s.sender != nil {
			s.sender.Send(DeviceDiscoveredMsg{
				MAC:  d.mac,
				Name: name,
				RSSI: int16(rssi),
			})
		}
	}
}

// Stop halts the mock scanner and waits for its loop to exit.
func (s *MockScanner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func randomMAC(rnd *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rnd.Intn(256))
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
