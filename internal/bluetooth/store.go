package bluetooth

import (
	"sort"
	"sync"
	"time"

	"sonar.klederson.com/internal/clock"
	"sonar.klederson.com/internal/config"
)

// DeviceStore is a thread-safe store for discovered devices.
type DeviceStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	devices map[string]*Device
}

// NewDeviceStore creates a new empty DeviceStore. A nil clock uses wall time.
func NewDeviceStore(c clock.Clock) *DeviceStore {
	if c == nil {
		c = clock.Real{}
	}
	return &DeviceStore{
		clock:   c,
		devices: make(map[string]*Device),
	}
}

// Upsert adds or updates a device. If the device already exists, RSSI is
// smoothed using EMA and the angle is preserved for position consistency.
func (s *DeviceStore) Upsert(mac, name string, rssi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if existing, ok := s.devices[mac]; ok {
		existing.RSSI = existing.RSSI*(1-config.SmoothingAlpha) + rssi*config.SmoothingAlpha
		existing.Distance = RSSIToDistance(existing.RSSI, config.MeasuredPower, config.PathLossExp)
		existing.LastSeen = now
		if name != "" {
			existing.Name = name
		}
		return
	}

	s.devices[mac] = &Device{
		MAC:      mac,
		Name:     name,
		RSSI:     rssi,
		LastSeen: now,
		Angle:    MacToAngle(mac),
		Distance: RSSIToDistance(rssi, config.MeasuredPower, config.PathLossExp),
	}
}

// Evict removes devices not seen within the timeout duration.
// Returns the number of evicted devices.
func (s *DeviceStore) Evict(timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-timeout)
	count := 0
	for mac, dev := range s.devices {
		if dev.LastSeen.Before(cutoff) {
			delete(s.devices, mac)
			count++
		}
	}
	return count
}

// Snapshot returns a sorted copy of all devices (strongest RSSI first).
func (s *DeviceStore) Snapshot() []*Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		cp := *d
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].RSSI != result[j].RSSI {
			return result[i].RSSI > result[j].RSSI
		}
		return result[i].MAC < result[j].MAC
	})
	return result
}

// Count returns the total number of tracked devices.
func (s *DeviceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}
