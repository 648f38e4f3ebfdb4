package bluetooth

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"
)

// Device is a BLE advertiser tracked as a point of interest on the dial.
type Device struct {
	MAC      string
	Name     string
	RSSI     float64 // smoothed, dBm
	LastSeen time.Time
	Angle    int     // degrees clockwise from north, stable per MAC
	Distance float64 // estimated distance in meters
}

// DisplayName returns the device name or "[unnamed]" if empty.
func (d *Device) DisplayName() string {
	if d.Name == "" {
		return "[unnamed]"
	}
	return d.Name
}

// DialDistance maps the estimated distance onto the dial, 0 at the
// center and 1 at the edge. Devices beyond maxRange land past the edge.
func (d *Device) DialDistance(maxRange float64) float64 {
	if maxRange <= 0 {
		return 1
	}
	return d.Distance / maxRange
}

// MacToAngle derives a consistent bearing from a MAC address using a hash.
// Returns whole degrees in [0, 360), clockwise from north.
func MacToAngle(mac string) int {
	h := sha256.Sum256([]byte(mac))
	val := binary.BigEndian.Uint32(h[:4])
	return int(uint64(val) * 360 >> 32)
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}
