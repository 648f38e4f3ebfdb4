package config

import (
	"math"
	"time"
)

const (
	// Heading filter
	MinimalDiff         = 1  // readings closer than this to the heading are noise (degrees)
	SensorDiffTolerance = 15 // a 0 reading further than this from the heading is a glitch
	SmoothingBatch      = 3  // readings averaged per target update

	// Heading easing
	FastRotateThreshold = 15 // use the fast step at or beyond this distance (degrees)
	RotateStep          = 1  // degrees per tick near the target
	FastRotateStep      = 4  // degrees per tick far from the target

	// Sweep
	MinPeriodMillis     = 250
	DefaultPeriodMillis = 1250
	MaxPeriodMillis     = math.MaxInt32
	MaxSweepStep        = 30   // largest sweep advance checked against points in one go
	SweepTrailDeg       = 60.0 // sweep trail angle in degrees

	// Points
	DefaultVisibilityMillis = 1250
	DemoPointCount          = 10

	// Orientation input
	SampleQueueSize = 64 // readings buffered between ticks

	// Radar display
	AspectRatio = 0.5 // Terminal char aspect correction (chars are ~2:1 tall)
	RingCount   = 4   // Number of concentric rings
	TargetFPS   = 30  // Target frames per second

	// RSSI to distance estimation for BLE points
	MeasuredPower  = -59.0 // RSSI at 1 meter (dBm)
	PathLossExp    = 2.5   // Path loss exponent (N)
	MaxRange       = 30.0  // Distance in meters mapped to the dial edge
	SmoothingAlpha = 0.3   // EMA smoothing factor (30% new, 70% old)
	DistanceJitter = 0.05  // dial-relative distance change that moves a point

	// Device management
	DeviceTimeout = 30 * time.Second // Remove devices not seen for this long
	EvictInterval = 5 * time.Second  // How often to run eviction

	// Serial IMU
	DefaultBaudRate = 115200

	// App
	AppName    = "SONAR"
	AppVersion = "1.0"
)

// TickInterval is the time between animation frames.
const TickInterval = time.Second / TargetFPS
