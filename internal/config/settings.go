package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PointSetting is a point of interest as written in a settings file.
type PointSetting struct {
	Angle            int     `json:"angle"`
	Distance         float64 `json:"distance"`
	Color            string  `json:"color,omitempty"`
	VisibilityMillis int64   `json:"visibility_millis,omitempty"`
	Label            string  `json:"label,omitempty"`
}

// Settings are the user-tunable options. Fixed tuning lives in the package
// constants.
type Settings struct {
	Variant          string         `json:"variant"`
	PeriodMillis     int            `json:"period_millis"`
	VisibilityMillis int64          `json:"visibility_millis"`
	Color            string         `json:"color"`
	Demo             bool           `json:"demo"`
	Points           []PointSetting `json:"points,omitempty"`
	RandomPoints     int            `json:"random_points"`

	SerialPort string `json:"serial_port,omitempty"`
	BaudRate   int    `json:"baud_rate,omitempty"`

	BLE      bool    `json:"ble"`
	Adapter  string  `json:"adapter"`
	MaxRange float64 `json:"max_range"`
	BLEColor string  `json:"ble_color,omitempty"` // empty uses Color

	LogFile string `json:"log_file,omitempty"`
	Debug   bool   `json:"debug"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Variant:          "sonar",
		PeriodMillis:     DefaultPeriodMillis,
		VisibilityMillis: DefaultVisibilityMillis,
		Color:            "#03CC02",
		RandomPoints:     DemoPointCount,
		BaudRate:         DefaultBaudRate,
		Adapter:          "hci0",
		MaxRange:         MaxRange,
	}
}

// Load reads settings from a JSON file on top of the defaults, then applies
// SONAR_* environment overrides. An empty path skips the file.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("read settings %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	if err := applyEnv(&s, os.LookupEnv); err != nil {
		return s, err
	}
	return s.Normalize(), nil
}

func applyEnv(s *Settings, lookup func(string) (string, bool)) error {
	if v, ok := lookup("SONAR_VARIANT"); ok {
		s.Variant = v
	}
	if v, ok := lookup("SONAR_PERIOD_MILLIS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SONAR_PERIOD_MILLIS: %w", err)
		}
		s.PeriodMillis = n
	}
	if v, ok := lookup("SONAR_VISIBILITY_MILLIS"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SONAR_VISIBILITY_MILLIS: %w", err)
		}
		s.VisibilityMillis = n
	}
	if v, ok := lookup("SONAR_SERIAL_PORT"); ok {
		s.SerialPort = v
	}
	if v, ok := lookup("SONAR_BAUD_RATE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SONAR_BAUD_RATE: %w", err)
		}
		s.BaudRate = n
	}
	if v, ok := lookup("SONAR_ADAPTER"); ok {
		s.Adapter = v
	}
	if v, ok := lookup("SONAR_BLE_COLOR"); ok {
		s.BLEColor = v
	}
	if v, ok := lookup("SONAR_LOG_FILE"); ok {
		s.LogFile = v
	}
	if v, ok := lookup("SONAR_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SONAR_DEBUG: %w", err)
		}
		s.Debug = b
	}
	return nil
}

// Normalize clamps out of range values instead of rejecting them.
func (s Settings) Normalize() Settings {
	s.Variant = strings.ToLower(strings.TrimSpace(s.Variant))
	if s.Variant == "" {
		s.Variant = "sonar"
	}
	if s.PeriodMillis < MinPeriodMillis {
		s.PeriodMillis = MinPeriodMillis
	}
	if s.VisibilityMillis == 0 || s.VisibilityMillis < -1 {
		s.VisibilityMillis = DefaultVisibilityMillis
	}
	if s.RandomPoints < 0 {
		s.RandomPoints = 0
	}
	if s.BaudRate <= 0 {
		s.BaudRate = DefaultBaudRate
	}
	if s.MaxRange <= 0 {
		s.MaxRange = MaxRange
	}
	if s.Adapter == "" {
		s.Adapter = "hci0"
	}
	return s
}
