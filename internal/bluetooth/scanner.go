package bluetooth

import (
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// DeviceDiscoveredMsg is sent to the program when an advertisement is seen.
type DeviceDiscoveredMsg struct {
	MAC  string
	Name string
	RSSI int16
}

// Sender delivers messages to the running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Scanner produces DeviceDiscoveredMsg values until stopped.
type Scanner interface {
	Start(s Sender) error
	Stop()
}

// BLEScanner handles Bluetooth Low Energy scanning.
type BLEScanner struct {
	adapter *bluetooth.Adapter
	name    string
	log     logrus.FieldLogger
	sender  Sender
	running atomic.Bool
}

// NewBLEScanner creates a scanner on the default adapter. name is only used
// for reporting.
func NewBLEScanner(name string, log logrus.FieldLogger) *BLEScanner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BLEScanner{
		adapter: bluetooth.DefaultAdapter,
		name:    name,
		log:     log.WithField("component", "ble"),
	}
}

// Start begins BLE scanning in a goroutine. Discovered devices are sent
// as tea messages via s.Send().
func (s *BLEScanner) Start(sender Sender) error {
	s.sender = sender

	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter %s: %w (try running with sudo or setcap cap_net_admin+ep)", s.name, err)
	}

	s.running.Store(true)
	s.log.WithField("adapter", s.name).Info("ble scan started")
	go func() {
		err := s.adapter.Scan(func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !s.running.Load() {
				return
			}

			mac := result.Address.String()
			name := result.LocalName()

			// Fallback: identify device by manufacturer data
			if name == "" {
				mfrs := result.ManufacturerData()
				if len(mfrs) > 0 {
					name = ManufacturerLabel(mfrs[0].CompanyID, mac)
				}
			}

			if s.sender != nil {
				s.sender.Send(DeviceDiscoveredMsg{
					MAC:  mac,
					Name: name,
					RSSI: result.RSSI,
				})
			}
		})
		if err != nil {
			s.log.WithError(err).Warn("ble scan ended")
		}
	}()

	return nil
}

// Stop halts the BLE scanner.
func (s *BLEScanner) Stop() {
	if !s.running.Swap(false) {
		return
	}
	if err := s.adapter.StopScan(); err != nil {
		s.log.WithError(err).Debug("stop scan")
	}
}
