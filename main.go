package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sonar.klederson.com/internal/app"
	"sonar.klederson.com/internal/bluetooth"
	"sonar.klederson.com/internal/clock"
	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/logging"
	"sonar.klederson.com/internal/orientation"
)

type flags struct {
	config     string
	demo       bool
	variant    string
	period     int
	visibility int64
	points     int
	serial     string
	baud       int
	ble        bool
	adapter    string
	maxRange   float64
	bleColor   string
	logFile    string
	debug      bool
}

func main() {
	if err := newRootCmd(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *flags) *cobra.Command {
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "sonar",
		Short: "Sonar - terminal orientation dial with a rotating sweep",
		Long: `Sonar draws a circular dial in the terminal that turns with the heading
reported by an orientation sensor. A sweep line rotates around the dial and
lights up points of interest as it passes them; each point then fades out
until the sweep comes around again.

Headings come from an IMU on a serial port (--serial) or from a simulated
sensor (--demo). Points come from the settings file, from random demo points,
or from nearby Bluetooth LE devices (--ble, needs sudo or CAP_NET_ADMIN).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, f)
			if err != nil {
				return err
			}
			return run(s)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "JSON settings file")
	fl.BoolVar(&f.demo, "demo", false, "Simulate the orientation sensor and scatter random points")
	fl.StringVar(&f.variant, "variant", d.Variant, "Dial variant: sonar, plain or compass")
	fl.IntVar(&f.period, "period", d.PeriodMillis, "Sweep period in milliseconds")
	fl.Int64Var(&f.visibility, "visibility", d.VisibilityMillis, "Point fade time in milliseconds, -1 keeps points visible")
	fl.IntVar(&f.points, "points", d.RandomPoints, "Number of random points in demo mode")
	fl.StringVar(&f.serial, "serial", "", "Serial port of the IMU, e.g. /dev/ttyUSB0")
	fl.IntVar(&f.baud, "baud", d.BaudRate, "Serial baud rate")
	fl.BoolVar(&f.ble, "ble", false, "Show nearby Bluetooth LE devices as points")
	fl.StringVar(&f.adapter, "adapter", d.Adapter, "Bluetooth adapter name shown in logs (scanning uses the default adapter)")
	fl.StringVar(&f.bleColor, "ble-color", d.BLEColor, "Color of BLE device points, empty uses the dial color")
	fl.Float64Var(&f.maxRange, "range", d.MaxRange, "Distance in meters at the dial edge for BLE points")
	fl.StringVar(&f.logFile, "log-file", "", "Write logs to this file")
	fl.BoolVar(&f.debug, "debug", false, "Verbose logging")

	return cmd
}

// loadSettings layers the settings file and environment under the flags the
// user actually set.
func loadSettings(cmd *cobra.Command, f *flags) (config.Settings, error) {
	s, err := config.Load(f.config)
	if err != nil {
		return s, err
	}

	fl := cmd.Flags()
	if fl.Changed("demo") {
		s.Demo = f.demo
	}
	if fl.Changed("variant") {
		s.Variant = f.variant
	}
	if fl.Changed("period") {
		s.PeriodMillis = f.period
	}
	if fl.Changed("visibility") {
		s.VisibilityMillis = f.visibility
	}
	if fl.Changed("points") {
		s.RandomPoints = f.points
	}
	if fl.Changed("serial") {
		s.SerialPort = f.serial
	}
	if fl.Changed("baud") {
		s.BaudRate = f.baud
	}
	if fl.Changed("ble") {
		s.BLE = f.ble
	}
	if fl.Changed("adapter") {
		s.Adapter = f.adapter
	}
	if fl.Changed("ble-color") {
		s.BLEColor = f.bleColor
	}
	if fl.Changed("range") {
		s.MaxRange = f.maxRange
	}
	if fl.Changed("log-file") {
		s.LogFile = f.logFile
	}
	if fl.Changed("debug") {
		s.Debug = f.debug
	}
	return s.Normalize(), nil
}

// sources picks the heading source and BLE scanner for s.
func sources(s config.Settings, c clock.Clock, log logrus.FieldLogger) (orientation.Source, bluetooth.Scanner) {
	var src orientation.Source = orientation.None{}
	switch {
	case s.SerialPort != "":
		src = orientation.NewSerialSource(s.SerialPort, s.BaudRate, log)
	case s.Demo:
		src = orientation.NewMockSource(c, time.Now().UnixNano())
	}

	var scanner bluetooth.Scanner
	switch {
	case s.BLE && s.Demo:
		scanner = bluetooth.NewMockScanner(c, time.Now().UnixNano(), 0)
	case s.BLE:
		scanner = bluetooth.NewBLEScanner(s.Adapter, log)
	}
	return src, scanner
}

func run(s config.Settings) error {
	log, closer, err := logging.New(s.LogFile, s.Debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	c := clock.Real{}
	src, scanner := sources(s, c, log)
	log.WithFields(logrus.Fields{
		"variant": s.Variant,
		"period":  s.PeriodMillis,
		"source":  src.Name(),
		"ble":     scanner != nil,
	}).Info("starting")

	model, err := app.New(app.Options{
		Settings: s,
		Source:   src,
		Scanner:  scanner,
		Points:   app.StaticPoints(s, rand.New(rand.NewSource(time.Now().UnixNano()))),
		Clock:    c,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithFPS(config.TargetFPS),
	)

	// Start inputs with reference to the tea program
	if err := model.StartSources(p); err != nil {
		log.WithError(err).Error("start sources")
		fmt.Fprintf(os.Stderr, "\nError: %v\n\n", err)
		if s.BLE && !s.Demo {
			fmt.Fprintln(os.Stderr, "Bluetooth scanning requires elevated permissions.")
			fmt.Fprintln(os.Stderr, "Try one of:")
			fmt.Fprintln(os.Stderr, "  sudo ./sonar --ble")
			fmt.Fprintln(os.Stderr, "  sudo setcap cap_net_admin+ep ./sonar")
		}
		fmt.Fprintln(os.Stderr, "  ./sonar --demo    (demo mode, no hardware needed)")
		model.StopSources()
		return err
	}
	defer model.StopSources()

	_, err = p.Run()
	return err
}
