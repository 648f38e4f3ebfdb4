package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar.klederson.com/internal/bluetooth"
	"sonar.klederson.com/internal/clock"
	"sonar.klederson.com/internal/config"
)

func parse(t *testing.T, args ...string) config.Settings {
	t.Helper()
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags(args))
	s, err := loadSettings(cmd, f)
	require.NoError(t, err)
	return s
}

func TestLoadSettingsDefaults(t *testing.T) {
	assert.Equal(t, config.Default().Normalize(), parse(t))
}

func TestLoadSettingsFlags(t *testing.T) {
	s := parse(t, "--variant=compass", "--period=100", "--demo", "--points=3", "--visibility=-1", "--ble", "--range=10")
	assert.Equal(t, "compass", s.Variant)
	assert.Equal(t, config.MinPeriodMillis, s.PeriodMillis)
	assert.True(t, s.Demo)
	assert.Equal(t, 3, s.RandomPoints)
	assert.Equal(t, int64(-1), s.VisibilityMillis)
	assert.True(t, s.BLE)
	assert.Equal(t, 10.0, s.MaxRange)

	s = parse(t, "--ble-color=#3366FF")
	assert.Equal(t, "#3366FF", s.BLEColor)
}

func TestAdapterFlagHelp(t *testing.T) {
	fl := newRootCmd(&flags{}).Flags().Lookup("adapter")
	require.NotNil(t, fl)
	assert.Contains(t, fl.Usage, "default adapter")
}

func TestLoadSettingsLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sonar.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"variant":"plain","period_millis":2000,"color":"#FF0000"}`), 0o644))
	t.Setenv("SONAR_PERIOD_MILLIS", "3000")

	s := parse(t, "--config", path)
	assert.Equal(t, "plain", s.Variant)
	assert.Equal(t, 3000, s.PeriodMillis, "environment beats the file")
	assert.Equal(t, "#FF0000", s.Color)

	s = parse(t, "--config", path, "--period", "4000", "--variant", "compass")
	assert.Equal(t, 4000, s.PeriodMillis, "flags beat the environment")
	assert.Equal(t, "compass", s.Variant)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	f := &flags{}
	cmd := newRootCmd(f)
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.json")}))
	_, err := loadSettings(cmd, f)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSources(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := clock.NewManual(time.Unix(0, 0))

	s := config.Default()
	src, sc := sources(s, c, logger)
	assert.Equal(t, "none", src.Name())
	assert.False(t, src.Available())
	assert.Nil(t, sc)

	s.Demo = true
	src, _ = sources(s, c, logger)
	assert.Equal(t, "demo", src.Name())

	s.SerialPort = "/dev/ttyUSB0"
	s.BLE = true
	src, sc = sources(s, c, logger)
	assert.Equal(t, "serial:/dev/ttyUSB0", src.Name())
	assert.IsType(t, &bluetooth.MockScanner{}, sc)

	s.Demo = false
	_, sc = sources(s, c, logger)
	assert.IsType(t, &bluetooth.BLEScanner{}, sc)
}
