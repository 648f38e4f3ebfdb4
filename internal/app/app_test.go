package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sonar.klederson.com/internal/bluetooth"
	"sonar.klederson.com/internal/clock"
	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/orientation"
	"sonar.klederson.com/internal/sonar"
)

var epoch = time.UnixMilli(1_700_000_000_000)

type fakeSource struct {
	mu       sync.Mutex
	sink     orientation.Sink
	startErr error
	stopped  bool
}

func (f *fakeSource) Start(_ context.Context, sink orientation.Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.sink = sink
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeSource) Available() bool { return true }
func (f *fakeSource) Name() string    { return "fake" }

type fakeScanner struct {
	started, stopped bool
}

func (f *fakeScanner) Start(bluetooth.Sender) error {
	f.started = true
	return nil
}

func (f *fakeScanner) Stop() { f.stopped = true }

func newModel(t *testing.T, opts Options) AppModel {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = clock.NewManual(epoch)
	}
	if opts.Settings.Variant == "" {
		opts.Settings = config.Default()
	}
	m, err := New(opts)
	require.NoError(t, err)
	return m
}

func update(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tickAt(ms int64) TickMsg {
	return TickMsg(epoch.Add(time.Duration(ms) * time.Millisecond))
}

func TestNewRejectsUnknownVariant(t *testing.T) {
	s := config.Default()
	s.Variant = "radar"
	_, err := New(Options{Settings: s})
	assert.Error(t, err)
}

func TestTickDetectsStaticPoint(t *testing.T) {
	p := sonar.NewScanPoint(sonar.PointSpec{ID: "p", Angle: 180, Distance: 0.5})
	m := newModel(t, Options{Source: &fakeSource{}, Points: []*sonar.ScanPoint{p}})
	assert.True(t, m.Frame().Running, "sweep starts with the model")

	var detectedAt int64
	for ms := int64(50); ms <= 1000; ms += 50 {
		m = update(t, m, tickAt(ms))
		if len(m.Frame().Detections) > 0 && detectedAt == 0 {
			detectedAt = ms
		}
	}
	assert.Equal(t, int64(650), detectedAt)
	assert.Equal(t, 1, m.Frame().VisibleCount())
	assert.Equal(t, 20, m.shared.history.Len())
}

func TestNoSourceMeansNoDetections(t *testing.T) {
	p := sonar.NewScanPoint(sonar.PointSpec{Angle: 90, Distance: 0.5})
	m := newModel(t, Options{Points: []*sonar.ScanPoint{p}})
	for ms := int64(50); ms <= 2000; ms += 50 {
		m = update(t, m, tickAt(ms))
		assert.Empty(t, m.Frame().Detections)
	}
	assert.False(t, m.Frame().Sensors)
}

func TestSourceReadingsTurnTheDial(t *testing.T) {
	src := &fakeSource{}
	m := newModel(t, Options{Source: src})
	require.NoError(t, m.StartSources(nil))

	for i := 0; i < 3; i++ {
		require.True(t, src.sink.Offer(orientation.Reading{Azimuth: -0.5}))
	}
	m = update(t, m, tickAt(30))
	assert.Equal(t, sonar.AzimuthDegrees(-0.5), m.Frame().Target)
	assert.NotZero(t, m.Frame().Heading)

	m.StopSources()
	assert.True(t, src.stopped)
}

func TestStartSourcesFailure(t *testing.T) {
	src := &fakeSource{startErr: errors.New("no port")}
	m := newModel(t, Options{Source: src})
	err := m.StartSources(nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "fake")
	assert.False(t, m.shared.dial.SensorsAvailable())
}

func TestKeysControlTheSweep(t *testing.T) {
	m := newModel(t, Options{Source: &fakeSource{}})

	m = update(t, m, key("p"))
	assert.False(t, m.Frame().Running)
	m = update(t, m, tickAt(100))
	assert.False(t, m.Frame().Running)

	m = update(t, m, key("s"))
	assert.True(t, m.Frame().Running)

	m = update(t, m, key("+"))
	assert.Equal(t, config.DefaultPeriodMillis+periodStep, m.shared.dial.Sweep().PeriodMillis)
	for i := 0; i < 10; i++ {
		m = update(t, m, key("-"))
	}
	assert.Equal(t, config.MinPeriodMillis, m.shared.dial.Sweep().PeriodMillis)

	m = update(t, m, key("h"))
	assert.True(t, m.showHeading)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHeading)
}

func TestQuitStopsSources(t *testing.T) {
	src := &fakeSource{}
	sc := &fakeScanner{}
	m := newModel(t, Options{Source: src, Scanner: sc})
	require.NoError(t, m.StartSources(nil))
	assert.True(t, sc.started)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, src.stopped)
	assert.True(t, sc.stopped)
}

func TestDevicesBecomePoints(t *testing.T) {
	static := sonar.NewScanPoint(sonar.PointSpec{ID: "fixed", Angle: 10, Distance: 0.2})
	m := newModel(t, Options{Source: &fakeSource{}, Scanner: &fakeScanner{}, Points: []*sonar.ScanPoint{static}})

	m = update(t, m, bluetooth.DeviceDiscoveredMsg{MAC: "AA:BB:CC:DD:EE:FF", Name: "Tile", RSSI: -59})
	m = update(t, m, tickAt(40))

	pts := m.Frame().Points
	require.Len(t, pts, 2)
	assert.Equal(t, "fixed", pts[0].ID)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", pts[1].ID)
	assert.Equal(t, "Tile", pts[1].Label)
	assert.InDelta(t, 1/config.MaxRange, pts[1].Distance, 1e-9)
}

func TestDevicePointsUseBLEColor(t *testing.T) {
	s := config.Default()
	s.BLEColor = "#3366FF"
	m := newModel(t, Options{Settings: s, Source: &fakeSource{}, Scanner: &fakeScanner{}})

	m = update(t, m, bluetooth.DeviceDiscoveredMsg{MAC: "AA:BB:CC:DD:EE:FF", RSSI: -59})
	m = update(t, m, tickAt(40))

	pts := m.Frame().Points
	require.Len(t, pts, 1)
	assert.Equal(t, "#3366FF", pts[0].Color)
}

func TestDevicesIgnoredWhileStopped(t *testing.T) {
	m := newModel(t, Options{Source: &fakeSource{}, Scanner: &fakeScanner{}})
	m = update(t, m, key("p"))
	m = update(t, m, bluetooth.DeviceDiscoveredMsg{MAC: "AA", RSSI: -60})
	m = update(t, m, tickAt(40))
	assert.Empty(t, m.Frame().Points)
}

func TestEvictDropsQuietDevices(t *testing.T) {
	c := clock.NewManual(epoch)
	m := newModel(t, Options{Source: &fakeSource{}, Scanner: &fakeScanner{}, Clock: c})
	m = update(t, m, bluetooth.DeviceDiscoveredMsg{MAC: "AA", RSSI: -60})
	m = update(t, m, tickAt(40))
	require.Len(t, m.Frame().Points, 1)

	c.Advance(config.DeviceTimeout + time.Second)
	m = update(t, m, EvictMsg(c.Now()))
	m = update(t, m, tickAt(80))
	assert.Empty(t, m.Frame().Points)
}

func TestSourceErrorDisablesSensors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := newModel(t, Options{Source: &fakeSource{}, Logger: logger})
	m = update(t, m, SourceErrorMsg{Source: "fake", Err: errors.New("unplugged")})
	m = update(t, m, tickAt(40))

	assert.False(t, m.Frame().Sensors)
	assert.Contains(t, m.notice, "unplugged")
	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "source failed")
}

func TestView(t *testing.T) {
	m := newModel(t, Options{Source: &fakeSource{}})
	assert.Equal(t, "Initializing sonar...", m.View())

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, tickAt(40))
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "POINTS")
	assert.Contains(t, out, "SWEEPING")

	m = update(t, m, key("h"))
	assert.Contains(t, ansi.Strip(m.View()), "HEADING")
}

func TestCursorFollowsPoints(t *testing.T) {
	pts := []*sonar.ScanPoint{
		sonar.NewScanPoint(sonar.PointSpec{Angle: 1}),
		sonar.NewScanPoint(sonar.PointSpec{Angle: 2}),
	}
	m := newModel(t, Options{Points: pts})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = update(t, m, key("k"))
	assert.Equal(t, 0, m.cursor)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 1, m.cursor)
}

func TestHistoryRing(t *testing.T) {
	r := NewHistoryRing(3)
	assert.Nil(t, r.Values())
	assert.Zero(t, r.Last())
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	assert.Equal(t, []float64{2, 3, 4}, r.Values())
	assert.Equal(t, 4.0, r.Last())
	assert.Equal(t, 3, r.Len())
}

func TestStaticPoints(t *testing.T) {
	s := config.Default()
	s.Points = []config.PointSetting{
		{Angle: 45, Distance: 0.5, Label: "a"},
		{Angle: 90, Distance: 0.7, VisibilityMillis: -1},
	}
	pts := StaticPoints(s, rand.New(rand.NewSource(1)))
	require.Len(t, pts, 2)
	assert.Equal(t, s.VisibilityMillis, pts[0].VisibilityMillis())
	assert.True(t, pts[1].Infinite())

	s.Points = nil
	assert.Empty(t, StaticPoints(s, rand.New(rand.NewSource(1))))

	s.Demo = true
	pts = StaticPoints(s, rand.New(rand.NewSource(1)))
	require.Len(t, pts, config.DemoPointCount)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.Distance(), 0.0)
		assert.Less(t, p.Distance(), 1.0)
		assert.Less(t, p.Angle(), 360)
	}
}
