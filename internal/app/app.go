package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"sonar.klederson.com/internal/bluetooth"
	"sonar.klederson.com/internal/clock"
	"sonar.klederson.com/internal/config"
	"sonar.klederson.com/internal/orientation"
	"sonar.klederson.com/internal/radar"
	"sonar.klederson.com/internal/sonar"
	"sonar.klederson.com/internal/ui"
)

const (
	historySize = 120
	periodStep  = 250
)

// Options wires the model to its inputs.
type Options struct {
	Settings config.Settings
	Source   orientation.Source // heading input; nil means no sensors
	Scanner  bluetooth.Scanner  // BLE points of interest; nil disables BLE
	Points   []*sonar.ScanPoint // fixed points of interest
	Clock    clock.Clock
	Logger   logrus.FieldLogger
}

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	dial    *sonar.Dial
	source  orientation.Source
	scanner bluetooth.Scanner
	store   *bluetooth.DeviceStore
	tracker *bluetooth.PointTracker
	static  []*sonar.ScanPoint
	history *HistoryRing
	clock   clock.Clock
	log     logrus.FieldLogger
	cancel  context.CancelFunc

	devicesDirty bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	width  int
	height int

	color       string
	showHeading bool
	cursor      int
	notice      string

	shared *shared

	// Last dial frame
	frame sonar.Frame
}

// New creates the model and starts the sweep.
func New(opts Options) (AppModel, error) {
	s := opts.Settings.Normalize()
	variant, err := sonar.ParseVariant(s.Variant)
	if err != nil {
		return AppModel{}, err
	}

	c := opts.Clock
	if c == nil {
		c = clock.Real{}
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	source := opts.Source
	if source == nil {
		source = orientation.None{}
	}

	dial := sonar.NewDial(sonar.DialConfig{
		Variant:          variant,
		PeriodMillis:     s.PeriodMillis,
		SensorsAvailable: source.Available(),
		Logger:           log,
	})
	dial.SetPoints(opts.Points)
	dial.Start(c.Now())

	sh := &shared{
		dial:    dial,
		source:  source,
		scanner: opts.Scanner,
		static:  append([]*sonar.ScanPoint(nil), opts.Points...),
		history: NewHistoryRing(historySize),
		clock:   c,
		log:     log.WithField("component", "app"),
	}
	if opts.Scanner != nil {
		sh.store = bluetooth.NewDeviceStore(c)
		sh.tracker = bluetooth.NewPointTracker(s.MaxRange, s.VisibilityMillis, s.BLEColor)
	}

	return AppModel{
		color:  s.Color,
		shared: sh,
		frame:  dial.Tick(c.Now()),
	}, nil
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.shared.scanner != nil {
		cmds = append(cmds, evictCmd())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.tick(time.Time(msg))
		return m, tickCmd()

	case EvictMsg:
		if m.shared.store != nil {
			if n := m.shared.store.Evict(config.DeviceTimeout); n > 0 {
				m.shared.log.WithField("evicted", n).Debug("devices evicted")
				m.shared.devicesDirty = true
			}
		}
		return m, evictCmd()

	case bluetooth.DeviceDiscoveredMsg:
		if m.shared.store != nil && m.frame.Running {
			m.shared.store.Upsert(msg.MAC, msg.Name, float64(msg.RSSI))
			m.shared.devicesDirty = true
		}
		return m, nil

	case SourceErrorMsg:
		m.shared.log.WithError(msg.Err).WithField("source", msg.Source).Error("source failed")
		m.notice = fmt.Sprintf("%s: %v", msg.Source, msg.Err)
		if msg.Source == m.shared.source.Name() {
			m.shared.dial.SetSensorsAvailable(false)
		}
		return m, nil
	}

	return m, nil
}

// tick advances the dial to now and records the heading.
func (m *AppModel) tick(now time.Time) {
	sh := m.shared
	if sh.devicesDirty {
		sh.devicesDirty = false
		m.syncDevicePoints()
	}

	m.frame = sh.dial.Tick(now)
	sh.history.Push(float64(m.frame.Heading))
	for _, id := range m.frame.Detections {
		sh.log.WithField("point", id).Trace("point detected")
	}
	if m.cursor >= len(m.frame.Points) {
		m.cursor = max(0, len(m.frame.Points)-1)
	}
}

// syncDevicePoints rebuilds the dial's point list from the fixed points
// and the tracked BLE devices.
func (m *AppModel) syncDevicePoints() {
	sh := m.shared
	ble, changed := sh.tracker.Sync(sh.store.Snapshot())
	if !changed {
		return
	}
	points := make([]*sonar.ScanPoint, 0, len(sh.static)+len(ble))
	points = append(points, sh.static...)
	points = append(points, ble...)
	sh.dial.SetPoints(points)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sh := m.shared
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.StopSources()
		return m, tea.Quit

	case "s", "S":
		if !sh.dial.Running() {
			sh.dial.Start(sh.clock.Now())
			sh.log.Info("sweep started")
		}

	case "p", "P":
		if sh.dial.Running() {
			sh.dial.Stop()
			sh.log.Info("sweep stopped")
		}

	case "+", "=":
		sh.dial.SetPeriod(sh.dial.Sweep().PeriodMillis + periodStep)

	case "-", "_":
		sh.dial.SetPeriod(sh.dial.Sweep().PeriodMillis - periodStep)

	case "h", "H":
		m.showHeading = !m.showHeading

	case "esc":
		m.showHeading = false

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.frame.Points)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.frame.Points) > 0 {
			m.cursor = len(m.frame.Points) - 1
		}
	}

	m.frame.Running = sh.dial.Running()
	return m, nil
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing sonar..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	dialW := m.width * 3 / 4
	if dialW < 30 {
		dialW = 30
	}
	listW := m.width - dialW
	if listW < 15 {
		listW = 15
		dialW = m.width - listW
	}

	sh := m.shared
	menuBar := ui.RenderMenuBar(m.width, m.frame.Variant.String(), sh.source.Name(), m.frame.Running)

	var mainPanel string
	if m.showHeading {
		mainPanel = ui.RenderHeadingPanel(m.frame, sh.source.Name(), dialW, bodyH, sh.history.Values())
	} else {
		innerW := max(dialW-4, 5)
		innerH := max(bodyH-4, 3)
		dialContent := radar.Render(innerW, innerH, m.frame, m.color)
		legend := radar.RenderLegend(innerW, m.color)
		mainPanel = ui.RenderDialPanel(dialW, bodyH, dialContent, legend)
	}

	pointList := ui.RenderPointList(m.frame.Points, listW, bodyH, m.cursor)
	statusBar := ui.RenderStatusBar(m.width, m.frame, sh.dial.Sweep().PeriodMillis, m.notice)

	return ui.ComposeLayout(menuBar, mainPanel, pointList, statusBar)
}

// Frame returns the last dial frame.
func (m AppModel) Frame() sonar.Frame { return m.frame }

// StartSources starts the heading source and the BLE scanner. Must be
// called before p.Run(). A heading source that fails to start leaves the
// dial without sensors.
func (m *AppModel) StartSources(sender bluetooth.Sender) error {
	sh := m.shared
	ctx, cancel := context.WithCancel(context.Background())
	sh.cancel = cancel

	if n, ok := sh.source.(orientation.FailureNotifier); ok && sender != nil {
		name := sh.source.Name()
		n.OnFailure(func(err error) {
			sender.Send(SourceErrorMsg{Source: name, Err: err})
		})
	}
	if err := sh.source.Start(ctx, sh.dial); err != nil {
		sh.dial.SetSensorsAvailable(false)
		return fmt.Errorf("start %s: %w", sh.source.Name(), err)
	}
	sh.dial.SetSensorsAvailable(sh.source.Available())
	sh.log.WithField("source", sh.source.Name()).Info("heading source started")

	if sh.scanner != nil {
		if err := sh.scanner.Start(sender); err != nil {
			return fmt.Errorf("start ble scanner: %w", err)
		}
	}
	return nil
}

// StopSources stops all inputs.
func (m *AppModel) StopSources() {
	sh := m.shared
	if sh.scanner != nil {
		sh.scanner.Stop()
	}
	sh.source.Stop()
	if sh.cancel != nil {
		sh.cancel()
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func evictCmd() tea.Cmd {
	return tea.Tick(config.EvictInterval, func(t time.Time) tea.Msg {
		return EvictMsg(t)
	})
}
