package orientation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// ErrPortClosed is reported when the serial device stops delivering data,
// usually because it was unplugged.
var ErrPortClosed = errors.New("serial port closed")

// PortOpener opens the serial device. Tests replace it with an in-memory
// reader.
type PortOpener func(path string, baud int) (io.ReadCloser, error)

// OpenSerialPort opens a real serial port in 8N1 mode.
func OpenSerialPort(path string, baud int) (io.ReadCloser, error) {
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return port, nil
}

// SerialSource reads IMU records from a serial port. See LineParser for the
// line protocol.
type SerialSource struct {
	path string
	baud int
	open PortOpener
	log  logrus.FieldLogger

	mu        sync.Mutex
	port      io.ReadCloser
	cancel    context.CancelFunc
	done      chan struct{}
	malformed int
	onFailure func(error)
}

// NewSerialSource creates a source for the serial device at path.
func NewSerialSource(path string, baud int, log logrus.FieldLogger) *SerialSource {
	return &SerialSource{
		path: path,
		baud: baud,
		open: OpenSerialPort,
		log:  log.WithField("component", "serial"),
	}
}

// WithOpener replaces how the port is opened.
func (s *SerialSource) WithOpener(open PortOpener) *SerialSource {
	s.open = open
	return s
}

func (s *SerialSource) Name() string { return "serial:" + s.path }

// Available reports whether the port is open.
func (s *SerialSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port != nil
}

// Malformed returns the number of lines that could not be parsed.
func (s *SerialSource) Malformed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.malformed
}

// OnFailure registers fn to be called once if reading stops before Stop.
func (s *SerialSource) OnFailure(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFailure = fn
}

// Start opens the port and begins reading in a goroutine.
func (s *SerialSource) Start(ctx context.Context, sink Sink) error {
	port, err := s.open(s.path, s.baud)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.port = port
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.log.WithField("baud", s.baud).Info("serial orientation source started")

	go s.loop(ctx, port, sink)
	return nil
}

func (s *SerialSource) loop(ctx context.Context, port io.Reader, sink Sink) {
	defer close(s.done)

	var parser LineParser
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		r, ok, err := parser.Parse(scanner.Text())
		if err != nil {
			s.mu.Lock()
			s.malformed++
			s.mu.Unlock()
			s.log.WithError(err).Debug("skipping serial line")
			continue
		}
		if ok {
			sink.Offer(r)
		}
	}
	if ctx.Err() != nil {
		return
	}

	err := scanner.Err()
	if err == nil {
		err = ErrPortClosed
	}
	s.log.WithError(err).Warn("serial read failed")

	s.mu.Lock()
	fn := s.onFailure
	s.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Stop closes the port, which unblocks the reader, and waits for it to exit.
func (s *SerialSource) Stop() {
	s.mu.Lock()
	port, cancel, done := s.port, s.cancel, s.done
	s.port = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if port != nil {
		if err := port.Close(); err != nil {
			s.log.WithError(err).Warn("closing serial port")
		}
	}
	if done != nil {
		<-done
	}
}
