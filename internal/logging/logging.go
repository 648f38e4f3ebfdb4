// Package logging sets up the structured logger. The terminal belongs to the
// UI, so log output goes to a file or nowhere.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to path. An empty path discards output. The
// returned closer releases the file and is never nil.
func New(path string, debug bool) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.TraceLevel)
	}

	if path == "" {
		log.SetOutput(io.Discard)
		return log, nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open log file %s: %w", path, err)
	}
	log.SetOutput(f)
	return log, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
