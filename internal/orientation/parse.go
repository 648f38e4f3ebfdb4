package orientation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Record types of the serial line protocol.
const (
	RecordOrientation   = "O" // O,<azimuth>,<pitch>,<roll> in radians
	RecordAccelerometer = "A" // A,<x>,<y>,<z>
	RecordMagnetometer  = "M" // M,<x>,<y>,<z>
)

// ErrMalformed is returned for lines that do not follow the protocol.
var ErrMalformed = errors.New("malformed orientation record")

// LineParser turns protocol lines into readings. Accelerometer and
// magnetometer records are remembered and fused once both are known.
type LineParser struct {
	accel, mag       r3.Vec
	haveAcc, haveMag bool
}

// Parse handles one line. It returns ok=false for blank lines, comments and
// sensor records that do not complete a fusion.
func (p *LineParser) Parse(line string) (Reading, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Reading{}, false, nil
	}

	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Reading{}, false, fmt.Errorf("%w: want 4 fields, got %d in %q", ErrMalformed, len(fields), line)
	}

	var v [3]float64
	for i, f := range fields[1:] {
		n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Reading{}, false, fmt.Errorf("%w: field %d of %q: %v", ErrMalformed, i+1, line, err)
		}
		v[i] = n
	}

	switch strings.ToUpper(strings.TrimSpace(fields[0])) {
	case RecordOrientation:
		return Reading{Azimuth: v[0], Pitch: v[1], Roll: v[2]}, true, nil
	case RecordAccelerometer:
		p.accel = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
		p.haveAcc = true
	case RecordMagnetometer:
		p.mag = r3.Vec{X: v[0], Y: v[1], Z: v[2]}
		p.haveMag = true
	default:
		return Reading{}, false, fmt.Errorf("%w: unknown record type %q", ErrMalformed, fields[0])
	}

	if !p.haveAcc || !p.haveMag {
		return Reading{}, false, nil
	}
	r, ok := Fuse(p.accel, p.mag)
	return r, ok, nil
}
