package orientation

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"sonar.klederson.com/internal/clock"
)

type collectSink struct {
	mu       sync.Mutex
	readings []Reading
}

func (c *collectSink) Offer(r Reading) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readings = append(c.readings, r)
	return true
}

func (c *collectSink) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.readings)
}

func (c *collectSink) All() []Reading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Reading(nil), c.readings...)
}

func TestFuseFacingNorth(t *testing.T) {
	r, ok := Fuse(r3.Vec{Z: 9.81}, r3.Vec{Y: 20, Z: -40})
	require.True(t, ok)
	assert.InDelta(t, 0, r.Azimuth, 1e-9)
	assert.InDelta(t, 0, r.Pitch, 1e-9)
	assert.InDelta(t, 0, r.Roll, 1e-9)
}

func TestFuseFacingEast(t *testing.T) {
	// device y axis points east, so north lies along -x
	r, ok := Fuse(r3.Vec{Z: 9.81}, r3.Vec{X: -20, Z: -40})
	require.True(t, ok)
	assert.InDelta(t, math.Pi/2, r.Azimuth, 1e-9)
}

// deviceVectors returns what the accelerometer and magnetometer read on a
// device turned to heading deg, pitched forward by pitch and rolled by roll
// (all degrees). The world field points north and down.
func deviceVectors(heading, pitch, roll float64) (accel, mag r3.Vec) {
	rad := math.Pi / 180
	rz := func(v r3.Vec) r3.Vec {
		a := -heading * rad
		return r3.Vec{X: v.X*math.Cos(a) - v.Y*math.Sin(a), Y: v.X*math.Sin(a) + v.Y*math.Cos(a), Z: v.Z}
	}
	rx := func(v r3.Vec) r3.Vec {
		a := -pitch * rad
		return r3.Vec{X: v.X, Y: v.Y*math.Cos(a) - v.Z*math.Sin(a), Z: v.Y*math.Sin(a) + v.Z*math.Cos(a)}
	}
	ry := func(v r3.Vec) r3.Vec {
		a := roll * rad
		return r3.Vec{X: v.X*math.Cos(a) + v.Z*math.Sin(a), Y: v.Y, Z: -v.X*math.Sin(a) + v.Z*math.Cos(a)}
	}
	// columns of the device-to-world rotation
	x := rz(rx(ry(r3.Vec{X: 1})))
	y := rz(rx(ry(r3.Vec{Y: 1})))
	z := rz(rx(ry(r3.Vec{Z: 1})))
	toDevice := func(w r3.Vec) r3.Vec {
		return r3.Vec{X: r3.Dot(w, x), Y: r3.Dot(w, y), Z: r3.Dot(w, z)}
	}
	return toDevice(r3.Vec{Z: 9.81}), toDevice(r3.Vec{Y: 20, Z: -40})
}

func TestFuseTilted(t *testing.T) {
	tests := []struct {
		name                 string
		heading, pitch, roll float64
	}{
		{"flat", 30, 0, 0},
		{"pitched", 30, 40, 0},
		{"rolled", 30, 0, 30},
		{"pitched and rolled", 30, 40, 30},
		{"west, nose down, rolled left", -120, -25, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accel, mag := deviceVectors(tt.heading, tt.pitch, tt.roll)
			r, ok := Fuse(accel, mag)
			require.True(t, ok)
			rad := math.Pi / 180
			assert.InDelta(t, tt.heading*rad, r.Azimuth, 1e-9, "azimuth")
			assert.InDelta(t, tt.pitch*rad, r.Pitch, 1e-9, "pitch")
			assert.InDelta(t, tt.roll*rad, r.Roll, 1e-9, "roll")
		})
	}
}

func TestFuseDegenerate(t *testing.T) {
	_, ok := Fuse(r3.Vec{Z: 9.81}, r3.Vec{Z: -40})
	assert.False(t, ok, "field parallel to gravity has no east")

	_, ok = Fuse(r3.Vec{}, r3.Vec{Y: 20})
	assert.False(t, ok, "free fall")
}

func TestLineParser(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []Reading
		wantErr bool
	}{
		{
			name:  "orientation record",
			lines: []string{"O,0.5,0.1,-0.2"},
			want:  []Reading{{Azimuth: 0.5, Pitch: 0.1, Roll: -0.2}},
		},
		{
			name:  "comments and blanks",
			lines: []string{"", "  ", "# header"},
		},
		{
			name:  "fusion waits for both sensors",
			lines: []string{"A,0,0,9.81", "M,0,20,-40"},
			want:  []Reading{{}},
		},
		{
			name:    "wrong field count",
			lines:   []string{"O,1,2"},
			wantErr: true,
		},
		{
			name:    "bad number",
			lines:   []string{"A,x,0,1"},
			wantErr: true,
		},
		{
			name:    "unknown record",
			lines:   []string{"G,0,0,1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p LineParser
			var got []Reading
			var gotErr error
			for _, l := range tt.lines {
				r, ok, err := p.Parse(l)
				if err != nil {
					gotErr = err
					continue
				}
				if ok {
					got = append(got, r)
				}
			}
			if tt.wantErr {
				require.Error(t, gotErr)
				assert.True(t, errors.Is(gotErr, ErrMalformed))
				return
			}
			require.NoError(t, gotErr)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.InDelta(t, tt.want[i].Azimuth, got[i].Azimuth, 1e-9)
				assert.InDelta(t, tt.want[i].Pitch, got[i].Pitch, 1e-9)
				assert.InDelta(t, tt.want[i].Roll, got[i].Roll, 1e-9)
			}
		})
	}
}

func TestSerialSourceReadsLines(t *testing.T) {
	input := "O,0.1,0,0\nbogus\nO,0.2,0,0\n"
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	src := NewSerialSource("/dev/fake", 9600, logger).WithOpener(
		func(path string, baud int) (io.ReadCloser, error) {
			assert.Equal(t, "/dev/fake", path)
			assert.Equal(t, 9600, baud)
			return io.NopCloser(strings.NewReader(input)), nil
		})

	sink := &collectSink{}
	require.NoError(t, src.Start(context.Background(), sink))
	assert.True(t, src.Available())
	assert.Eventually(t, func() bool { return sink.Len() == 2 }, time.Second, time.Millisecond)
	src.Stop()

	got := sink.All()
	assert.InDelta(t, 0.1, got[0].Azimuth, 1e-9)
	assert.InDelta(t, 0.2, got[1].Azimuth, 1e-9)
	assert.Equal(t, 1, src.Malformed())
	assert.False(t, src.Available())
	assert.NotEmpty(t, hook.AllEntries())
}

func TestSerialSourceReportsClosedPort(t *testing.T) {
	logger, _ := test.NewNullLogger()
	src := NewSerialSource("/dev/fake", 9600, logger).WithOpener(
		func(string, int) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("O,0.1,0,0\n")), nil
		})

	failed := make(chan error, 1)
	var notifier FailureNotifier = src
	notifier.OnFailure(func(err error) { failed <- err })

	require.NoError(t, src.Start(context.Background(), &collectSink{}))
	select {
	case err := <-failed:
		assert.ErrorIs(t, err, ErrPortClosed)
	case <-time.After(time.Second):
		t.Fatal("no failure reported after EOF")
	}
	src.Stop()
}

func TestSerialSourceOpenError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	src := NewSerialSource("/dev/missing", 9600, logger).WithOpener(
		func(string, int) (io.ReadCloser, error) {
			return nil, errors.New("no such device")
		})

	err := src.Start(context.Background(), &collectSink{})
	require.Error(t, err)
	assert.False(t, src.Available())
}

func TestMockSourceEmitsOnTicks(t *testing.T) {
	c := clock.NewManual(time.Unix(0, 0))
	src := NewMockSource(c, 42)
	sink := &collectSink{}
	require.NoError(t, src.Start(context.Background(), sink))
	defer src.Stop()

	for i := 0; i < 5; i++ {
		c.Advance(mockInterval)
		n := i + 1
		require.Eventually(t, func() bool { return sink.Len() >= n }, time.Second, time.Millisecond)
	}

	for _, r := range sink.All() {
		assert.LessOrEqual(t, math.Abs(r.Azimuth), math.Pi)
	}
}

func TestNoneSource(t *testing.T) {
	var src Source = None{}
	assert.False(t, src.Available())
	assert.NoError(t, src.Start(context.Background(), &collectSink{}))
	assert.Equal(t, "none", src.Name())
}
