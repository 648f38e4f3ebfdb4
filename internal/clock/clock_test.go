package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewManual(start)
	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())
}

func TestManualTicker(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	tk := c.NewTicker(100 * time.Millisecond)

	c.Advance(50 * time.Millisecond)
	select {
	case <-tk.C():
		t.Fatal("ticker fired early")
	default:
	}

	c.Advance(50 * time.Millisecond)
	select {
	case got := <-tk.C():
		assert.Equal(t, time.Unix(0, 0).Add(100*time.Millisecond), got)
	default:
		t.Fatal("ticker did not fire")
	}

	tk.Stop()
	c.Advance(time.Second)
	select {
	case <-tk.C():
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestRealTicker(t *testing.T) {
	tk := Real{}.NewTicker(5 * time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("ticker did not fire")
	}
}
