package app

import "time"

// TickMsg triggers a dial update and redraw.
type TickMsg time.Time

// EvictMsg triggers eviction of BLE devices that went quiet.
type EvictMsg time.Time

// SourceErrorMsg reports a failure of an input source.
type SourceErrorMsg struct {
	Source string
	Err    error
}
