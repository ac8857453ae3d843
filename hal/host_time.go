//go:build !tinygo

package hal

import "time"

// hostTime turns wall-clock progress into a 1ms tick sequence. The sequence
// is anchored to the first advance call, so rounding never accumulates into
// timebase drift.
type hostTime struct {
	ch    chan uint64
	seq   uint64
	epoch time.Time
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// advance emits every tick that has become due since the last call. A full
// channel drops ticks rather than blocking the frame loop; the kernel's
// TickTo only cares about the latest sequence number.
func (t *hostTime) advance() {
	now := time.Now()
	if t.epoch.IsZero() {
		t.epoch = now
	}
	due := uint64(now.Sub(t.epoch)/time.Millisecond) + 1
	for t.seq < due {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}
