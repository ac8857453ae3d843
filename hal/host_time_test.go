//go:build !tinygo

package hal

import (
	"testing"
	"time"
)

func drainTicks(t *hostTime) []uint64 {
	var got []uint64
	for {
		select {
		case seq := <-t.ch:
			got = append(got, seq)
		default:
			return got
		}
	}
}

func TestHostTimeFirstAdvanceTicks(t *testing.T) {
	ht := newHostTime()
	ht.advance()

	got := drainTicks(ht)
	if len(got) == 0 || got[0] != 1 {
		t.Fatalf("ticks = %v, want a sequence starting at 1", got)
	}
}

func TestHostTimeSequenceIsMonotonic(t *testing.T) {
	ht := newHostTime()

	var all []uint64
	for i := 0; i < 3; i++ {
		ht.advance()
		all = append(all, drainTicks(ht)...)
		time.Sleep(2 * time.Millisecond)
	}
	ht.advance()
	all = append(all, drainTicks(ht)...)

	if len(all) < 2 {
		t.Fatalf("ticks = %v, want more after sleeping", all)
	}
	for i := 1; i < len(all); i++ {
		if all[i] != all[i-1]+1 {
			t.Fatalf("sequence has a gap: %v", all)
		}
	}
	if last := all[len(all)-1]; last < 3 {
		t.Fatalf("last seq = %d, want at least 3 after ~6ms", last)
	}
}
