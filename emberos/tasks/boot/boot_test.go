package boot

import (
	"strings"
	"testing"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/proto"
)

type taskFunc func(*kernel.Context)

func (f taskFunc) Step(ctx *kernel.Context) { f(ctx) }

type fakeLED struct{ toggles int }

func (l *fakeLED) High() { l.toggles++ }
func (l *fakeLED) Low()  { l.toggles++ }

// rig runs the boot task against capture tasks and a time service stub that
// grants every sleep immediately.
type rig struct {
	k     *kernel.Kernel
	led   *fakeLED
	arena *heap.Fixed

	logLines   []string
	termWrites []string
	termClears int
}

func newRig(t *testing.T) *rig {
	t.Helper()
	k, err := kernel.New(heap.Runtime{})
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	r := &rig{k: k, led: &fakeLED{}, arena: heap.NewFixed(4096)}

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	timeEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	termEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !logEP.Valid() || !timeEP.Valid() || !termEP.Valid() {
		t.Fatal("endpoint setup failed")
	}

	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		for {
			msg, ok := ctx.TryRecv(logEP)
			if !ok {
				return
			}
			r.logLines = append(r.logLines, string(msg.Data[:msg.Len]))
		}
	}))
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		for {
			msg, ok := ctx.TryRecv(timeEP)
			if !ok {
				return
			}
			if proto.Kind(msg.Kind) != proto.MsgSleep || !msg.Cap.Valid() {
				continue
			}
			id, _, ok := proto.DecodeSleepPayload(msg.Data[:msg.Len])
			if !ok {
				continue
			}
			_ = ctx.Send(timeEP, msg.Cap, uint16(proto.MsgWake), proto.WakePayload(id))
		}
	}))
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		for {
			msg, ok := ctx.TryRecv(termEP)
			if !ok {
				return
			}
			switch proto.Kind(msg.Kind) {
			case proto.MsgTermWrite:
				r.termWrites = append(r.termWrites, string(msg.Data[:msg.Len]))
			case proto.MsgTermClear:
				r.termClears++
			}
		}
	}))

	k.AddTask(New(r.led, r.arena,
		timeEP.Restrict(kernel.RightSend),
		termEP.Restrict(kernel.RightSend),
		logEP.Restrict(kernel.RightSend)))
	return r
}

func (r *rig) pump(n int) {
	for i := 0; i < n; i++ {
		r.k.Step()
	}
}

func hasLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestBootAnnouncesAndReturnsArena(t *testing.T) {
	r := newRig(t)
	r.pump(64)

	if r.termClears != 1 {
		t.Fatalf("term clears = %d, want 1", r.termClears)
	}
	if !hasLine(r.logLines, "Hello, kernel World!") {
		t.Fatalf("banner missing from log: %q", r.logLines)
	}
	if !hasLine(r.termWrites, "Hello, kernel World!") {
		t.Fatalf("banner missing from terminal: %q", r.termWrites)
	}

	// The banner buffer must be handed back to the arena once flushed.
	if st := r.arena.Stats(); st.Live != 0 || st.Used != 0 {
		t.Fatalf("arena still holds banner memory: %+v", st)
	}
}

func TestBootHeartbeats(t *testing.T) {
	r := newRig(t)
	r.pump(256)

	var beats int
	for _, l := range r.logLines {
		if strings.HasPrefix(l, "uptime ") {
			beats++
		}
	}
	if beats < 2 {
		t.Fatalf("heartbeats = %d, want at least 2 (log: %q)", beats, r.logLines)
	}
	if r.led.toggles < 2 {
		t.Fatalf("led toggles = %d, want at least 2", r.led.toggles)
	}
}
