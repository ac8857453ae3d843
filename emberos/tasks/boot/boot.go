// Package boot brings the system up: it announces the kernel, then blinks
// the LED and reports uptime and heap pressure once a second.
package boot

import (
	"strconv"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/libk/vec"
	"ember/emberos/proto"
	"ember/hal"
	"ember/internal/buildinfo"
)

// heartbeatTicks is the sleep interval in kernel ticks (1ms base).
const heartbeatTicks = 1000

type phase uint8

const (
	phaseBanner phase = iota
	phaseWait
	phaseHalt
)

// bootLine is a fixed-layout banner line, small enough to live in the boot
// arena (no Go pointers inside).
type bootLine struct {
	n    uint8
	text [63]byte
}

type Task struct {
	led   hal.LED
	arena *heap.Fixed

	timeTo kernel.Capability
	termTo kernel.Capability
	logTo  kernel.Capability

	reply kernel.Capability
	phase phase
	ledOn bool
	seq   uint32
}

// New creates the boot task. arena backs the early-boot message buffer and
// is reported in the heartbeat line; it may be nil.
func New(led hal.LED, arena *heap.Fixed, timeTo, termTo, logTo kernel.Capability) *Task {
	return &Task{led: led, arena: arena, timeTo: timeTo, termTo: termTo, logTo: logTo}
}

func (t *Task) Step(ctx *kernel.Context) {
	switch t.phase {
	case phaseBanner:
		t.banner(ctx)
	case phaseWait:
		t.wait(ctx)
	case phaseHalt:
		ctx.BlockOnTick()
	}
}

// banner buffers the hello lines in an arena-backed container, flushes them
// to the terminal and the logger, and returns the buffer to the arena.
func (t *Task) banner(ctx *kernel.Context) {
	t.reply = ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !t.reply.Valid() {
		t.phase = phaseHalt
		return
	}

	lines, err := t.collectBanner()
	if err != nil {
		// No arena room for the pleasantries; boot on regardless.
		t.sayLine(ctx, "emberos: boot (banner skipped)")
		t.sleep(ctx)
		return
	}

	_ = ctx.SendTo(t.termTo, uint16(proto.MsgTermClear), nil)
	for i := 0; i < lines.Len(); i++ {
		ln, _ := lines.At(i)
		t.sayLine(ctx, string(ln.text[:ln.n]))
	}
	lines.Free()

	t.sleep(ctx)
}

func (t *Task) collectBanner() (*vec.OwnVec[bootLine], error) {
	var a heap.Allocator = heap.Runtime{}
	if t.arena != nil {
		a = t.arena
	}
	lines, err := vec.NewOwn[bootLine](a)
	if err != nil {
		return nil, err
	}
	for _, s := range []string{
		"EmberOS " + buildinfo.Short(),
		"Hello, kernel World!",
		"type into the console; lines are echoed to the log",
	} {
		ln, err := heap.Make[bootLine](a)
		if err != nil {
			lines.Free()
			return nil, err
		}
		ln.n = uint8(copy(ln.text[:], s))
		if err := lines.Push(ln); err != nil {
			heap.FreeObj(a, ln)
			lines.Free()
			return nil, err
		}
	}
	return lines, nil
}

// wait sits on the reply endpoint until the time service wakes us, then
// emits a heartbeat and goes back to sleep.
func (t *Task) wait(ctx *kernel.Context) {
	msg, ok := ctx.Recv(t.reply)
	if !ok {
		return
	}
	switch proto.Kind(msg.Kind) {
	case proto.MsgWake:
		t.heartbeat(ctx)
		t.sleep(ctx)
	case proto.MsgError:
		code, _, _, ok := proto.DecodeErrorPayload(msg.Data[:msg.Len])
		if ok {
			t.sayLine(ctx, "boot: sleep rejected: "+code.String())
		}
		t.phase = phaseHalt
	}
}

func (t *Task) sleep(ctx *kernel.Context) {
	t.seq++
	payload := proto.SleepPayload(t.seq, heartbeatTicks)
	if !ctx.SendCap(t.reply, t.timeTo, uint16(proto.MsgSleep), payload, t.reply.Restrict(kernel.RightSend)) {
		t.phase = phaseHalt
		return
	}
	t.phase = phaseWait
}

func (t *Task) heartbeat(ctx *kernel.Context) {
	if t.led != nil {
		if t.ledOn {
			t.led.Low()
		} else {
			t.led.High()
		}
		t.ledOn = !t.ledOn
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, "uptime "...)
	buf = strconv.AppendUint(buf, ctx.NowTick()/1000, 10)
	buf = append(buf, 's')
	if t.arena != nil {
		st := t.arena.Stats()
		buf = append(buf, "  arena "...)
		buf = strconv.AppendInt(buf, int64(st.Used), 10)
		buf = append(buf, '/')
		buf = strconv.AppendInt(buf, int64(st.Size), 10)
		buf = append(buf, " live "...)
		buf = strconv.AppendUint(buf, st.Live, 10)
	}
	t.sayLine(ctx, string(buf))
}

// sayLine writes one line to both the terminal and the log.
func (t *Task) sayLine(ctx *kernel.Context, s string) {
	_ = ctx.SendTo(t.termTo, uint16(proto.MsgTermWrite), []byte(s+"\r\n"))
	_ = ctx.SendTo(t.logTo, uint16(proto.MsgLogLine), []byte(s))
}
