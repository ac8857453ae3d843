package timesvc

import (
	"testing"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/proto"
)

type taskFunc func(*kernel.Context)

func (f taskFunc) Step(ctx *kernel.Context) { f(ctx) }

func pump(k *kernel.Kernel, n int) {
	for i := 0; i < n; i++ {
		k.Step()
	}
}

// harness wires a time service and a polling client into a fresh kernel.
type harness struct {
	k      *kernel.Kernel
	timeTo kernel.Capability
	reply  kernel.Capability

	send  func(kind proto.Kind, payload []byte)
	wakes []uint32
	errs  []proto.ErrCode
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	k, err := kernel.New(heap.Runtime{})
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}

	timeEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	replyEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !timeEP.Valid() || !replyEP.Valid() {
		t.Fatal("endpoint setup failed")
	}

	h := &harness{k: k, timeTo: timeEP.Restrict(kernel.RightSend), reply: replyEP}

	k.AddTask(New(timeEP))

	var pending []kernel.Message
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		for len(pending) > 0 {
			msg := pending[0]
			res := ctx.SendCapResult(h.reply, h.timeTo, msg.Kind, msg.Data[:msg.Len], h.reply.Restrict(kernel.RightSend))
			if res == kernel.SendErrQueueFull {
				break
			}
			if res != kernel.SendOK {
				t.Errorf("send: %s", res)
			}
			pending = pending[1:]
		}
		for {
			msg, ok := ctx.TryRecv(h.reply)
			if !ok {
				return
			}
			switch proto.Kind(msg.Kind) {
			case proto.MsgWake:
				id, ok := proto.DecodeWakePayload(msg.Data[:msg.Len])
				if !ok {
					t.Error("bad wake payload")
				}
				h.wakes = append(h.wakes, id)
			case proto.MsgError:
				code, ref, _, ok := proto.DecodeErrorPayload(msg.Data[:msg.Len])
				if !ok || ref != proto.MsgSleep {
					t.Errorf("bad error payload (ok=%v ref=%v)", ok, ref)
				}
				h.errs = append(h.errs, code)
			}
		}
	}))

	h.send = func(kind proto.Kind, payload []byte) {
		var msg kernel.Message
		msg.Kind = uint16(kind)
		msg.Len = uint16(copy(msg.Data[:], payload))
		pending = append(pending, msg)
	}
	return h
}

func (h *harness) tick(seq uint64) {
	h.k.TickTo(seq)
	pump(h.k, 16)
}

func TestSleepWakesAtDeadline(t *testing.T) {
	h := newHarness(t)

	h.send(proto.MsgSleep, proto.SleepPayload(7, 5))
	pump(h.k, 16)

	// The service picks the request up on the next tick; due = 1 + 5.
	h.tick(1)
	if len(h.wakes) != 0 {
		t.Fatalf("woke early: %v", h.wakes)
	}
	h.tick(5)
	if len(h.wakes) != 0 {
		t.Fatalf("woke before deadline: %v", h.wakes)
	}
	h.tick(6)
	if len(h.wakes) != 1 || h.wakes[0] != 7 {
		t.Fatalf("wakes = %v, want [7]", h.wakes)
	}
	h.tick(100)
	if len(h.wakes) != 1 {
		t.Fatalf("sleeper fired twice: %v", h.wakes)
	}
}

func TestSleepZeroWakesImmediately(t *testing.T) {
	h := newHarness(t)

	h.send(proto.MsgSleep, proto.SleepPayload(3, 0))
	pump(h.k, 16)
	h.tick(1)

	if len(h.wakes) != 1 || h.wakes[0] != 3 {
		t.Fatalf("wakes = %v, want [3]", h.wakes)
	}
}

func TestSleepBadPayloadIsRejected(t *testing.T) {
	h := newHarness(t)

	h.send(proto.MsgSleep, []byte{1, 2, 3})
	pump(h.k, 16)
	h.tick(1)

	if len(h.errs) != 1 || h.errs[0] != proto.ErrBadMessage {
		t.Fatalf("errs = %v, want [bad_message]", h.errs)
	}
	if len(h.wakes) != 0 {
		t.Fatalf("unexpected wakes: %v", h.wakes)
	}
}

func TestSleeperTableOverflow(t *testing.T) {
	s := New(kernel.Capability{})

	for i := 0; i < maxSleepers; i++ {
		if !s.schedule(uint64(1000+i), uint32(i), kernel.Capability{}) {
			t.Fatalf("schedule %d failed with free slots", i)
		}
	}
	if s.schedule(2000, 99, kernel.Capability{}) {
		t.Fatal("schedule succeeded on a full table")
	}
}
