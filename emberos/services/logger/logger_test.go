package logger

import (
	"testing"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/proto"
)

type captureSink struct {
	lines []string
}

func (c *captureSink) WriteLineString(s string) { c.lines = append(c.lines, s) }
func (c *captureSink) WriteLineBytes(b []byte)  { c.lines = append(c.lines, string(b)) }

func newLoggerKernel(t *testing.T, sink *captureSink) (*kernel.Kernel, kernel.Capability) {
	t.Helper()
	k, err := kernel.New(heap.Runtime{})
	if err != nil {
		t.Fatalf("kernel.New: %v", err)
	}
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !ep.Valid() {
		t.Fatal("endpoint setup failed")
	}
	k.AddTask(New(sink, ep.Restrict(kernel.RightRecv)))
	return k, ep
}

type taskFunc func(*kernel.Context)

func (f taskFunc) Step(ctx *kernel.Context) { f(ctx) }

func TestLoggerWritesLines(t *testing.T) {
	sink := &captureSink{}
	k, ep := newLoggerKernel(t, sink)

	var queue [][]byte
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		for len(queue) > 0 {
			if !ctx.SendTo(ep.Restrict(kernel.RightSend), uint16(proto.MsgLogLine), queue[0]) {
				return
			}
			queue = queue[1:]
		}
	}))

	queue = append(queue, []byte("first"), []byte("second"))
	for i := 0; i < 16; i++ {
		k.Step()
	}

	if len(sink.lines) != 2 || sink.lines[0] != "first" || sink.lines[1] != "second" {
		t.Fatalf("lines = %q, want [first second]", sink.lines)
	}
}

func TestLoggerIgnoresOtherKinds(t *testing.T) {
	sink := &captureSink{}
	k, ep := newLoggerKernel(t, sink)

	sent := false
	k.AddTask(taskFunc(func(ctx *kernel.Context) {
		if !sent {
			sent = ctx.SendTo(ep.Restrict(kernel.RightSend), uint16(proto.MsgTermWrite), []byte("nope"))
		}
	}))

	for i := 0; i < 16; i++ {
		k.Step()
	}
	if len(sink.lines) != 0 {
		t.Fatalf("lines = %q, want none", sink.lines)
	}
}
