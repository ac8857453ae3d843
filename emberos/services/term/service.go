// Package term renders a VT100-ish terminal onto the framebuffer and runs
// the console line editor.
package term

import (
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyterm"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/libk/vec"
	"ember/emberos/proto"
	"ember/hal"
)

// maxMsgsPerStep bounds how many terminal messages one step drains so a
// chatty writer cannot starve the rest of the system.
const maxMsgsPerStep = 8

type Service struct {
	disp  hal.Display
	in    hal.Input
	alloc heap.Allocator
	ep    kernel.Capability
	logTo kernel.Capability

	fb    hal.Framebuffer
	d     *fbDisplay
	t     *tinyterm.Terminal
	line  *vec.Vec[byte]
	ready bool
	down  bool
	dirty bool
}

// New creates the terminal service. ep receives MsgTermWrite/MsgTermClear;
// entered console lines are forwarded to logTo as MsgLogLine.
func New(disp hal.Display, in hal.Input, alloc heap.Allocator, ep, logTo kernel.Capability) *Service {
	return &Service{disp: disp, in: in, alloc: alloc, ep: ep, logTo: logTo}
}

func (s *Service) Step(ctx *kernel.Context) {
	if s.down {
		ctx.BlockOnTick()
		return
	}
	if !s.ready && !s.init() {
		s.down = true
		return
	}

	s.drainKeys(ctx)

	for i := 0; i < maxMsgsPerStep; i++ {
		msg, ok := ctx.TryRecv(s.ep)
		if !ok {
			break
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgTermWrite:
			_, _ = s.t.Write(msg.Data[:msg.Len])
			s.dirty = true
		case proto.MsgTermClear:
			s.reset()
			s.dirty = true
		}
	}

	if s.dirty {
		s.t.Display()
		s.dirty = false
	}
	ctx.BlockOnTick()
}

func (s *Service) init() bool {
	if s.disp == nil {
		return false
	}
	s.fb = s.disp.Framebuffer()
	if s.fb == nil {
		return false
	}

	line, err := vec.New[byte](s.alloc)
	if err != nil {
		return false
	}
	s.line = line

	s.d = newFBDisplay(s.fb)
	s.reset()
	s.ready = true
	return true
}

func (s *Service) reset() {
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:              &freemono.Regular9pt7b,
		FontHeight:        16,
		FontOffset:        12,
		UseSoftwareScroll: true,
	})
	s.fb.ClearRGB(0, 0, 0)
	_ = s.fb.Present()
}

func (s *Service) drainKeys(ctx *kernel.Context) {
	if s.in == nil {
		return
	}
	kbd := s.in.Keyboard()
	if kbd == nil {
		return
	}
	ch := kbd.Events()
	if ch == nil {
		return
	}

	for {
		select {
		case ev := <-ch:
			s.handleKey(ctx, ev)
		default:
			return
		}
	}
}

func (s *Service) handleKey(ctx *kernel.Context, ev hal.KeyEvent) {
	if !ev.Press {
		return
	}

	switch ev.Code {
	case hal.KeyEnter:
		s.submitLine(ctx)
		return
	case hal.KeyBackspace:
		if _, ok := s.line.Pop(); ok {
			_, _ = s.t.Write([]byte("\b \b"))
			s.dirty = true
		}
		return
	}

	// Printable ASCII goes into the edit buffer and is echoed.
	if ev.Rune < 0x20 || ev.Rune > 0x7E {
		return
	}
	if err := s.line.Push(byte(ev.Rune)); err != nil {
		// Allocator exhausted: drop the keystroke rather than the console.
		return
	}
	_ = s.t.WriteByte(byte(ev.Rune))
	s.dirty = true
}

func (s *Service) submitLine(ctx *kernel.Context) {
	_, _ = s.t.Write([]byte("\r\n"))
	s.dirty = true

	n := s.line.Len()
	if n == 0 {
		return
	}
	buf := make([]byte, 0, n+9)
	buf = append(buf, "console: "...)
	for i := 0; i < n; i++ {
		b, _ := s.line.At(i)
		buf = append(buf, b)
	}
	_ = ctx.SendTo(s.logTo, uint16(proto.MsgLogLine), buf)

	for {
		if _, ok := s.line.Pop(); !ok {
			break
		}
	}
}
