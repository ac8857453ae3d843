// Package app wires the kernel, services, and tasks onto a HAL and runs the
// system.
package app

import (
	"errors"

	"ember/emberos/kernel"
	"ember/emberos/libk/heap"
	"ember/emberos/services/logger"
	"ember/emberos/services/term"
	timesvc "ember/emberos/services/time"
	"ember/emberos/tasks/boot"
	"ember/hal"
)

// stepsPerTick bounds how many task steps run per timer tick.
const stepsPerTick = 64

// defaultBootArenaBytes sizes the fixed arena handed to the boot task.
const defaultBootArenaBytes = 4096

type Config struct {
	// BootArenaBytes overrides the boot arena size; 0 means the default.
	BootArenaBytes int
}

type system struct {
	k *kernel.Kernel
}

// New initializes and starts the OS with default config. The returned
// function reports the startup error, if any.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// Run starts the OS and blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	sys, err := newSystem(h, cfg)
	if err != nil {
		return func() error { return err }
	}
	sys.start(h)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) (*system, error) {
	installPanicHandler(h)

	k, err := kernel.New(heap.Runtime{})
	if err != nil {
		return nil, err
	}

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	timeEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	termEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !logEP.Valid() || !timeEP.Valid() || !termEP.Valid() {
		return nil, errors.New("app: endpoint setup failed")
	}

	arenaBytes := cfg.BootArenaBytes
	if arenaBytes <= 0 {
		arenaBytes = defaultBootArenaBytes
	}
	arena := heap.NewFixed(arenaBytes)

	tasks := []kernel.Task{
		logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)),
		timesvc.New(timeEP),
		term.New(h.Display(), h.Input(), heap.Runtime{},
			termEP.Restrict(kernel.RightRecv),
			logEP.Restrict(kernel.RightSend)),
		boot.New(h.LED(), arena,
			timeEP.Restrict(kernel.RightSend),
			termEP.Restrict(kernel.RightSend),
			logEP.Restrict(kernel.RightSend)),
	}
	for _, t := range tasks {
		if _, ok := k.AddTask(t); !ok {
			return nil, errors.New("app: task registration failed")
		}
	}

	return &system{k: k}, nil
}

// start drives the kernel from the HAL tick stream. The kernel is
// single-threaded; this goroutine is the only one touching it.
func (s *system) start(h hal.HAL) {
	ht := h.Time()
	if ht == nil {
		return
	}
	ch := ht.Ticks()
	if ch == nil {
		return
	}
	go func() {
		s.pump(stepsPerTick) // let boot run before the first tick
		for seq := range ch {
			s.k.TickTo(seq)
			s.pump(stepsPerTick)
		}
	}()
}

func (s *system) pump(budget int) {
	for i := 0; i < budget; i++ {
		if kernel.InPanicMode() {
			return
		}
		s.k.Step()
	}
}
