package app

import (
	"testing"

	"ember/hal"
)

// nullHAL has no devices at all; wiring must still come up cleanly.
type nullHAL struct{}

func (nullHAL) Logger() hal.Logger   { return nil }
func (nullHAL) LED() hal.LED         { return nil }
func (nullHAL) Display() hal.Display { return nil }
func (nullHAL) Input() hal.Input     { return nil }
func (nullHAL) Time() hal.Time       { return nil }

func TestNewSystemWiresAllTasks(t *testing.T) {
	sys, err := newSystem(nullHAL{}, Config{})
	if err != nil {
		t.Fatalf("newSystem: %v", err)
	}
	if sys == nil || sys.k == nil {
		t.Fatal("newSystem returned no kernel")
	}

	// All four tasks registered and schedulable: stepping must not panic
	// and boot must settle into its wait state.
	for i := 0; i < 64; i++ {
		sys.k.Step()
	}
}

func TestNewWithConfigReportsStartup(t *testing.T) {
	status := NewWithConfig(nullHAL{}, Config{BootArenaBytes: 512})
	if err := status(); err != nil {
		t.Fatalf("startup error: %v", err)
	}
}
