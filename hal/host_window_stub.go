//go:build !tinygo && !cgo

package hal

import "fmt"

// RunWindow is unavailable without cgo; use -headless instead.
func RunWindow(_ func(HAL) func() error) error {
	return fmt.Errorf("window mode needs a cgo build: %w", ErrNotImplemented)
}
