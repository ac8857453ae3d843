// Package heap is the kernel allocation boundary.
//
// Everything in libk that needs backing memory asks an Allocator for it and
// returns it explicitly. On the host the Runtime allocator defers to the Go
// runtime; constrained builds use a Fixed arena so exhaustion is a real,
// reportable condition instead of an abort.
package heap

import "errors"

// ErrOutOfMemory is reported when an allocator cannot satisfy a request.
var ErrOutOfMemory = errors.New("heap: out of memory")

// Allocator hands out byte buffers and takes them back.
//
// Alloc returns a zeroed buffer of at least n bytes or fails without side
// effects. Free returns a buffer obtained from the same allocator; freeing a
// foreign buffer is a programmer error.
type Allocator interface {
	Alloc(n int) ([]byte, error)
	Free(b []byte)
}

// Runtime is the Go-runtime-backed allocator. Alloc never fails short of the
// process dying, and Free is a no-op because the garbage collector reclaims
// buffers once unreferenced.
type Runtime struct{}

func (Runtime) Alloc(n int) ([]byte, error) {
	if n < 0 {
		panic("heap: negative allocation size")
	}
	return make([]byte, n), nil
}

func (Runtime) Free(b []byte) {}
