// Package vec provides growable containers backed by the libk heap.
//
// Three shapes share one growth core: Vec stores values, RefVec stores
// borrowed pointers, and OwnVec stores owned pointers that are returned to
// the allocator when the container is freed. Ownership is in the type, so
// there is no flag to forget to check.
//
// Containers are single-owner and provide no locking. Freeing a container is
// explicit and exactly once; any use after Free panics. A push may
// reallocate the backing buffer, so interior pointers into it must not be
// held across a push.
package vec

import "ember/emberos/libk/heap"

// DefaultCapacity is the number of slots allocated at construction.
const DefaultCapacity = 1

// buffer is the growth core shared by all container shapes. It tracks the
// logical size against the allocated capacity; all capacity decisions and
// allocator traffic happen here, and only the thin typed wrappers differ.
//
// Invariant: 0 <= size <= len(data), and len(data) >= 1 until freed. Slots
// in [size, len(data)) hold stale values and are never read.
type buffer[T any] struct {
	a    heap.Allocator
	data []T
	size int
	dead bool
}

func newBuffer[T any](a heap.Allocator) (buffer[T], error) {
	data, err := heap.MakeSlice[T](a, DefaultCapacity)
	if err != nil {
		return buffer[T]{}, err
	}
	return buffer[T]{a: a, data: data}, nil
}

func (b *buffer[T]) live() {
	if b.dead {
		panic("vec: use after free")
	}
}

// grow doubles the capacity: a fresh buffer is allocated, the live slots are
// copied over, and the old buffer is freed. On allocator failure nothing has
// been touched and the error is returned as-is.
func (b *buffer[T]) grow() error {
	next := len(b.data) * 2
	if next < 1 {
		next = 1
	}
	data, err := heap.MakeSlice[T](b.a, next)
	if err != nil {
		return err
	}
	copy(data, b.data[:b.size])
	heap.FreeSlice(b.a, b.data)
	b.data = data
	return nil
}

func (b *buffer[T]) push(v T) error {
	b.live()
	if b.size == len(b.data) {
		if err := b.grow(); err != nil {
			return err
		}
	}
	b.data[b.size] = v
	b.size++
	return nil
}

func (b *buffer[T]) pop() (T, bool) {
	b.live()
	var zero T
	if b.size == 0 {
		return zero, false
	}
	b.size--
	return b.data[b.size], true
}

func (b *buffer[T]) at(i int) (T, bool) {
	b.live()
	var zero T
	if i < 0 || i >= b.size {
		return zero, false
	}
	return b.data[i], true
}

func (b *buffer[T]) len() int {
	b.live()
	return b.size
}

func (b *buffer[T]) cap() int {
	b.live()
	return len(b.data)
}

// release frees the backing buffer and poisons the container.
func (b *buffer[T]) release() {
	b.live()
	heap.FreeSlice(b.a, b.data)
	b.data = nil
	b.size = 0
	b.dead = true
}

// Vec is a growable container of values. Elements are copied in on Push and
// copied out on Pop; Free releases only the backing buffer.
type Vec[T any] struct {
	buf buffer[T]
}

// New creates an empty Vec with DefaultCapacity slots. It fails cleanly if
// the allocator cannot satisfy the initial buffer; no container is returned
// in that case.
func New[T any](a heap.Allocator) (*Vec[T], error) {
	buf, err := newBuffer[T](a)
	if err != nil {
		return nil, err
	}
	return &Vec[T]{buf: buf}, nil
}

// Push appends v, growing the backing buffer if needed. On allocator
// exhaustion the error is returned and the container is unchanged.
func (v *Vec[T]) Push(x T) error { return v.buf.push(x) }

// Pop removes and returns the last element. It reports false on an empty
// container.
func (v *Vec[T]) Pop() (T, bool) { return v.buf.pop() }

// At returns the element at index i, which must be in [0, Len()).
func (v *Vec[T]) At(i int) (T, bool) { return v.buf.at(i) }

// Len returns the number of live elements.
func (v *Vec[T]) Len() int { return v.buf.len() }

// Cap returns the number of allocated slots.
func (v *Vec[T]) Cap() int { return v.buf.cap() }

// Free releases the backing buffer. The container must not be used again;
// any further operation, including a second Free, panics.
func (v *Vec[T]) Free() { v.buf.release() }
