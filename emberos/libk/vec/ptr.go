package vec

import "ember/emberos/libk/heap"

// RefVec is a growable container of borrowed pointers. The container never
// frees a referent: Free releases the backing buffer and the referents stay
// with whoever created them.
type RefVec[T any] struct {
	buf buffer[*T]
}

// NewRef creates an empty RefVec with DefaultCapacity slots.
func NewRef[T any](a heap.Allocator) (*RefVec[T], error) {
	buf, err := newBuffer[*T](a)
	if err != nil {
		return nil, err
	}
	return &RefVec[T]{buf: buf}, nil
}

func (v *RefVec[T]) Push(p *T) error { return v.buf.push(p) }
func (v *RefVec[T]) Pop() (*T, bool) { return v.buf.pop() }
func (v *RefVec[T]) At(i int) (*T, bool) { return v.buf.at(i) }
func (v *RefVec[T]) Len() int { return v.buf.len() }
func (v *RefVec[T]) Cap() int { return v.buf.cap() }

// Free releases the backing buffer only.
func (v *RefVec[T]) Free() { v.buf.release() }

// OwnVec is a growable container of owned pointers. Referents must come from
// the same allocator as the container (via heap.Make); Free returns every
// referent still held to that allocator, exactly once, before releasing the
// backing buffer.
//
// Pop transfers ownership to the caller: a popped referent is no longer
// tracked and will not be freed by the container.
type OwnVec[T any] struct {
	buf buffer[*T]
}

// NewOwn creates an empty OwnVec with DefaultCapacity slots.
func NewOwn[T any](a heap.Allocator) (*OwnVec[T], error) {
	buf, err := newBuffer[*T](a)
	if err != nil {
		return nil, err
	}
	return &OwnVec[T]{buf: buf}, nil
}

func (v *OwnVec[T]) Push(p *T) error { return v.buf.push(p) }
func (v *OwnVec[T]) Pop() (*T, bool) { return v.buf.pop() }
func (v *OwnVec[T]) At(i int) (*T, bool) { return v.buf.at(i) }
func (v *OwnVec[T]) Len() int { return v.buf.len() }
func (v *OwnVec[T]) Cap() int { return v.buf.cap() }

// Free releases every live referent and then the backing buffer.
func (v *OwnVec[T]) Free() {
	v.buf.live()
	for i := 0; i < v.buf.size; i++ {
		heap.FreeObj(v.buf.a, v.buf.data[i])
	}
	v.buf.release()
}
