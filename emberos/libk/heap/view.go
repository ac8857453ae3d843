package heap

import "unsafe"

// Typed views over raw allocator memory. The byte-count arithmetic lives
// here, once, so every container instantiation shares the same allocation
// path regardless of element type.
//
// For Runtime these compile down to plain new/make. For any other allocator
// the returned values alias arena bytes that the garbage collector does not
// scan, so the element type must not contain Go pointers into runtime-owned
// memory. Scalars, fixed-size arrays of them, and pointers to objects from
// the same allocator are all fine.

// Make allocates a single zeroed T.
func Make[T any](a Allocator) (*T, error) {
	if _, ok := a.(Runtime); ok {
		return new(T), nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T), nil
	}
	b, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// FreeObj returns an object obtained from Make to its allocator.
func FreeObj[T any](a Allocator, p *T) {
	if _, ok := a.(Runtime); ok {
		return
	}
	if p == nil {
		return
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return
	}
	a.Free(unsafe.Slice((*byte)(unsafe.Pointer(p)), size))
}

// MakeSlice allocates a zeroed slice of n elements of T.
func MakeSlice[T any](a Allocator, n int) ([]T, error) {
	if n < 0 {
		panic("heap: negative slice length")
	}
	if _, ok := a.(Runtime); ok {
		return make([]T, n), nil
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 || n == 0 {
		return make([]T, n), nil
	}
	b, err := a.Alloc(elem * n)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// FreeSlice returns a slice obtained from MakeSlice to its allocator.
func FreeSlice[T any](a Allocator, s []T) {
	if _, ok := a.(Runtime); ok {
		return
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if elem == 0 || len(s) == 0 {
		return
	}
	a.Free(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), elem*len(s)))
}
