package heap

import "unsafe"

const blockAlign = 8

// block describes one region of the arena. Blocks are kept sorted by offset
// and adjacent free blocks are always coalesced, so the list length stays
// proportional to the number of live allocations.
type block struct {
	off  int
	size int
	free bool
}

// Fixed is a first-fit free-list allocator over a fixed-size arena.
//
// Blocks are aligned to 8 bytes and zeroed on Alloc. Freeing a buffer that
// did not come from Alloc, or freeing it twice, panics: in a kernel heap a
// bad free is corruption in progress, not a condition to limp past.
type Fixed struct {
	arena  []byte
	blocks []block

	used   int
	allocs uint64
	frees  uint64
}

// Stats is a snapshot of arena usage.
type Stats struct {
	Size   int
	Used   int
	Live   uint64
	Allocs uint64
	Frees  uint64
}

// NewFixed creates an arena of the given size, rounded up to the block
// alignment.
func NewFixed(size int) *Fixed {
	if size < blockAlign {
		size = blockAlign
	}
	size = alignUp(size)
	return &Fixed{
		arena:  make([]byte, size),
		blocks: []block{{off: 0, size: size, free: true}},
	}
}

func alignUp(n int) int {
	return (n + blockAlign - 1) &^ (blockAlign - 1)
}

func (f *Fixed) Alloc(n int) ([]byte, error) {
	if n < 0 {
		panic("heap: negative allocation size")
	}
	need := alignUp(n)
	if need == 0 {
		need = blockAlign
	}

	for i := range f.blocks {
		b := &f.blocks[i]
		if !b.free || b.size < need {
			continue
		}
		if b.size > need {
			f.split(i, need)
			b = &f.blocks[i]
		}
		b.free = false
		f.used += b.size
		f.allocs++

		buf := f.arena[b.off : b.off+n : b.off+b.size]
		clear(f.arena[b.off : b.off+b.size])
		return buf, nil
	}
	return nil, ErrOutOfMemory
}

func (f *Fixed) Free(b []byte) {
	off, ok := f.offsetOf(b)
	if !ok {
		panic("heap: free of foreign buffer")
	}
	i, ok := f.blockAt(off)
	if !ok || f.blocks[i].free {
		panic("heap: double free")
	}

	f.blocks[i].free = true
	f.used -= f.blocks[i].size
	f.frees++
	f.coalesce(i)
}

// Stats returns current arena usage.
func (f *Fixed) Stats() Stats {
	return Stats{
		Size:   len(f.arena),
		Used:   f.used,
		Live:   f.allocs - f.frees,
		Allocs: f.allocs,
		Frees:  f.frees,
	}
}

// split carves the leading `size` bytes out of the free block at index i,
// inserting the remainder right after it.
func (f *Fixed) split(i, size int) {
	b := f.blocks[i]
	rest := block{off: b.off + size, size: b.size - size, free: true}
	f.blocks[i].size = size

	f.blocks = append(f.blocks, block{})
	copy(f.blocks[i+2:], f.blocks[i+1:])
	f.blocks[i+1] = rest
}

// coalesce merges the free block at index i with free neighbors.
func (f *Fixed) coalesce(i int) {
	if i+1 < len(f.blocks) && f.blocks[i+1].free {
		f.blocks[i].size += f.blocks[i+1].size
		f.blocks = append(f.blocks[:i+1], f.blocks[i+2:]...)
	}
	if i > 0 && f.blocks[i-1].free {
		f.blocks[i-1].size += f.blocks[i].size
		f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
	}
}

func (f *Fixed) offsetOf(b []byte) (int, bool) {
	if cap(b) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(f.arena)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < base || p >= base+uintptr(len(f.arena)) {
		return 0, false
	}
	return int(p - base), true
}

func (f *Fixed) blockAt(off int) (int, bool) {
	for i := range f.blocks {
		if f.blocks[i].off == off {
			return i, true
		}
	}
	return 0, false
}
