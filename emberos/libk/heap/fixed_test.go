package heap

import "testing"

func TestFixedAllocZeroed(t *testing.T) {
	f := NewFixed(64)

	b, err := f.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc(16) err = %v, want nil", err)
	}
	if len(b) != 16 {
		t.Fatalf("len(b) = %d, want 16", len(b))
	}
	for i := range b {
		b[i] = 0xAA
	}
	f.Free(b)

	b2, err := f.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc(16) after free err = %v, want nil", err)
	}
	for i, v := range b2 {
		if v != 0 {
			t.Fatalf("b2[%d] = %#x, want 0 (recycled block not zeroed)", i, v)
		}
	}
}

func TestFixedExhaustion(t *testing.T) {
	f := NewFixed(32)

	a, err := f.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc(32) err = %v, want nil", err)
	}
	if _, err := f.Alloc(1); err != ErrOutOfMemory {
		t.Fatalf("Alloc(1) on full arena err = %v, want ErrOutOfMemory", err)
	}

	f.Free(a)
	if _, err := f.Alloc(32); err != nil {
		t.Fatalf("Alloc(32) after free err = %v, want nil", err)
	}
}

func TestFixedCoalesce(t *testing.T) {
	f := NewFixed(96)

	a, _ := f.Alloc(32)
	b, _ := f.Alloc(32)
	c, _ := f.Alloc(32)
	if _, err := f.Alloc(8); err != ErrOutOfMemory {
		t.Fatalf("arena should be full, got err = %v", err)
	}

	// Free out of order; neighbors must merge back into one spanning block.
	f.Free(a)
	f.Free(c)
	f.Free(b)

	if _, err := f.Alloc(96); err != nil {
		t.Fatalf("Alloc(96) after coalescing err = %v, want nil", err)
	}
}

func TestFixedStats(t *testing.T) {
	f := NewFixed(128)

	a, _ := f.Alloc(8)
	b, _ := f.Alloc(24)

	st := f.Stats()
	if st.Live != 2 {
		t.Fatalf("Live = %d, want 2", st.Live)
	}
	if st.Used != 32 {
		t.Fatalf("Used = %d, want 32", st.Used)
	}

	f.Free(a)
	f.Free(b)
	st = f.Stats()
	if st.Live != 0 || st.Used != 0 {
		t.Fatalf("after frees Live = %d Used = %d, want 0 0", st.Live, st.Used)
	}
	if st.Allocs != 2 || st.Frees != 2 {
		t.Fatalf("Allocs/Frees = %d/%d, want 2/2", st.Allocs, st.Frees)
	}
}

func TestFixedAlignment(t *testing.T) {
	f := NewFixed(64)

	a, _ := f.Alloc(3)
	b, _ := f.Alloc(3)

	offA, ok := f.offsetOf(a)
	if !ok {
		t.Fatal("offsetOf(a) not in arena")
	}
	offB, ok := f.offsetOf(b)
	if !ok {
		t.Fatal("offsetOf(b) not in arena")
	}
	if offA%blockAlign != 0 || offB%blockAlign != 0 {
		t.Fatalf("offsets %d, %d not %d-byte aligned", offA, offB, blockAlign)
	}
	if offB-offA != blockAlign {
		t.Fatalf("offB-offA = %d, want %d (3-byte alloc should consume one aligned block)", offB-offA, blockAlign)
	}
}

func TestFixedDoubleFreePanics(t *testing.T) {
	f := NewFixed(32)
	b, _ := f.Alloc(8)
	f.Free(b)

	defer func() {
		if recover() == nil {
			t.Fatal("double Free did not panic")
		}
	}()
	f.Free(b)
}

func TestFixedForeignFreePanics(t *testing.T) {
	f := NewFixed(32)

	defer func() {
		if recover() == nil {
			t.Fatal("Free of foreign buffer did not panic")
		}
	}()
	f.Free(make([]byte, 8))
}
