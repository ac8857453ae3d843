package heap

import "testing"

type point struct {
	X, Y int32
}

func TestMakeFixed(t *testing.T) {
	f := NewFixed(64)

	p, err := Make[point](f)
	if err != nil {
		t.Fatalf("Make err = %v, want nil", err)
	}
	if p.X != 0 || p.Y != 0 {
		t.Fatalf("new object = %+v, want zeroed", *p)
	}
	p.X = 7

	if st := f.Stats(); st.Live != 1 {
		t.Fatalf("Live = %d, want 1", st.Live)
	}
	FreeObj(f, p)
	if st := f.Stats(); st.Live != 0 {
		t.Fatalf("Live after FreeObj = %d, want 0", st.Live)
	}
}

func TestMakeSliceFixed(t *testing.T) {
	f := NewFixed(256)

	s, err := MakeSlice[uint32](f, 8)
	if err != nil {
		t.Fatalf("MakeSlice err = %v, want nil", err)
	}
	if len(s) != 8 {
		t.Fatalf("len = %d, want 8", len(s))
	}
	for i := range s {
		s[i] = uint32(i)
	}
	for i := range s {
		if s[i] != uint32(i) {
			t.Fatalf("s[%d] = %d, want %d", i, s[i], i)
		}
	}

	FreeSlice(f, s)
	if st := f.Stats(); st.Used != 0 {
		t.Fatalf("Used after FreeSlice = %d, want 0", st.Used)
	}
}

func TestMakeSliceExhaustion(t *testing.T) {
	f := NewFixed(16)

	if _, err := MakeSlice[uint64](f, 8); err != ErrOutOfMemory {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
	if st := f.Stats(); st.Used != 0 {
		t.Fatalf("failed MakeSlice leaked: Used = %d", st.Used)
	}
}

func TestMakeRuntime(t *testing.T) {
	a := Runtime{}

	p, err := Make[point](a)
	if err != nil {
		t.Fatalf("Make err = %v, want nil", err)
	}
	FreeObj(a, p)

	s, err := MakeSlice[point](a, 4)
	if err != nil {
		t.Fatalf("MakeSlice err = %v, want nil", err)
	}
	if len(s) != 4 {
		t.Fatalf("len = %d, want 4", len(s))
	}
	FreeSlice(a, s)
}
