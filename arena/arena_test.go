package arena

import (
	"errors"
	"strings"
	"testing"
	"unsafe"
)

func TestAlloc_ZeroSizeIsNull(t *testing.T) {
	a := New()
	defer a.Close()

	for _, size := range []int{0, -1} {
		b := a.Alloc(size)
		if !b.IsNull() || b.Ptr() != nil || b.Len() != 0 {
			t.Errorf("Alloc(%d) = %+v, want null buffer", size, b)
		}
	}
	if a.Count() != 0 {
		t.Errorf("Count = %d, want 0", a.Count())
	}
	if b := a.WriteFloat64s(nil); !b.IsNull() {
		t.Error("WriteFloat64s(nil) should be null")
	}
	if b := a.AllocFloat64s(0); !b.IsNull() {
		t.Error("AllocFloat64s(0) should be null")
	}
}

func TestAlloc_AlignedAndZeroed(t *testing.T) {
	a := New()
	defer a.Close()

	for _, size := range []int{1, 4, 7, 8, 9, 100, 5000} {
		b := a.Alloc(size)
		if b.Len() != size {
			t.Errorf("Len = %d, want %d", b.Len(), size)
		}
		if uintptr(b.Ptr())%wordSize != 0 {
			t.Errorf("Alloc(%d) not 8-byte aligned: %p", size, b.Ptr())
		}
		for i, c := range b.Bytes() {
			if c != 0 {
				t.Fatalf("Alloc(%d) byte %d = %d, want 0", size, i, c)
			}
		}
	}
	if a.Count() != 7 {
		t.Errorf("Count = %d, want 7", a.Count())
	}
}

func TestInt32Cell(t *testing.T) {
	a := New()
	defer a.Close()

	b := a.WriteInt32(-42)
	if got := b.Int32(); got != -42 {
		t.Errorf("Int32 = %d, want -42", got)
	}

	cell := a.AllocInt32()
	*(*int32)(cell.Ptr()) = 7
	if got := cell.Int32(); got != 7 {
		t.Errorf("native write read back as %d, want 7", got)
	}
}

func TestFloat64s(t *testing.T) {
	a := New()
	defer a.Close()

	in := []float64{0.5, -1.25, 3e10}
	b := a.WriteFloat64s(in)
	if b.Len() != 24 {
		t.Fatalf("Len = %d, want 24", b.Len())
	}
	raw := unsafe.Slice((*float64)(b.Ptr()), 3)
	for i := range in {
		if raw[i] != in[i] {
			t.Errorf("raw[%d] = %v, want %v", i, raw[i], in[i])
		}
	}

	out := b.Float64s()
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}

	dst := make([]float64, 2)
	if n := b.CopyFloat64s(dst); n != 2 || dst[1] != -1.25 {
		t.Errorf("CopyFloat64s = %d %v", n, dst)
	}
}

func TestCStrings(t *testing.T) {
	a := New()
	defer a.Close()

	s := a.WriteCString("mpirun")
	if s.Len() != 7 || s.Bytes()[6] != 0 {
		t.Fatalf("WriteCString not NUL terminated: %v", s.Bytes())
	}
	if s.CString() != "mpirun" {
		t.Errorf("CString = %q", s.CString())
	}

	argv := a.WriteCStrings([]string{"prog", "-n", ""})
	if argv.Len() != 4*pointerSize {
		t.Fatalf("argv Len = %d", argv.Len())
	}
	want := []string{"prog", "-n", ""}
	for i, w := range want {
		p := argv.Pointer(i)
		if p == nil {
			t.Fatalf("argv[%d] is NULL", i)
		}
		if got := unsafe.String((*byte)(p), len(w)); got != w {
			t.Errorf("argv[%d] = %q, want %q", i, got, w)
		}
	}
	if argv.Pointer(3) != nil {
		t.Error("argv not NULL terminated")
	}

	empty := a.WriteCStrings(nil)
	if empty.IsNull() || empty.Pointer(0) != nil {
		t.Error("empty argv should be a single NULL slot")
	}

	cell := a.WritePointer(argv.Ptr())
	if cell.Pointer(0) != argv.Ptr() {
		t.Error("WritePointer round trip failed")
	}
}

func TestString_StopsAtNUL(t *testing.T) {
	a := New()
	defer a.Close()

	b := a.Alloc(16)
	copy(b.Bytes(), "abc\x00def")
	tests := []struct {
		n    int
		want string
	}{
		{16, "abc"},
		{2, "ab"},
		{0, ""},
		{-3, ""},
		{100, "abc"},
	}
	for _, tt := range tests {
		if got := b.String(tt.n); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestWith_ReleasesOnEveryPath(t *testing.T) {
	var captured *Arena
	wantErr := errors.New("boom")

	err := With(func(a *Arena) error {
		captured = a
		a.Alloc(8)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("With error = %v", err)
	}
	if !captured.Closed() || captured.Count() != 0 {
		t.Error("arena not released after error return")
	}

	func() {
		defer func() { _ = recover() }()
		_ = With(func(a *Arena) error {
			captured = a
			a.Alloc(8)
			panic("native crash")
		})
	}()
	if !captured.Closed() {
		t.Error("arena not released after panic")
	}

	v, err := Do(func(a *Arena) (int32, error) {
		captured = a
		return a.WriteInt32(9).Int32(), nil
	})
	if err != nil || v != 9 {
		t.Errorf("Do = %d, %v", v, err)
	}
	if !captured.Closed() {
		t.Error("arena not released after Do")
	}
}

func TestUseAfterClosePanics(t *testing.T) {
	a := New()
	b := a.WriteInt32(1)
	a.Close()
	a.Close() // idempotent

	tests := []struct {
		name string
		fn   func()
	}{
		{"Int32", func() { b.Int32() }},
		{"Ptr", func() { b.Ptr() }},
		{"Bytes", func() { b.Bytes() }},
		{"Alloc", func() { a.Alloc(4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				if err, ok := r.(error); !ok || !errors.Is(err, errUseAfterClose) {
					t.Errorf("panic = %v, want use-after-close", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestOutOfBoundsPanics(t *testing.T) {
	a := New()
	defer a.Close()

	b := a.AllocFloat64s(2)
	defer func() {
		r := recover()
		if s, ok := r.(string); !ok || !strings.Contains(s, "out of bounds") {
			t.Errorf("panic = %v, want out of bounds", r)
		}
	}()
	b.Float64(2)
}

func TestNullBufferAccessPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != errNullBuffer {
			t.Errorf("panic = %v, want null buffer", r)
		}
	}()
	var b Buffer
	b.Int32()
}

func TestSlabPool(t *testing.T) {
	s := getSlab(4)
	if len(*s) != 4 {
		t.Fatalf("len = %d, want 4", len(*s))
	}
	(*s)[0] = 99
	putSlab(s)

	s2 := getSlab(4)
	for i, w := range *s2 {
		if w != 0 {
			t.Errorf("reused slab word %d = %d, want 0", i, w)
		}
	}
	putSlab(s2)

	big := getSlab(poolMaxWords + 1)
	if len(*big) != poolMaxWords+1 {
		t.Errorf("len = %d", len(*big))
	}
	putSlab(big) // rejected, must not panic
	putSlab(nil)
}

func TestSize(t *testing.T) {
	a := New()
	defer a.Close()

	a.AllocInt32()
	a.AllocFloat64s(3)
	if a.Size() != 28 {
		t.Errorf("Size = %d, want 28", a.Size())
	}
}
