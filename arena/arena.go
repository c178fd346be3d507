package arena

import (
	"runtime"
	"unsafe"
)

const (
	wordSize    = 8
	pointerSize = int(unsafe.Sizeof(uintptr(0)))
)

// Arena owns every buffer staged for one logical native operation. Buffers
// are 8-byte aligned, zeroed and pinned, so their addresses stay valid for
// native code until Close. An Arena must not be shared between goroutines.
type Arena struct {
	pinner runtime.Pinner
	slabs  []*[]uint64
	bytes  int
	closed bool
}

// New creates an empty arena. Callers must Close it; prefer With.
func New() *Arena {
	return &Arena{slabs: make([]*[]uint64, 0, 4)}
}

// With runs fn with a fresh arena and releases the arena on every exit
// path, including a panic in fn.
func With(fn func(a *Arena) error) error {
	a := New()
	defer a.Close()
	return fn(a)
}

// Do is With for operations that produce a value.
func Do[T any](fn func(a *Arena) (T, error)) (T, error) {
	a := New()
	defer a.Close()
	return fn(a)
}

// Close unpins and releases every buffer. Buffers obtained from the arena
// must not be used afterwards. Close is idempotent.
func (a *Arena) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.pinner.Unpin()
	for _, s := range a.slabs {
		putSlab(s)
	}
	a.slabs = nil
	a.bytes = 0
}

// Closed reports whether the arena has been released.
func (a *Arena) Closed() bool {
	return a.closed
}

// Count returns the number of live allocations.
func (a *Arena) Count() int {
	return len(a.slabs)
}

// Size returns the number of bytes requested from the arena so far.
func (a *Arena) Size() int {
	return a.bytes
}

// Alloc returns a zeroed buffer of size bytes. A size of zero or less
// yields the null buffer, whose Ptr is nil: native runtimes may reject
// zero-length allocations, so empty data always travels as NULL.
func (a *Arena) Alloc(size int) Buffer {
	if a.closed {
		panic(errUseAfterClose)
	}
	if size <= 0 {
		return Buffer{}
	}

	words := (size + wordSize - 1) / wordSize
	s := getSlab(words)
	first := &(*s)[0]
	a.pinner.Pin(first)
	a.slabs = append(a.slabs, s)
	a.bytes += size

	return Buffer{
		arena: a,
		ptr:   unsafe.Pointer(first),
		data:  unsafe.Slice((*byte)(unsafe.Pointer(first)), size),
	}
}

// AllocInt32 returns a 4-byte output cell.
func (a *Arena) AllocInt32() Buffer {
	return a.Alloc(4)
}

// WriteInt32 returns a 4-byte cell holding v.
func (a *Arena) WriteInt32(v int32) Buffer {
	b := a.AllocInt32()
	b.SetInt32(v)
	return b
}

// AllocFloat64s returns room for n doubles, or the null buffer when n is 0.
func (a *Arena) AllocFloat64s(n int) Buffer {
	return a.Alloc(n * wordSize)
}

// WriteFloat64s stages vs as a contiguous array of doubles. An empty slice
// yields the null buffer.
func (a *Arena) WriteFloat64s(vs []float64) Buffer {
	b := a.AllocFloat64s(len(vs))
	for i, v := range vs {
		b.SetFloat64(i, v)
	}
	return b
}

// WriteCString stages s as a NUL-terminated byte string.
func (a *Arena) WriteCString(s string) Buffer {
	b := a.Alloc(len(s) + 1)
	copy(b.data, s)
	return b
}

// WritePointers stages ptrs as a NULL-terminated pointer vector.
func (a *Arena) WritePointers(ptrs []unsafe.Pointer) Buffer {
	b := a.Alloc((len(ptrs) + 1) * pointerSize)
	for i, p := range ptrs {
		b.SetPointer(i, p)
	}
	return b
}

// WritePointer returns a cell holding a single pointer.
func (a *Arena) WritePointer(p unsafe.Pointer) Buffer {
	b := a.Alloc(pointerSize)
	b.SetPointer(0, p)
	return b
}

// WriteCStrings stages ss as a C argument vector: each string is
// NUL-terminated and the vector itself ends with a NULL entry.
func (a *Arena) WriteCStrings(ss []string) Buffer {
	ptrs := make([]unsafe.Pointer, len(ss))
	for i, s := range ss {
		ptrs[i] = a.WriteCString(s).Ptr()
	}
	return a.WritePointers(ptrs)
}
