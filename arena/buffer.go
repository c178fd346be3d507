package arena

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

var (
	errUseAfterClose = errors.New("arena: buffer used after its arena was closed")
	errNullBuffer    = errors.New("arena: access through null buffer")
)

// Buffer is a region of native-accessible memory owned by an Arena. The zero
// Buffer is the null buffer. Accessors panic when the owning arena has been
// closed or when an access falls outside the buffer; both are programming
// errors rather than runtime conditions.
type Buffer struct {
	arena *Arena
	ptr   unsafe.Pointer
	data  []byte
}

// Ptr returns the stable address to pass to native code, or nil for the
// null buffer.
func (b Buffer) Ptr() unsafe.Pointer {
	if b.ptr != nil {
		b.live()
	}
	return b.ptr
}

// IsNull reports whether b is the null buffer.
func (b Buffer) IsNull() bool {
	return b.ptr == nil
}

// Len returns the buffer size in bytes.
func (b Buffer) Len() int {
	return len(b.data)
}

// Bytes exposes the buffer contents. The slice aliases arena memory and
// must not be retained past the arena's Close.
func (b Buffer) Bytes() []byte {
	if b.ptr == nil {
		return nil
	}
	b.live()
	return b.data
}

// Int32 reads a 4-byte integer at offset 0 in native byte order.
func (b Buffer) Int32() int32 {
	b.need(0, 4)
	return int32(binary.NativeEndian.Uint32(b.data))
}

// SetInt32 writes a 4-byte integer at offset 0 in native byte order.
func (b Buffer) SetInt32(v int32) {
	b.need(0, 4)
	binary.NativeEndian.PutUint32(b.data, uint32(v))
}

// Float64 reads the i-th double.
func (b Buffer) Float64(i int) float64 {
	off := i * wordSize
	b.need(off, wordSize)
	return math.Float64frombits(binary.NativeEndian.Uint64(b.data[off:]))
}

// SetFloat64 writes the i-th double.
func (b Buffer) SetFloat64(i int, v float64) {
	off := i * wordSize
	b.need(off, wordSize)
	binary.NativeEndian.PutUint64(b.data[off:], math.Float64bits(v))
}

// Float64s copies the buffer out as a new slice of doubles.
func (b Buffer) Float64s() []float64 {
	if b.ptr == nil {
		return nil
	}
	out := make([]float64, len(b.data)/wordSize)
	b.CopyFloat64s(out)
	return out
}

// CopyFloat64s copies doubles into dst and returns how many were copied.
func (b Buffer) CopyFloat64s(dst []float64) int {
	if b.ptr == nil {
		return 0
	}
	b.live()
	n := min(len(dst), len(b.data)/wordSize)
	for i := 0; i < n; i++ {
		dst[i] = math.Float64frombits(binary.NativeEndian.Uint64(b.data[i*wordSize:]))
	}
	return n
}

// Pointer reads the i-th pointer slot.
func (b Buffer) Pointer(i int) unsafe.Pointer {
	off := i * pointerSize
	b.need(off, pointerSize)
	return *(*unsafe.Pointer)(unsafe.Add(b.ptr, off))
}

// SetPointer writes the i-th pointer slot. The arena does not keep p alive;
// p should point into the same arena or into memory the caller owns for at
// least as long.
func (b Buffer) SetPointer(i int, p unsafe.Pointer) {
	off := i * pointerSize
	b.need(off, pointerSize)
	*(*unsafe.Pointer)(unsafe.Add(b.ptr, off)) = p
}

// CString returns the bytes up to the first NUL, or the whole buffer when it
// holds none.
func (b Buffer) CString() string {
	return b.String(len(b.data))
}

// String returns at most n bytes, stopping early at the first NUL.
func (b Buffer) String(n int) string {
	if b.ptr == nil {
		return ""
	}
	b.live()
	n = max(0, min(n, len(b.data)))
	s := b.data[:n]
	for i, c := range s {
		if c == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

func (b Buffer) live() {
	if b.arena == nil || b.arena.closed {
		panic(errUseAfterClose)
	}
}

func (b Buffer) need(off, n int) {
	if b.ptr == nil {
		panic(errNullBuffer)
	}
	b.live()
	if off < 0 || off+n > len(b.data) {
		panic(fmt.Sprintf("arena: access [%d:%d] out of bounds (length %d)", off, off+n, len(b.data)))
	}
}
