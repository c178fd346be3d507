package mpiruntime

// Status is the integer result of a native MPI call. Zero means success.
type Status int32

// StatusSuccess is MPI_SUCCESS.
const StatusSuccess Status = 0

// Handle is an opaque native address: a resolved function, a global datum
// such as a predefined communicator, or a datatype descriptor. It is never
// dereferenced on the Go side.
type Handle uintptr

// Resolver looks up named symbols in a loaded native library and binds
// function symbols to typed Go function values.
type Resolver interface {
	// Resolve returns the address of a named function or data symbol.
	Resolve(name string) (Handle, error)
	// Bind makes the Go function pointed to by fptr call the native
	// function at fn with the C calling convention.
	Bind(fptr any, fn Handle) error
}
