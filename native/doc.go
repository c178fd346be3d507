// Package native loads a native MPI library and binds its entry points.
//
// Loading happens once per process. Open maps the shared library with
// dlopen, then Load resolves every data symbol and entry point the bindings
// use before binding any of them:
//
//	lib, err := native.Open("libmpi.so")
//	if errors.Is(err, errors.ErrSymbolNotFound) {
//	    // the library is not an Open MPI build
//	}
//
// # Symbol Registry
//
// Data symbols (the predefined communicators and the double datatype) are
// kept as opaque handles in Symbols. They are passed to native calls by
// address and never dereferenced on the Go side.
//
// # Callable Bindings
//
// Each entry point is bound to a typed field of Bindings with the exact C
// signature, once, at load time. There is no way to call into the library
// with an ad hoc signature.
//
// # Call Thread
//
// By default every call issued through Library.Call runs on one dedicated,
// OS-locked goroutine, so the native library always sees the same thread.
// Load accepts any mpiruntime.Resolver, which lets tests substitute an
// in-process library for the dlopen-backed one.
package native
