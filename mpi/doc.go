// Package mpi exposes MPI sessions and communicators on top of a loaded
// native library.
//
// # Lifecycle
//
// A Session moves through three states: loaded, initialized, finalized.
// Init must succeed before any communicator operation, and Finalize ends the
// session for good:
//
//	s := mpi.NewSession(lib)
//	if err := s.Init(os.Args); err != nil {
//	    return err
//	}
//	defer s.Finalize()
//
// Operations issued before Init or after Finalize are rejected with an MPI
// failure in the lifecycle phase, without touching the native library.
//
// # Communicators
//
// Only the two predefined communicators are available, through
// Session.World and Session.Self. Communicators are plain values; the
// handle they carry is never exposed.
//
// # Errors
//
// Every non-zero native status becomes an *errors.Error of kind
// KindMPIFailure whose message comes from MPI_Error_string, or
// "native error <code>" when the library cannot describe the code. Failures
// are never retried.
//
// # Concurrency
//
// All methods are safe to call from multiple goroutines, but calls are
// serialized: a goroutine blocked in a collective holds the session until
// every process has joined.
package mpi
