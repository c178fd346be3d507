// Package errors provides structured error types for the MPI bindings.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Two kinds matter to callers: KindSymbolNotFound, raised once
// while loading the native library, and KindMPIFailure, raised for every
// non-zero native status and for session misuse. Native status codes are
// never exposed; a failure carries the library's own message instead.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseNative, errors.KindMPIFailure).
//		Op("MPI_Gather").
//		Detail("MPI_ERR_COMM: invalid communicator").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SymbolNotFound("MPI_Init", "ompi_mpi_comm_world")
//	err := errors.Lifecycle("MPI_Comm_rank", "MPI not initialized")
//
// All errors implement the standard error interface and support errors.Is/As:
//
//	if errors.Is(err, errors.ErrMPIFailure) { ... }
package errors
