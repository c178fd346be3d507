// Package mpiruntime provides Go bindings to a native MPI library without cgo.
//
// The native library is opened at run time, every symbol the bindings need is
// resolved once, and each MPI entry point is bound to a typed Go function with
// a fixed signature. Arguments are staged in short-lived pinned arenas and
// native status codes are translated into structured errors carrying the
// library's own message.
//
// # Architecture Overview
//
//	mpiruntime/          Root package with Status, Handle and the Resolver contract
//	├── native/          Library loading, symbol registry and callable bindings
//	├── arena/           Scoped marshaling arenas with a typed read/write API
//	├── mpi/             Sessions (init/finalize), communicators, error translation
//	├── mpitest/         In-process simulated MPI library for tests and demos
//	├── config/          Configuration loading
//	├── errors/          Structured error types
//	└── cmd/mpi-gather/  Demonstration program
//
// # Quick Start
//
//	lib, err := native.Open("libmpi.so")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lib.Close()
//
//	s := mpi.NewSession(lib)
//	if err := s.Init(os.Args); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Finalize()
//
//	world := s.World()
//	rank, _ := world.Rank()
//	size, _ := world.Size()
//
//	var out []float64
//	if rank == mpi.Root {
//	    out = make([]float64, size)
//	}
//	if err := world.Gather(float64(rank), out); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// A Session serializes every native call behind one lock, and by default the
// library issues all calls from a single dedicated OS thread. Collectives block
// until every process in the communicator participates; there is no
// cancellation.
package mpiruntime
