// Package mpitest provides an in-process MPI library for tests and demos.
//
// A World simulates an MPI job of N processes. Each process implements
// mpiruntime.Resolver, so native.Load binds the simulator exactly as it
// binds a dlopen'ed library, and every argument travels through real arena
// memory:
//
//	w := mpitest.NewWorld(4)
//	err := w.Run(func(rank int, s *mpi.Session) error {
//	    if err := s.Init(nil); err != nil {
//	        return err
//	    }
//	    defer s.Finalize()
//	    return s.World().Barrier()
//	})
//
// Collectives meet in shared memory and block until every rank arrives.
// Faults can be injected per entry point with World.Fail, and options
// simulate missing symbols, corrupt communicators and a failing
// MPI_Error_string.
package mpitest
