package mpi

import (
	"sync"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/arena"
	"github.com/wippyai/mpi-runtime/errors"
	"github.com/wippyai/mpi-runtime/native"
	"go.uber.org/zap"
)

type state int

const (
	stateLoaded state = iota
	stateInitialized
	stateFinalized
)

func (s state) String() string {
	switch s {
	case stateLoaded:
		return "loaded"
	case stateInitialized:
		return "initialized"
	case stateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Session is the process-wide MPI state built on a loaded library. It owns
// the init/finalize lifecycle and serializes every native call behind one
// lock; communicators obtained from it share that lock.
//
// A process must use exactly one Session per Library.
type Session struct {
	lib *native.Library

	mu         sync.Mutex
	state      state
	initCalled bool
}

// NewSession wraps lib. No native call is made until Init.
func NewSession(lib *native.Library) *Session {
	return &Session{lib: lib}
}

// Library returns the library the session calls into.
func (s *Session) Library() *native.Library {
	return s.lib
}

// Init calls MPI_Init with args forwarded verbatim as argc/argv. It must be
// called exactly once, before any communicator operation. A failed Init is
// not retried; the session stays unusable.
func (s *Session) Init(args []string) error {
	const op = native.FnInit

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initCalled {
		if s.state == stateFinalized {
			return errors.Lifecycle(op, "MPI already finalized")
		}
		return errors.Lifecycle(op, "MPI_Init already called")
	}
	s.initCalled = true

	err := arena.With(func(a *arena.Arena) error {
		argc := a.WriteInt32(int32(len(args)))
		argv := a.WritePointer(a.WriteCStrings(args).Ptr())
		st := s.invoke(func(b *native.Bindings) mpiruntime.Status {
			return b.Init(argc.Ptr(), argv.Ptr())
		})
		return s.translate(op, st)
	})
	if err != nil {
		Logger().Error("MPI_Init failed", zap.Error(err))
		return err
	}

	s.state = stateInitialized
	Logger().Info("MPI initialized", zap.Int("argc", len(args)))
	return nil
}

// Finalize calls MPI_Finalize. It must be called exactly once, after every
// communicator operation has completed; the session rejects all further
// operations whether or not the native call succeeds.
func (s *Session) Finalize() error {
	const op = native.FnFinalize

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateLoaded:
		return errors.Lifecycle(op, "MPI not initialized")
	case stateFinalized:
		return errors.Lifecycle(op, "MPI already finalized")
	}

	st := s.invoke(func(b *native.Bindings) mpiruntime.Status {
		return b.Finalize()
	})
	s.state = stateFinalized

	if err := s.translate(op, st); err != nil {
		Logger().Error("MPI_Finalize failed", zap.Error(err))
		return err
	}
	Logger().Info("MPI finalized")
	return nil
}

// Initialized reports whether Init has succeeded and Finalize has not been
// called.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateInitialized
}

// Finalized reports whether Finalize has been called.
func (s *Session) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateFinalized
}

// World returns the communicator spanning every process.
func (s *Session) World() Communicator {
	return Communicator{session: s, handle: s.lib.Symbols().CommWorld, name: "world"}
}

// Self returns the communicator containing only the calling process.
func (s *Session) Self() Communicator {
	return Communicator{session: s, handle: s.lib.Symbols().CommSelf, name: "self"}
}

// ready reports a lifecycle failure unless the session is initialized.
// Callers hold s.mu.
func (s *Session) ready(op string) error {
	switch s.state {
	case stateLoaded:
		return errors.Lifecycle(op, "MPI not initialized")
	case stateFinalized:
		return errors.Lifecycle(op, "MPI already finalized")
	}
	return nil
}

// invoke runs one native call on the library's call thread.
// Callers hold s.mu.
func (s *Session) invoke(fn func(b *native.Bindings) mpiruntime.Status) mpiruntime.Status {
	var st mpiruntime.Status
	s.lib.Call(func() {
		st = fn(s.lib.Bindings())
	})
	return st
}
