package mpi

import (
	"unsafe"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/arena"
	"github.com/wippyai/mpi-runtime/errors"
	"github.com/wippyai/mpi-runtime/native"
)

// Root is the rank that receives gathered values.
const Root = 0

// Communicator is a predefined native communicator bound to a session.
// It holds no state of its own and is copied by value; obtain one from
// Session.World or Session.Self. Every operation blocks until the native
// call returns; collectives wait for all participating processes with no
// timeout.
type Communicator struct {
	session *Session
	handle  mpiruntime.Handle
	name    string
}

// Name returns "world" or "self".
func (c Communicator) Name() string {
	return c.name
}

func (c Communicator) String() string {
	if c.name == "" {
		return "communicator(invalid)"
	}
	return "communicator(" + c.name + ")"
}

// Rank returns the calling process's rank, in [0, Size()).
func (c Communicator) Rank() (int, error) {
	const op = native.FnCommRank
	s, err := c.lock(op)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return c.rank(s)
}

// Size returns the number of processes in the communicator.
func (c Communicator) Size() (int, error) {
	const op = native.FnCommSize
	s, err := c.lock(op)
	if err != nil {
		return 0, err
	}
	defer s.mu.Unlock()
	return c.size(s)
}

// Gather collects one value from every process onto Root. Every process
// must call it. On Root, recv must hold exactly Size() values and is
// overwritten in rank order once the collective succeeds; on every other
// rank recv is ignored and left untouched, so an empty slice is fine.
//
// Before the collective, Gather issues MPI_Comm_rank on every process and
// MPI_Comm_size on Root to check the receive buffer; both run under the same
// session lock as MPI_Gather itself.
func (c Communicator) Gather(send float64, recv []float64) error {
	const op = native.FnGather
	s, err := c.lock(op)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	rank, err := c.rank(s)
	if err != nil {
		return err
	}
	root := rank == Root
	if root {
		size, err := c.size(s)
		if err != nil {
			return err
		}
		if len(recv) != size {
			return errors.BufferMismatch(op, len(recv), size)
		}
	}

	return arena.With(func(a *arena.Arena) error {
		sendBuf := a.WriteFloat64s([]float64{send})
		var recvBuf arena.Buffer
		if root {
			recvBuf = a.AllocFloat64s(len(recv))
		}
		double := s.lib.Symbols().Double

		st := s.invoke(func(b *native.Bindings) mpiruntime.Status {
			return b.Gather(sendBuf.Ptr(), 1, double, recvBuf.Ptr(), 1, double, Root, c.handle)
		})
		if err := s.translate(op, st); err != nil {
			return err
		}

		if root {
			recvBuf.CopyFloat64s(recv)
		}
		return nil
	})
}

// Barrier blocks until every process in the communicator has entered it.
func (c Communicator) Barrier() error {
	const op = native.FnBarrier
	s, err := c.lock(op)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	st := s.invoke(func(b *native.Bindings) mpiruntime.Status {
		return b.Barrier(c.handle)
	})
	return s.translate(op, st)
}

// lock acquires the session lock for op and checks the lifecycle. On
// success the caller must unlock.
func (c Communicator) lock(op string) (*Session, error) {
	s := c.session
	if s == nil {
		return nil, errors.Lifecycle(op, "communicator is not bound to a session")
	}
	s.mu.Lock()
	if err := s.ready(op); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return s, nil
}

func (c Communicator) rank(s *Session) (int, error) {
	return c.query(s, native.FnCommRank, func(b *native.Bindings, out unsafe.Pointer) mpiruntime.Status {
		return b.CommRank(c.handle, out)
	})
}

func (c Communicator) size(s *Session) (int, error) {
	return c.query(s, native.FnCommSize, func(b *native.Bindings, out unsafe.Pointer) mpiruntime.Status {
		return b.CommSize(c.handle, out)
	})
}

// query calls fn with a 4-byte output cell and returns the cell's value.
func (c Communicator) query(s *Session, op string, fn func(*native.Bindings, unsafe.Pointer) mpiruntime.Status) (int, error) {
	v, err := arena.Do(func(a *arena.Arena) (int32, error) {
		cell := a.AllocInt32()
		st := s.invoke(func(b *native.Bindings) mpiruntime.Status {
			return fn(b, cell.Ptr())
		})
		if err := s.translate(op, st); err != nil {
			return 0, err
		}
		return cell.Int32(), nil
	})
	return int(v), err
}
