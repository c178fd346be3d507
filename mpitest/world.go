package mpitest

import (
	"fmt"
	"sync"
	"time"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/mpi"
	"github.com/wippyai/mpi-runtime/native"
	"golang.org/x/sync/errgroup"
)

// Status codes returned by the simulated library, numbered as in Open MPI.
const (
	ErrBuffer mpiruntime.Status = 1
	ErrCount  mpiruntime.Status = 2
	ErrType   mpiruntime.Status = 3
	ErrComm   mpiruntime.Status = 5
	ErrRoot   mpiruntime.Status = 8
	ErrArg    mpiruntime.Status = 13
	ErrOther  mpiruntime.Status = 16
)

var messages = map[mpiruntime.Status]string{
	0:         "MPI_SUCCESS: no errors",
	ErrBuffer: "MPI_ERR_BUFFER: invalid buffer pointer",
	ErrCount:  "MPI_ERR_COUNT: invalid count argument",
	ErrType:   "MPI_ERR_TYPE: invalid datatype",
	ErrComm:   "MPI_ERR_COMM: invalid communicator",
	ErrRoot:   "MPI_ERR_ROOT: invalid root",
	ErrArg:    "MPI_ERR_ARG: invalid argument of some other kind",
	ErrOther:  "MPI_ERR_OTHER: known error not in list",
}

// Message returns the text the simulated MPI_Error_string produces for st,
// and false when the simulator does not know the code.
func Message(st mpiruntime.Status) (string, bool) {
	m, ok := messages[st]
	return m, ok
}

// AnyRank makes a fault apply to whichever process calls first.
const AnyRank = -1

// World is a simulated MPI job: size processes living in one Go process and
// sharing an in-memory world communicator. Each process is reached through
// its own Resolver, so the real registry, bindings, arenas and error
// translation run unchanged against it.
type World struct {
	size    int
	world   *rendezvous
	procs   []*Process
	libOpts []native.Option

	callDelay time.Duration

	mu                sync.Mutex
	faults            []fault
	missing           map[string]bool
	invalid           map[string]bool
	errorStringBroken bool
}

type fault struct {
	fn     string
	rank   int
	status mpiruntime.Status
}

// Option configures a World.
type Option func(*World)

// WithMissingSymbols makes the listed symbols unresolvable.
func WithMissingSymbols(names ...string) Option {
	return func(w *World) {
		for _, n := range names {
			w.missing[n] = true
		}
	}
}

// WithInvalidComm makes the simulator reject the named predefined
// communicator ("world" or "self") with ErrComm, as a library does for a
// corrupt handle.
func WithInvalidComm(name string) Option {
	return func(w *World) {
		w.invalid[name] = true
	}
}

// WithBrokenErrorString makes MPI_Error_string fail for every code.
func WithBrokenErrorString() Option {
	return func(w *World) {
		w.errorStringBroken = true
	}
}

// WithCallDelay makes every simulated entry point take at least d.
func WithCallDelay(d time.Duration) Option {
	return func(w *World) {
		w.callDelay = d
	}
}

// WithLibraryOptions passes opts to native.Load in Run.
func WithLibraryOptions(opts ...native.Option) Option {
	return func(w *World) {
		w.libOpts = append(w.libOpts, opts...)
	}
}

// NewWorld creates a job of size processes.
func NewWorld(size int, opts ...Option) *World {
	if size < 1 {
		panic(fmt.Sprintf("mpitest: world size %d < 1", size))
	}
	w := &World{
		size:    size,
		world:   newRendezvous(size),
		missing: map[string]bool{},
		invalid: map[string]bool{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.procs = make([]*Process, size)
	for r := range w.procs {
		w.procs[r] = newProcess(w, r)
	}
	return w
}

// Size returns the number of processes.
func (w *World) Size() int {
	return w.size
}

// Process returns the simulated process of the given rank.
func (w *World) Process(rank int) *Process {
	return w.procs[rank]
}

// Fail makes the next call of fn by rank (or by any rank, with AnyRank)
// return status instead of running. Faults fire once, in the order added.
func (w *World) Fail(fn string, rank int, status mpiruntime.Status) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.faults = append(w.faults, fault{fn: fn, rank: rank, status: status})
}

func (w *World) takeFault(fn string, rank int) (mpiruntime.Status, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, f := range w.faults {
		if f.fn == fn && (f.rank == AnyRank || f.rank == rank) {
			w.faults = append(w.faults[:i], w.faults[i+1:]...)
			return f.status, true
		}
	}
	return 0, false
}

// Load returns a native library bound to the simulated process of rank.
func (w *World) Load(rank int) (*native.Library, error) {
	return native.Load(w.Process(rank), w.libOpts...)
}

// Run starts a session for every process and runs fn for all of them
// concurrently, as mpirun would launch the same program on each rank. It
// returns the first error any process reports. A process that returns early
// from a collective leaves the others blocked, exactly as in real MPI.
func (w *World) Run(fn func(rank int, s *mpi.Session) error) error {
	var g errgroup.Group
	for r := 0; r < w.size; r++ {
		g.Go(func() error {
			lib, err := w.Load(r)
			if err != nil {
				return fmt.Errorf("rank %d: %w", r, err)
			}
			defer lib.Close()
			return fn(r, mpi.NewSession(lib))
		})
	}
	return g.Wait()
}
