package mpitest

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/native"
)

// Fake addresses handed out for the simulated library's symbols.
const (
	addrCommWorld mpiruntime.Handle = 0x1000 + iota*0x10
	addrCommSelf
	addrDouble
	addrFuncBase
)

// Process is one simulated MPI process. It implements mpiruntime.Resolver
// and serves the bound entry points from Go, reading and writing argument
// memory through the pointers it receives exactly as a native library
// would.
type Process struct {
	world *World
	rank  int
	self  *rendezvous
	addrs map[string]mpiruntime.Handle
	funcs map[mpiruntime.Handle]reflect.Value

	inflight atomic.Int32
	peak     atomic.Int32

	mu          sync.Mutex
	initialized bool
	finalized   bool
	args        []string
	calls       map[string]int
}

var _ mpiruntime.Resolver = (*Process)(nil)

func newProcess(w *World, rank int) *Process {
	p := &Process{
		world: w,
		rank:  rank,
		self:  newRendezvous(1),
		addrs: map[string]mpiruntime.Handle{
			native.SymCommWorld: addrCommWorld,
			native.SymCommSelf:  addrCommSelf,
			native.SymDouble:    addrDouble,
		},
		funcs: map[mpiruntime.Handle]reflect.Value{},
		calls: map[string]int{},
	}

	entries := map[string]any{
		native.FnInit:        p.mpiInit,
		native.FnCommRank:    p.commRank,
		native.FnCommSize:    p.commSize,
		native.FnErrorString: p.errorString,
		native.FnFinalize:    p.finalize,
		native.FnGather:      p.gather,
		native.FnBarrier:     p.barrier,
	}
	for i, name := range native.EntryPoints() {
		addr := addrFuncBase + mpiruntime.Handle(i*0x10)
		p.addrs[name] = addr
		p.funcs[addr] = reflect.ValueOf(entries[name])
	}
	return p
}

// Rank returns the process's rank in the world communicator.
func (p *Process) Rank() int {
	return p.rank
}

// Resolve implements mpiruntime.Resolver.
func (p *Process) Resolve(name string) (mpiruntime.Handle, error) {
	if p.world.missing[name] {
		return 0, fmt.Errorf("undefined symbol: %s", name)
	}
	h, ok := p.addrs[name]
	if !ok {
		return 0, fmt.Errorf("undefined symbol: %s", name)
	}
	return h, nil
}

// Bind implements mpiruntime.Resolver. The Go signature behind fptr must
// match the simulated entry point exactly.
func (p *Process) Bind(fptr any, fn mpiruntime.Handle) error {
	impl, ok := p.funcs[fn]
	if !ok {
		return fmt.Errorf("address %#x is not a function", uintptr(fn))
	}
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("bind target must be a pointer to a func, got %T", fptr)
	}
	if v.Elem().Type() != impl.Type() {
		return fmt.Errorf("signature mismatch: have %s, native is %s", v.Elem().Type(), impl.Type())
	}
	v.Elem().Set(impl)
	return nil
}

// PeakConcurrency returns the largest number of native calls that were
// ever executing on this process at the same time.
func (p *Process) PeakConcurrency() int {
	return int(p.peak.Load())
}

// Args returns the argument vector received by MPI_Init.
func (p *Process) Args() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.args...)
}

// Calls returns how many times fn has been invoked on this process.
func (p *Process) Calls(fn string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[fn]
}

// Initialized reports whether MPI_Init succeeded on this process.
func (p *Process) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Finalized reports whether MPI_Finalize ran on this process.
func (p *Process) Finalized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finalized
}

// track marks a call as executing until the returned func runs, holding it
// for the world's call delay so overlapping entries are observable.
func (p *Process) track() func() {
	n := p.inflight.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	if d := p.world.callDelay; d > 0 {
		time.Sleep(d)
	}
	return func() { p.inflight.Add(-1) }
}

// enter records a call and reports an injected fault or a lifecycle
// violation. Functions MPI allows outside init/finalize pass active=false.
func (p *Process) enter(fn string, active bool) (mpiruntime.Status, bool) {
	p.mu.Lock()
	p.calls[fn]++
	usable := p.initialized && !p.finalized
	p.mu.Unlock()

	if st, ok := p.world.takeFault(fn, p.rank); ok {
		return st, true
	}
	if active && !usable {
		return ErrOther, true
	}
	return 0, false
}

// comm maps a communicator handle to this process's view of it.
func (p *Process) comm(h mpiruntime.Handle) (rank, size int, r *rendezvous, ok bool) {
	switch h {
	case addrCommWorld:
		if p.world.invalid["world"] {
			return 0, 0, nil, false
		}
		return p.rank, p.world.size, p.world.world, true
	case addrCommSelf:
		if p.world.invalid["self"] {
			return 0, 0, nil, false
		}
		return 0, 1, p.self, true
	}
	return 0, 0, nil, false
}

func (p *Process) mpiInit(argc, argv unsafe.Pointer) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnInit, false); failed {
		return st
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized || p.finalized {
		return ErrOther
	}

	var args []string
	if argc != nil && argv != nil {
		n := int(*(*int32)(argc))
		vec := *(*unsafe.Pointer)(argv)
		for i := 0; i < n && vec != nil; i++ {
			s := *(*unsafe.Pointer)(unsafe.Add(vec, i*int(unsafe.Sizeof(uintptr(0)))))
			args = append(args, cString(s))
		}
	}
	p.args = args
	p.initialized = true
	return 0
}

func (p *Process) commRank(h mpiruntime.Handle, out unsafe.Pointer) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnCommRank, true); failed {
		return st
	}
	rank, _, _, ok := p.comm(h)
	if !ok {
		return ErrComm
	}
	if out == nil {
		return ErrArg
	}
	*(*int32)(out) = int32(rank)
	return 0
}

func (p *Process) commSize(h mpiruntime.Handle, out unsafe.Pointer) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnCommSize, true); failed {
		return st
	}
	_, size, _, ok := p.comm(h)
	if !ok {
		return ErrComm
	}
	if out == nil {
		return ErrArg
	}
	*(*int32)(out) = int32(size)
	return 0
}

func (p *Process) errorString(code mpiruntime.Status, buf, resultLen unsafe.Pointer) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnErrorString, false); failed {
		return st
	}
	if p.world.errorStringBroken {
		return ErrArg
	}
	msg, ok := messages[code]
	if !ok || buf == nil || resultLen == nil {
		return ErrArg
	}

	dst := unsafe.Slice((*byte)(buf), native.MaxErrorString)
	n := copy(dst[:native.MaxErrorString-1], msg)
	dst[n] = 0
	*(*int32)(resultLen) = int32(n)
	return 0
}

func (p *Process) finalize() mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnFinalize, true); failed {
		return st
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finalized = true
	return 0
}

func (p *Process) gather(send unsafe.Pointer, sendCount int32, sendType mpiruntime.Handle,
	recv unsafe.Pointer, recvCount int32, recvType mpiruntime.Handle,
	root int32, h mpiruntime.Handle) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnGather, true); failed {
		return st
	}

	rank, size, r, ok := p.comm(h)
	switch {
	case !ok:
		return ErrComm
	case sendType != addrDouble:
		return ErrType
	case sendCount != 1:
		return ErrCount
	case root < 0 || int(root) >= size:
		return ErrRoot
	case send == nil:
		return ErrBuffer
	}
	isRoot := rank == int(root)
	if isRoot {
		switch {
		case recvType != addrDouble:
			return ErrType
		case recvCount != 1:
			return ErrCount
		case recv == nil:
			return ErrBuffer
		}
	}

	values := r.meet(rank, *(*float64)(send))
	if isRoot {
		copy(unsafe.Slice((*float64)(recv), size), values)
	}
	return 0
}

func (p *Process) barrier(h mpiruntime.Handle) mpiruntime.Status {
	defer p.track()()
	if st, failed := p.enter(native.FnBarrier, true); failed {
		return st
	}
	rank, _, r, ok := p.comm(h)
	if !ok {
		return ErrComm
	}
	r.meet(rank, 0)
	return 0
}

func cString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
