package native

import (
	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/errors"
	"go.uber.org/zap"
)

// DefaultPath is the well-known name of the native MPI library.
const DefaultPath = "libmpi.so"

// Library is a loaded native MPI library: its resolved symbols, its bound
// entry points and the thread native calls run on. A Library is immutable
// after Load and lives for the rest of the process.
type Library struct {
	path     string
	symbols  Symbols
	bindings Bindings
	thread   *callThread
}

type options struct {
	callerThread bool
}

// Option configures a Library.
type Option func(*options)

// WithCallerThread runs native calls on the calling goroutine's thread
// instead of a dedicated OS thread. Callers are then responsible for
// issuing every call from one thread if the library requires it.
func WithCallerThread() Option {
	return func(o *options) {
		o.callerThread = true
	}
}

// Load resolves every symbol the bindings need through r and binds each
// entry point to its fixed signature. Resolution is eager and total: if any
// name is missing, Load fails with a single SymbolNotFound error listing all
// of them and binds nothing.
func Load(r mpiruntime.Resolver, opts ...Option) (*Library, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var missing []string
	resolve := func(name string) mpiruntime.Handle {
		h, err := r.Resolve(name)
		if err != nil || h == 0 {
			missing = append(missing, name)
			return 0
		}
		Logger().Debug("resolved native symbol",
			zap.String("symbol", name),
			zap.Uintptr("addr", uintptr(h)))
		return h
	}

	lib := &Library{}
	lib.symbols = Symbols{
		CommWorld: resolve(SymCommWorld),
		CommSelf:  resolve(SymCommSelf),
		Double:    resolve(SymDouble),
	}

	table := lib.bindings.table()
	addrs := make([]mpiruntime.Handle, len(table))
	for i, e := range table {
		addrs[i] = resolve(e.name)
	}

	if len(missing) > 0 {
		Logger().Error("native library is missing required symbols",
			zap.Strings("symbols", missing))
		return nil, errors.SymbolNotFound(missing...)
	}

	for i, e := range table {
		if err := r.Bind(e.fptr, addrs[i]); err != nil {
			return nil, errors.Signature(e.name, err)
		}
	}

	if !o.callerThread {
		lib.thread = startCallThread()
	}
	return lib, nil
}

// Path returns the file the library was opened from, or "" when it was
// loaded through a custom Resolver.
func (l *Library) Path() string {
	return l.path
}

// Symbols returns the resolved predefined objects.
func (l *Library) Symbols() Symbols {
	return l.symbols
}

// Bindings returns the bound entry points. Calls through them should be
// issued inside Call.
func (l *Library) Bindings() *Bindings {
	return &l.bindings
}

// Call runs fn on the library's call thread and waits for it to return.
// A panic in fn is re-raised on the caller.
func (l *Library) Call(fn func()) {
	if l.thread == nil {
		fn()
		return
	}
	l.thread.do(fn)
}

// Close stops the dedicated call thread. The native library itself stays
// mapped until the process exits. With a dedicated thread, Call panics
// after Close.
func (l *Library) Close() error {
	if l.thread != nil {
		l.thread.stop()
	}
	return nil
}
