package native

import (
	"errors"
	"runtime"
	"sync"
)

var errThreadStopped = errors.New("native: call thread stopped")

// callThread funnels native calls onto one locked OS thread, matching the
// MPI_THREAD_FUNNELED contract of libraries initialized with MPI_Init.
type callThread struct {
	calls    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

func startCallThread() *callThread {
	t := &callThread{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	started := make(chan struct{})
	go t.loop(started)
	<-started
	return t
}

func (t *callThread) loop(started chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	close(started)
	for {
		select {
		case fn := <-t.calls:
			fn()
		case <-t.done:
			return
		}
	}
}

func (t *callThread) do(fn func()) {
	var (
		finished = make(chan struct{})
		panicVal any
	)
	call := func() {
		defer close(finished)
		defer func() { panicVal = recover() }()
		fn()
	}

	select {
	case t.calls <- call:
	case <-t.done:
		panic(errThreadStopped)
	}
	<-finished

	if panicVal != nil {
		panic(panicVal)
	}
}

func (t *callThread) stop() {
	t.stopOnce.Do(func() { close(t.done) })
}
