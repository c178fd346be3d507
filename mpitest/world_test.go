package mpitest

import (
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
	"unsafe"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/native"
)

func TestRendezvous_Rounds(t *testing.T) {
	const size, rounds = 4, 5
	r := newRendezvous(size)

	results := make([][][]float64, size)
	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < rounds; round++ {
				results[rank] = append(results[rank], r.meet(rank, float64(round*10+rank)))
			}
		}()
	}
	wg.Wait()

	for rank, got := range results {
		for round, values := range got {
			want := make([]float64, size)
			for i := range want {
				want[i] = float64(round*10 + i)
			}
			if !reflect.DeepEqual(values, want) {
				t.Errorf("rank %d round %d: %v, want %v", rank, round, values, want)
			}
		}
	}
}

func TestRendezvous_Single(t *testing.T) {
	r := newRendezvous(1)
	if got := r.meet(0, 3); !reflect.DeepEqual(got, []float64{3}) {
		t.Errorf("meet = %v", got)
	}
}

func TestNewWorld_InvalidSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewWorld(0) did not panic")
		}
	}()
	NewWorld(0)
}

func TestProcess_Resolve(t *testing.T) {
	w := NewWorld(2, WithMissingSymbols(native.FnBarrier))
	p := w.Process(1)

	if p.Rank() != 1 {
		t.Errorf("Rank = %d", p.Rank())
	}
	for _, name := range append(native.DataSymbols(), native.FnInit, native.FnGather) {
		h, err := p.Resolve(name)
		if err != nil || h == 0 {
			t.Errorf("Resolve(%s) = %#x, %v", name, uintptr(h), err)
		}
	}
	for _, name := range []string{native.FnBarrier, "MPI_Send"} {
		if _, err := p.Resolve(name); err == nil || !strings.Contains(err.Error(), name) {
			t.Errorf("Resolve(%s) err = %v", name, err)
		}
	}
}

func TestProcess_Bind(t *testing.T) {
	p := NewWorld(1).Process(0)
	barrier, err := p.Resolve(native.FnBarrier)
	if err != nil {
		t.Fatal(err)
	}
	world, _ := p.Resolve(native.SymCommWorld)

	t.Run("exact signature", func(t *testing.T) {
		var fn func(mpiruntime.Handle) mpiruntime.Status
		if err := p.Bind(&fn, barrier); err != nil {
			t.Fatalf("Bind: %v", err)
		}
		// not initialized yet
		if st := fn(world); st != ErrOther {
			t.Errorf("barrier before init = %d, want %d", st, ErrOther)
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		var fn func(uintptr) int32
		err := p.Bind(&fn, barrier)
		if err == nil || !strings.Contains(err.Error(), "signature mismatch") {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("not a pointer", func(t *testing.T) {
		var fn func(mpiruntime.Handle) mpiruntime.Status
		if err := p.Bind(fn, barrier); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("data symbol", func(t *testing.T) {
		var fn func(mpiruntime.Handle) mpiruntime.Status
		if err := p.Bind(&fn, world); err == nil {
			t.Error("expected error binding a data symbol")
		}
	})
}

func TestFail_Ordering(t *testing.T) {
	w := NewWorld(2)
	w.Fail(native.FnBarrier, 1, ErrComm)
	w.Fail(native.FnBarrier, AnyRank, ErrArg)
	w.Fail(native.FnBarrier, 1, ErrRoot)

	steps := []struct {
		rank int
		want mpiruntime.Status
		ok   bool
	}{
		{0, ErrArg, true},
		{1, ErrComm, true},
		{1, ErrRoot, true},
		{1, 0, false},
		{0, 0, false},
	}
	for i, step := range steps {
		st, ok := w.takeFault(native.FnBarrier, step.rank)
		if st != step.want || ok != step.ok {
			t.Errorf("step %d: takeFault(rank %d) = %d, %v; want %d, %v", i, step.rank, st, ok, step.want, step.ok)
		}
	}
	if _, ok := w.takeFault(native.FnGather, 0); ok {
		t.Error("fault leaked to another function")
	}
}

func TestMessage(t *testing.T) {
	if m, ok := Message(ErrComm); !ok || m != "MPI_ERR_COMM: invalid communicator" {
		t.Errorf("Message(ErrComm) = %q, %v", m, ok)
	}
	if _, ok := Message(999); ok {
		t.Error("Message(999) found")
	}
}

func TestErrorString(t *testing.T) {
	p := NewWorld(1).Process(0)
	buf := make([]byte, native.MaxErrorString)
	var n int32

	if st := p.errorString(ErrRoot, unsafe.Pointer(&buf[0]), unsafe.Pointer(&n)); st != 0 {
		t.Fatalf("status = %d", st)
	}
	if got := string(buf[:n]); got != "MPI_ERR_ROOT: invalid root" {
		t.Errorf("message = %q", got)
	}
	if buf[n] != 0 {
		t.Error("message not NUL-terminated")
	}

	if st := p.errorString(777, unsafe.Pointer(&buf[0]), unsafe.Pointer(&n)); st != ErrArg {
		t.Errorf("unknown code status = %d, want %d", st, ErrArg)
	}
	if p.Calls(native.FnErrorString) != 2 {
		t.Errorf("Calls = %d", p.Calls(native.FnErrorString))
	}
}

func TestGather_RejectsBadArguments(t *testing.T) {
	p := NewWorld(1).Process(0)
	argc := int32(0)
	if st := p.mpiInit(unsafe.Pointer(&argc), nil); st != 0 {
		t.Fatalf("init = %d", st)
	}
	if !p.Initialized() || len(p.Args()) != 0 {
		t.Fatalf("init state: %v %q", p.Initialized(), p.Args())
	}

	send, recv := 1.0, 0.0
	sp, rp := unsafe.Pointer(&send), unsafe.Pointer(&recv)
	tests := []struct {
		name string
		call func() mpiruntime.Status
		want mpiruntime.Status
	}{
		{"bad comm", func() mpiruntime.Status { return p.gather(sp, 1, addrDouble, rp, 1, addrDouble, 0, 0xdead) }, ErrComm},
		{"bad type", func() mpiruntime.Status { return p.gather(sp, 1, addrCommSelf, rp, 1, addrDouble, 0, addrCommWorld) }, ErrType},
		{"bad count", func() mpiruntime.Status { return p.gather(sp, 2, addrDouble, rp, 1, addrDouble, 0, addrCommWorld) }, ErrCount},
		{"bad root", func() mpiruntime.Status { return p.gather(sp, 1, addrDouble, rp, 1, addrDouble, 1, addrCommWorld) }, ErrRoot},
		{"null send", func() mpiruntime.Status { return p.gather(nil, 1, addrDouble, rp, 1, addrDouble, 0, addrCommWorld) }, ErrBuffer},
		{"null recv on root", func() mpiruntime.Status { return p.gather(sp, 1, addrDouble, nil, 1, addrDouble, 0, addrCommWorld) }, ErrBuffer},
		{"ok", func() mpiruntime.Status { return p.gather(sp, 1, addrDouble, rp, 1, addrDouble, 0, addrCommWorld) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if st := tt.call(); st != tt.want {
				t.Errorf("gather = %d, want %d", st, tt.want)
			}
		})
	}
	if recv != 1 {
		t.Errorf("recv = %v, want 1", recv)
	}

	if st := p.finalize(); st != 0 || !p.Finalized() {
		t.Errorf("finalize = %d, finalized %v", st, p.Finalized())
	}
	if st := p.mpiInit(nil, nil); st != ErrOther {
		t.Errorf("init after finalize = %d, want %d", st, ErrOther)
	}
}

func TestWorld_LoadBindsSimulator(t *testing.T) {
	w := NewWorld(1)
	lib, err := w.Load(0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer lib.Close()

	syms := lib.Symbols()
	if syms.CommWorld != addrCommWorld || syms.CommSelf != addrCommSelf || syms.Double != addrDouble {
		t.Errorf("symbols = %+v", syms)
	}
}

func TestPeakConcurrency(t *testing.T) {
	p := NewWorld(1, WithCallDelay(20*time.Millisecond)).Process(0)
	var cell int32

	p.commRank(addrCommWorld, unsafe.Pointer(&cell))
	if got := p.PeakConcurrency(); got != 1 {
		t.Fatalf("peak after one call = %d, want 1", got)
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out int32
			p.commSize(addrCommWorld, unsafe.Pointer(&out))
		}()
	}
	wg.Wait()
	if got := p.PeakConcurrency(); got < 2 {
		t.Errorf("peak with overlapping calls = %d, want at least 2", got)
	}
}
