//go:build darwin || freebsd || linux || netbsd

package native

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/mpi-runtime/errors"
)

func TestOpen_MissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/libmpi.so")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindLoad || e.Phase != errors.PhaseLoad {
		t.Fatalf("Open err = %v, want load error", err)
	}
}

// A failed dlopen must not disturb call threads started and stopped around it.
func TestOpen_FailureInterleavedWithCallThreads(t *testing.T) {
	for i := 0; i < 50; i++ {
		if _, err := Open("/nonexistent/libmpi.so"); err == nil {
			t.Fatal("Open of a missing library succeeded")
		}

		lib, err := Load(newFakeResolver())
		if err != nil {
			t.Fatalf("iteration %d: Load: %v", i, err)
		}
		ran := false
		lib.Call(func() { ran = true })
		if !ran {
			t.Fatalf("iteration %d: call did not run", i)
		}
		if err := lib.Close(); err != nil {
			t.Fatalf("iteration %d: Close: %v", i, err)
		}
	}
}
