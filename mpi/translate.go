package mpi

import (
	"fmt"

	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/arena"
	"github.com/wippyai/mpi-runtime/errors"
	"github.com/wippyai/mpi-runtime/native"
	"go.uber.org/zap"
)

// translate turns a native status into nil or an MPI failure. The message
// comes from MPI_Error_string, called in its own arena; if that call fails or
// yields nothing, the message falls back to the numeric code so the
// original failure is never hidden. Callers hold s.mu.
func (s *Session) translate(op string, st mpiruntime.Status) error {
	if st == mpiruntime.StatusSuccess {
		return nil
	}

	msg, rc := arena.Do(func(a *arena.Arena) (string, error) {
		buf := a.Alloc(native.MaxErrorString)
		length := a.AllocInt32()
		rc := s.invoke(func(b *native.Bindings) mpiruntime.Status {
			return b.ErrorString(st, buf.Ptr(), length.Ptr())
		})
		if rc != mpiruntime.StatusSuccess {
			return "", statusError(rc)
		}
		return buf.String(int(length.Int32())), nil
	})

	if rc != nil || msg == "" {
		Logger().Warn("MPI_Error_string could not describe status",
			zap.String("op", op),
			zap.Int32("status", int32(st)),
			zap.NamedError("lookup", rc))
		msg = fallbackMessage(st)
	}
	return errors.MPIFailure(op, msg)
}

func fallbackMessage(st mpiruntime.Status) string {
	return fmt.Sprintf("native error %d", st)
}

// statusError carries the status of a failed MPI_Error_string call for
// logging; it never reaches callers.
type statusError mpiruntime.Status

func (e statusError) Error() string {
	return fmt.Sprintf("%s returned %d", native.FnErrorString, int32(e))
}
