//go:build darwin || freebsd || linux || netbsd

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
	mpiruntime "github.com/wippyai/mpi-runtime"
	"github.com/wippyai/mpi-runtime/errors"
	"go.uber.org/zap"
)

// Open loads the shared library at path and resolves every binding from it.
// RTLD_GLOBAL is required so the library's own plugins can see its symbols.
// The handle is never closed.
func Open(path string, opts ...Option) (*Library, error) {
	if path == "" {
		path = DefaultPath
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Load(path, err)
	}

	lib, err := Load(dlResolver{handle: handle}, opts...)
	if err != nil {
		return nil, err
	}
	lib.path = path

	Logger().Info("opened native MPI library", zap.String("path", path))
	return lib, nil
}

// dlResolver resolves symbols with dlsym and binds them with purego.
type dlResolver struct {
	handle uintptr
}

func (d dlResolver) Resolve(name string) (mpiruntime.Handle, error) {
	addr, err := purego.Dlsym(d.handle, name)
	if err != nil {
		return 0, err
	}
	return mpiruntime.Handle(addr), nil
}

func (d dlResolver) Bind(fptr any, fn mpiruntime.Handle) (err error) {
	// RegisterFunc reports unsupported signatures by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	purego.RegisterFunc(fptr, uintptr(fn))
	return nil
}
