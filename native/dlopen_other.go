//go:build !(darwin || freebsd || linux || netbsd)

package native

import (
	stderrors "errors"

	"github.com/wippyai/mpi-runtime/errors"
)

// Open is unavailable on platforms without dlopen; use Load with a custom
// Resolver instead.
func Open(path string, opts ...Option) (*Library, error) {
	if path == "" {
		path = DefaultPath
	}
	return nil, errors.Load(path, stderrors.New("dynamic loading is not supported on this platform"))
}
