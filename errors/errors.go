package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConfig    Phase = "config"    // configuration loading
	PhaseLoad      Phase = "load"      // opening the native library
	PhaseResolve   Phase = "resolve"   // symbol lookup
	PhaseBind      Phase = "bind"      // binding function signatures
	PhaseMarshal   Phase = "marshal"   // staging arguments in an arena
	PhaseNative    Phase = "native"    // a native call returned non-zero
	PhaseLifecycle Phase = "lifecycle" // init/finalize ordering
)

// Kind categorizes the error
type Kind string

const (
	KindSymbolNotFound Kind = "symbol_not_found"
	KindMPIFailure     Kind = "mpi_failure"
	KindLoad           Kind = "load"
	KindSignature      Kind = "signature"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the bindings
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Op      string
	Symbols []string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if len(e.Symbols) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Symbols, ", "))
	}

	if e.Detail != "" {
		if len(e.Symbols) > 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without a phase
// matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Message returns the human-readable part of the error without the phase
// and kind prefix.
func (e *Error) Message() string {
	return e.Detail
}

// Sentinel targets for errors.Is.
var (
	ErrSymbolNotFound = &Error{Kind: KindSymbolNotFound}
	ErrMPIFailure     = &Error{Kind: KindMPIFailure}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Op sets the operation name
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Symbols sets the native symbol names involved
func (b *Builder) Symbols(names ...string) *Builder {
	b.err.Symbols = names
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SymbolNotFound creates an error for required symbols absent from the
// loaded library.
func SymbolNotFound(names ...string) *Error {
	return New(PhaseResolve, KindSymbolNotFound).
		Symbols(names...).
		Detail("required symbol not found in native library").
		Build()
}

// MPIFailure creates a failure carrying the native library's message for a
// non-zero status.
func MPIFailure(op, message string) *Error {
	return New(PhaseNative, KindMPIFailure).Op(op).Detail("%s", message).Build()
}

// Lifecycle creates a failure for an operation issued in the wrong session
// state, such as before init or after finalize.
func Lifecycle(op, detail string) *Error {
	return New(PhaseLifecycle, KindMPIFailure).Op(op).Detail("%s", detail).Build()
}

// BufferMismatch creates a failure for a receive buffer whose length does
// not match the communicator.
func BufferMismatch(op string, have, want int) *Error {
	return New(PhaseMarshal, KindMPIFailure).
		Op(op).
		Detail("receive buffer holds %d values, communicator has %d processes", have, want).
		Build()
}

// Load creates a library loading error
func Load(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoad,
		Detail: fmt.Sprintf("open %s", path),
		Cause:  cause,
	}
}

// Signature creates an error for a binding whose Go signature the loader
// rejected.
func Signature(name string, cause error) *Error {
	return &Error{
		Phase:   PhaseBind,
		Kind:    KindSignature,
		Symbols: []string{name},
		Cause:   cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsMPIFailure reports whether err carries an MPI failure anywhere in its
// chain.
func IsMPIFailure(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindMPIFailure {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
