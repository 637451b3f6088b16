// Package errs collects the sentinel errors for every fatal analysis
// condition, plus the panic/recover plumbing the engine uses to unwind out
// of a fixpoint run the moment one of them is hit, instead of threading an
// error return through every Transfer method.
package errs

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sentinel errors, one per fatal analysis condition.
var (
	// ErrMultiReturn is raised when a function declares more than one
	// result type; this core only models single-valued returns.
	ErrMultiReturn = errors.New("multi-value return is unsupported")
	// ErrMalformedCFG is raised when a Cfg violates a structural
	// invariant the engine relies on (unreachable exit, dangling edge,
	// a Control block with more or fewer than one instruction).
	ErrMalformedCFG = errors.New("malformed control-flow graph")
	// ErrMismatchedCall is raised when a call site's actual-argument
	// count, or return arity, disagrees with the resolved callee's type.
	ErrMismatchedCall = errors.New("call site does not match callee signature")
	// ErrSubWordMemOp is raised by a load/store with an explicit
	// sub-natural-width memory access, a shape this core does not model.
	ErrSubWordMemOp = errors.New("sub-word memory access is unsupported")
	// ErrShapeMismatch is raised when a Result's Shape disagrees with
	// what the block structure expects (e.g. a Branch result flowing
	// out of a block with only one successor edge).
	ErrShapeMismatch = errors.New("transfer result shape does not match block structure")
)

// Fatal wraps a sentinel with call-site context and panics with it. The
// driver (intra.Run, interproc.Run) recovers with Recover at its
// top-level boundary and turns the panic back into a normal error return.
func Fatal(sentinel error, format string, args ...interface{}) {
	panic(&fatalError{errors.Wrapf(sentinel, format, args...)})
}

type fatalError struct{ err error }

func (e *fatalError) Error() string { return e.err.Error() }

// Recover must be deferred at the top of any function that calls a
// Transfer realization or walks a Cfg built from untrusted input. On a
// Fatal panic it sets *errp to the wrapped error and stops the unwind; any
// other panic value propagates unchanged.
func Recover(errp *error) {
	switch r := recover().(type) {
	case nil:
		return
	case *fatalError:
		*errp = r.err
	default:
		panic(r)
	}
}

// Warn logs a non-fatal condition the engine treats as recoverable,
// e.g. an unmodeled import encountered during summary seeding.
func Warn(format string, args ...interface{}) {
	logrus.Warnf(format, args...)
}
