package summary

import (
	"fmt"

	"github.com/wasmstatic/core/lattice"
)

// Summary is the per-function abstract contract a call site can rely on:
// a set of argument variables, the globals the function may have written by
// the time it returns, an optional return variable, and the abstract state
// restricted to exactly those keys.
type Summary[S any] struct {
	Args        []lattice.Var
	GlobalsPost []lattice.Var
	Ret         *lattice.Var
	State       S
}

// Validate checks the structural invariants a summary must hold: the
// argument count must match the function's declared arity, the
// globals-post set must list every global in the module exactly once, and
// Ret must be present iff the function has a declared return type.
func Validate[S any](s Summary[S], argCount, nglobals int, hasRet bool) error {
	if len(s.Args) != argCount {
		return fmt.Errorf("summary has %d args, want %d", len(s.Args), argCount)
	}
	if len(s.GlobalsPost) != nglobals {
		return fmt.Errorf("summary has %d globals_post entries, want %d", len(s.GlobalsPost), nglobals)
	}
	if hasRet != (s.Ret != nil) {
		return fmt.Errorf("summary ret presence %v does not match function return arity %v", s.Ret != nil, hasRet)
	}
	return nil
}

// New builds a Summary, validating it against the function's declared
// shape before returning it.
func New[S any](args, globalsPost []lattice.Var, ret *lattice.Var, state S, argCount, nglobals int, hasRet bool) (Summary[S], error) {
	s := Summary[S]{Args: args, GlobalsPost: globalsPost, Ret: ret, State: state}
	if err := Validate(s, argCount, nglobals, hasRet); err != nil {
		return Summary[S]{}, err
	}
	return s, nil
}

// FromFixpoint derives a Summary from the final state reached at a
// function's exit block, restricting it to exactly the keys the caller is
// allowed to observe: the post-call globals and the return variable.
func FromFixpoint[S any](ops StateOps[S], final S, args, globalsPost []lattice.Var, ret *lattice.Var) Summary[S] {
	keep := make([]lattice.Var, len(globalsPost), len(globalsPost)+1)
	copy(keep, globalsPost)
	if ret != nil {
		keep = append(keep, *ret)
	}
	return Summary[S]{
		Args:        args,
		GlobalsPost: globalsPost,
		Ret:         ret,
		State:       ops.Restrict(final, keep),
	}
}
