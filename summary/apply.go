package summary

import (
	"github.com/pkg/errors"
	"github.com/wasmstatic/core/lattice"
)

// Apply applies callee's summary at a call site in three stages: rename
// the callee's return key to the call's designated result var, re-anchor
// the globals_post keys to the shared module-global numbering, substitute
// each formal argument's dependency with the actual argument's abstract
// value, then merge the result into the caller's pre-call state.
func Apply[S any](ops StateOps[S], join func(a, b S) S, callee Summary[S], actuals []lattice.Var, retVar *lattice.Var, callerState S) (S, error) {
	if (callee.Ret != nil) != (retVar != nil) {
		return callerState, errors.Errorf("summary/apply: callee return arity %v does not match call site %v", callee.Ret != nil, retVar != nil)
	}
	if len(actuals) != len(callee.Args) {
		return callerState, errors.Errorf("summary/apply: call has %d actuals, callee summary declares %d formals", len(actuals), len(callee.Args))
	}

	result := callee.State

	// Stage 1: rename the return key.
	if callee.Ret != nil {
		result = ops.RenameKey(result, *callee.Ret, *retVar)
	}

	// Stage 2: rename global keys. A no-op under the shared module-global
	// numbering, kept explicit so the protocol stays three stages even
	// when renaming a global to itself does nothing.
	for _, g := range callee.GlobalsPost {
		result = ops.RenameKey(result, g, g)
	}

	// Stage 3: substitute formal-argument dependencies with actuals.
	for i, a := range actuals {
		result = ops.SubstituteArg(result, i, callerState, a)
	}

	return join(callerState, result), nil
}
