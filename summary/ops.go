// Package summary implements the per-function summary model: a
// caller-visible input/output relation used to model a call without
// re-descending into the callee. The engine here is generic over the
// abstract state type S; a concrete analysis instance (taint, value)
// supplies a StateOps[S] adapter exposing exactly the primitives the
// rename-and-apply protocol needs.
package summary

import "github.com/wasmstatic/core/lattice"

// StateOps is the minimal capability a domain must expose for its state
// type to participate in summary construction and application: rename_key,
// restrict, argument substitution, and ⊥, generalized so the same engine
// can host any per-variable-keyed domain.
type StateOps[S any] interface {
	// RenameKey removes the binding at from and reinserts it under to.
	// A no-op when from == to.
	RenameKey(s S, from, to lattice.Var) S
	// Restrict keeps only the bindings whose key is in keep.
	Restrict(s S, keep []lattice.Var) S
	// SubstituteArg resolves every binding in s that depends on formal
	// argument argIdx (as recorded by the domain's own summary-construction
	// seeding) by merging in the actual argument's abstract value, read out
	// of actual at actualKey.
	SubstituteArg(s S, argIdx int, actual S, actualKey lattice.Var) S
	// Bottom is the domain's ⊥ state.
	Bottom() S
}
