// Package taint is a Transfer[lattice.TaintMap] realization tracking, for
// every local and symbolic variable, the set of taint sources that may
// have flowed into it.
package taint

import (
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
)

// Ops adapts lattice.TaintMap to summary.StateOps, so the generic
// summary-application engine can rename, restrict, and substitute into a
// TaintMap without summary importing lattice's taint-specific API.
type Ops struct{}

var _ summary.StateOps[lattice.TaintMap] = Ops{}

func (Ops) RenameKey(s lattice.TaintMap, from, to lattice.Var) lattice.TaintMap {
	return s.RenameKey(from, to)
}

func (Ops) Restrict(s lattice.TaintMap, keep []lattice.Var) lattice.TaintMap {
	return s.Restrict(keep)
}

func (Ops) SubstituteArg(s lattice.TaintMap, argIdx int, actual lattice.TaintMap, actualKey lattice.Var) lattice.TaintMap {
	return s.SubstituteArgLabel(argIdx, actual.Get(actualKey))
}

func (Ops) Bottom() lattice.TaintMap { return lattice.BottomTaintMap() }
