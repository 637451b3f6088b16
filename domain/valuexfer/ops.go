package valuexfer

import (
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
)

// Ops adapts State to summary.StateOps, the value domain's analog of
// domain/taint.Ops.
type Ops struct{}

var _ summary.StateOps[State] = Ops{}

func (Ops) RenameKey(s State, from, to lattice.Var) State { return s.RenameKey(from, to) }

func (Ops) Restrict(s State, keep []lattice.Var) State { return s.Restrict(keep) }

func (Ops) SubstituteArg(s State, argIdx int, actual State, actualKey lattice.Var) State {
	return s.SubstituteArgValue(argIdx, actual.Get(actualKey))
}

func (Ops) Bottom() State { return Bottom() }
