package valuexfer

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/domain/value"
	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/wasm"
)

// PureImports allow-lists host-function imports known to have no effect on
// globals or linear memory, the value domain's analog of
// domain/taint.PureImports.
var PureImports = map[string]bool{
	"wasi_snapshot_preview1.proc_exit":   true,
	"wasi_snapshot_preview1.sched_yield": true,
}

func argVars(fn wasm.Func) []lattice.Var {
	args := make([]lattice.Var, len(fn.Type.Params))
	for i := range args {
		args[i] = lattice.Local(i)
	}
	return args
}

func globalVars(nglobals int) []lattice.Var {
	gs := make([]lattice.Var, nglobals)
	for i := range gs {
		gs[i] = lattice.GlobalVar(i)
	}
	return gs
}

func retVar(fn wasm.Func) *lattice.Var {
	if len(fn.Type.Results) > 1 {
		errs.Fatal(errs.ErrMultiReturn, "function %d declares %d results", fn.Idx, len(fn.Type.Results))
	}
	if len(fn.Type.Results) == 0 {
		return nil
	}
	v := lattice.SummaryRetVar()
	return &v
}

func retType(fn wasm.Func) wasm.ValType {
	if len(fn.Type.Results) == 0 {
		return 0
	}
	return fn.Type.Results[0]
}

// BottomSummary is the ⊥ starting point for a defined function's summary:
// no global or return value is yet known to hold anything.
func BottomSummary(fn wasm.Func, nglobals int) summary.Summary[State] {
	return summary.Summary[State]{
		Args:        argVars(fn),
		GlobalsPost: globalVars(nglobals),
		Ret:         retVar(fn),
		State:       Bottom(),
	}
}

// TopSummary conservatively assumes every global and the return value (if
// any) could hold anything — the value domain's answer to "unknown effect"
// needs no dependency bookkeeping the way the taint domain's TopSummary
// does, since ⊤ is already the maximally conservative element on its own.
func TopSummary(fn wasm.Func, nglobals int) summary.Summary[State] {
	s := BottomSummary(fn, nglobals)
	state := s.State
	for _, g := range s.GlobalsPost {
		state = state.Replace(g, value.Top(0))
	}
	if s.Ret != nil {
		state = state.Replace(*s.Ret, value.Top(retType(fn)))
	}
	s.State = state
	return s
}

// OfImport builds the fixed summary standing in for an imported function.
// Allow-listed imports get an exact ⊥ summary; anything else gets the sound
// maximal over-approximation and a logged warning.
func OfImport(imp wasm.Import, nglobals int) summary.Summary[State] {
	fn := wasm.Func{Idx: imp.FuncIdx, Type: imp.Type}
	if PureImports[imp.QualifiedName()] {
		return BottomSummary(fn, nglobals)
	}
	errs.Warn("no value model for import %s; assuming it may write any global and return an unknown value", imp.QualifiedName())
	return TopSummary(fn, nglobals)
}

// BuildSummary canonicalizes the final state reached at fn's exit block
// into a Summary, renaming the exit's returned value to the fixed
// lattice.SummaryRetVar() key before restricting to exactly the observable
// keys. Memory is always carried through unrestricted (see State.Restrict).
func BuildSummary(mod wasm.Module, fn wasm.Func, exitState State) summary.Summary[State] {
	nglobals := mod.NumGlobals()
	args := argVars(fn)
	globalsPost := globalVars(nglobals)
	ret := retVar(fn)

	exit, ok := fn.Body.Blocks[fn.Body.Exit]
	if !ok {
		errs.Fatal(errs.ErrMalformedCFG, "function %d has no exit block %d", fn.Idx, fn.Body.Exit)
	}
	if ret != nil {
		ctrl := exit.Control
		if ctrl.Op != cfg.OpReturn {
			errs.Fatal(errs.ErrMalformedCFG, "function %d exit block's control instruction is not a return", fn.Idx)
		}
		actual, hasVal := ctrl.Ret(true)
		if !hasVal {
			errs.Fatal(errs.ErrMismatchedCall, "function %d declares a result but its return carries no value", fn.Idx)
		}
		exitState = exitState.RenameKey(actual, *ret)
	}

	return summary.FromFixpoint[State](Ops{}, exitState, args, globalsPost, ret)
}
