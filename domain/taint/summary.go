package taint

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/wasm"
)

// PureImports allow-lists host-function imports known not to introduce or
// propagate taint, so OfImport can hand back an exact ⊥ summary for them
// instead of the sound-but-coarse maximal one. Drawn from the WASI
// preview1 surface a module commonly imports for process control and
// output.
var PureImports = map[string]bool{
	"wasi_snapshot_preview1.fd_write": true,
	"wasi_snapshot_preview1.proc_exit": true,
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

// BottomSummary is the ⊥ starting point for a defined function's summary:
// no global or return value is yet known to depend on anything.
func BottomSummary(fn wasm.Func, nglobals int) summary.Summary[lattice.TaintMap] {
	return summary.Summary[lattice.TaintMap]{
		Args:        argVars(fn),
		GlobalsPost: globalVars(nglobals),
		Ret:         retVar(fn),
		State:       lattice.BottomTaintMap(),
	}
}

// TopSummary conservatively assumes every global and the return value (if
// any) depends on every one of the function's arguments. Selected by
// --seed=top to make every summary immediately usable, at the cost of
// reporting taint flows that later SCC iterations may retract.
func TopSummary(fn wasm.Func, nglobals int) summary.Summary[lattice.TaintMap] {
	s := BottomSummary(fn, nglobals)
	full := lattice.NoTaint()
	for i := range s.Args {
		full = full.Union(lattice.SingleTaint(lattice.ArgLabel(i)))
	}
	state := s.State
	for _, g := range s.GlobalsPost {
		state = state.Replace(g, full)
	}
	if s.Ret != nil {
		state = state.Replace(*s.Ret, full)
	}
	s.State = state
	return s
}

// OfImport builds the fixed summary standing in for an imported function,
// which the driver never re-derives from a fixpoint since no body is
// available to analyze. Allow-listed imports get an exact ⊥ summary;
// anything else gets the sound maximal over-approximation and a logged
// warning.
func OfImport(imp wasm.Import, nglobals int) summary.Summary[lattice.TaintMap] {
	fn := wasm.Func{Idx: imp.FuncIdx, Type: imp.Type}
	if PureImports[imp.QualifiedName()] {
		return BottomSummary(fn, nglobals)
	}
	errs.Warn("no taint model for import %s; assuming it may taint every global and its return value from any argument", imp.QualifiedName())
	return TopSummary(fn, nglobals)
}

// BuildSummary canonicalizes the final state reached at fn's exit block
// into a Summary: the value the exit's Return instruction yields (if any)
// is renamed to the fixed lattice.SummaryRetVar() key before restricting
// down to exactly the globals_post and ret keys a caller may observe.
func BuildSummary(mod wasm.Module, fn wasm.Func, exitState lattice.TaintMap) summary.Summary[lattice.TaintMap] {
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

	return summary.FromFixpoint[lattice.TaintMap](Ops{}, exitState, args, globalsPost, ret)
}
