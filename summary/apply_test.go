package summary_test

import (
	"testing"

	"github.com/wasmstatic/core/domain/taint"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
)

func TestApplySubstitutesArgumentsAndRenamesReturn(t *testing.T) {
	// callee: fn(a) -> global 0 depends on a; return value depends on a too.
	ret := lattice.SummaryRetVar()
	state := lattice.BottomTaintMap().
		Replace(lattice.GlobalVar(0), lattice.SingleTaint(lattice.ArgLabel(0))).
		Replace(ret, lattice.SingleTaint(lattice.ArgLabel(0)))

	callee := summary.Summary[lattice.TaintMap]{
		Args:        []lattice.Var{lattice.Local(0)},
		GlobalsPost: []lattice.Var{lattice.GlobalVar(0)},
		Ret:         &ret,
		State:       state,
	}

	// caller: actual argument at the call site is Local(7), already tainted.
	callSiteResult := lattice.Local(9)
	callerState := lattice.BottomTaintMap().Replace(lattice.Local(7), lattice.SingleTaint(lattice.Label(99)))

	out, err := summary.Apply[lattice.TaintMap](taint.Ops{}, func(a, b lattice.TaintMap) lattice.TaintMap { return a.Join(b) },
		callee, []lattice.Var{lattice.Local(7)}, &callSiteResult, callerState)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if got := out.Get(lattice.GlobalVar(0)); !got.Has(lattice.Label(99)) {
		t.Fatalf("global 0 = %v, want to carry label 99", got)
	}
	if got := out.Get(callSiteResult); !got.Has(lattice.Label(99)) {
		t.Fatalf("call result = %v, want to carry label 99", got)
	}
	if got := out.Get(lattice.Local(7)); !got.Has(lattice.Label(99)) {
		t.Fatalf("caller's own bindings should survive the merge, got %v for Local(7)", got)
	}
}

func TestApplyRejectsArityMismatch(t *testing.T) {
	callee := summary.Summary[lattice.TaintMap]{
		Args:        []lattice.Var{lattice.Local(0), lattice.Local(1)},
		GlobalsPost: nil,
		Ret:         nil,
		State:       lattice.BottomTaintMap(),
	}
	_, err := summary.Apply[lattice.TaintMap](taint.Ops{}, func(a, b lattice.TaintMap) lattice.TaintMap { return a.Join(b) },
		callee, []lattice.Var{lattice.Local(7)}, nil, lattice.BottomTaintMap())
	if err == nil {
		t.Fatalf("expected an arity-mismatch error")
	}
}
