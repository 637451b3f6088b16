package interproc_test

import (
	"testing"

	"github.com/wasmstatic/core/callgraph"
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/cfgtest"
	"github.com/wasmstatic/core/domain/taint"
	"github.com/wasmstatic/core/interproc"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/wasm"
)

func noTargets(wasm.Module, int) []int { return nil }

func runDriver(t *testing.T, mod wasm.Module, mode summary.SeedMode) summary.Table[lattice.TaintMap] {
	t.Helper()
	g := callgraph.Build(mod, callgraph.ResolveIndirect)
	sccs := g.Compute()
	schedule := callgraph.Schedule(mod, sccs)
	table := summary.Seed[lattice.TaintMap](mode, mod, taint.BottomSummary, taint.TopSummary, taint.OfImport)

	result, err := interproc.Run[lattice.TaintMap](mod, taint.Instance{}, taint.Ops{}, noTargets, taint.BuildSummary, table, schedule)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return result.Summaries
}

// Scenario 4: a direct call's summary propagates a real taint source
// through the callee's dependency relation into the caller's own summary.
func TestDirectCallPropagatesThroughSummary(t *testing.T) {
	a := wasm.Func{
		Idx:  0,
		Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		Body: cfgtest.Build(0, 0, nil,
			cfgtest.Control(0, cfg.Instr{Label: 0, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(0)}}),
		),
	}
	l := lattice.Label(7)
	b := wasm.Func{
		Idx:    1,
		Type:   wasm.FuncType{Results: []wasm.ValType{wasm.I32}},
		Locals: []wasm.ValType{wasm.I32, wasm.I32},
		Body: cfgtest.Build(0, 2, nil,
			cfgtest.Data(0, []cfg.Instr{{Label: 0, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(0)}, Seed: &l}}, cfgtest.To(1)),
			cfgtest.Data(1, []cfg.Instr{{Label: 1, Op: cfg.OpCall, CalleeIdx: 0, Vars: []cfg.Var{lattice.Local(0), lattice.Local(1)}}}, cfgtest.To(2)),
			cfgtest.Control(2, cfg.Instr{Label: 2, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(1)}}),
		),
	}
	mod := &cfgtest.Module{Defined: []wasm.Func{a, b}}

	table := runDriver(t, mod, summary.SeedBottom)

	bSummary, ok := table.Get(1)
	if !ok {
		t.Fatalf("no summary computed for function 1")
	}
	if bSummary.Ret == nil {
		t.Fatalf("function 1's summary has no Ret key")
	}
	if got := bSummary.State.Get(*bSummary.Ret); !got.Has(l) {
		t.Fatalf("function 1's return taint = %v, want to carry label %v", got, l)
	}
}

// Scenario 5: a self-recursive function's single-node SCC still converges
// to a stable summary without looping forever.
func TestRecursiveSCCConverges(t *testing.T) {
	fn := wasm.Func{
		Idx:    0,
		Type:   wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		Locals: []wasm.ValType{wasm.I32, wasm.I32},
		Body: cfgtest.Build(0, 1, nil,
			cfgtest.Data(0, []cfg.Instr{{Label: 0, Op: cfg.OpCall, CalleeIdx: 0, Vars: []cfg.Var{lattice.Local(0), lattice.Local(1)}}}, cfgtest.To(1)),
			cfgtest.Control(1, cfg.Instr{Label: 1, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(1)}}),
		),
	}
	mod := &cfgtest.Module{Defined: []wasm.Func{fn}}

	table := runDriver(t, mod, summary.SeedBottom)

	s, ok := table.Get(0)
	if !ok {
		t.Fatalf("no summary computed for the recursive function")
	}
	if s.Ret == nil {
		t.Fatalf("summary has no Ret key")
	}
	if got := s.State.Get(*s.Ret); got.Size() != 0 {
		t.Fatalf("expected no taint on a call whose body never relates its argument to its result, got %v", got)
	}
}

// Scenario 6: calling an unmodeled import conservatively taints the result
// with a dependency on every actual argument.
func TestUnmodeledImportConservativeSummary(t *testing.T) {
	imp := wasm.Import{FuncIdx: 0, Module: "env", Name: "mystery", Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}}}
	fn := wasm.Func{
		Idx:    1,
		Type:   wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}},
		Locals: []wasm.ValType{wasm.I32, wasm.I32},
		Body: cfgtest.Build(0, 1, nil,
			cfgtest.Data(0, []cfg.Instr{{Label: 0, Op: cfg.OpCall, CalleeIdx: 0, Vars: []cfg.Var{lattice.Local(0), lattice.Local(1)}}}, cfgtest.To(1)),
			cfgtest.Control(1, cfg.Instr{Label: 1, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(1)}}),
		),
	}
	mod := &cfgtest.Module{Imports: []wasm.Import{imp}, Defined: []wasm.Func{fn}}

	table := runDriver(t, mod, summary.SeedBottom)

	s, ok := table.Get(1)
	if !ok {
		t.Fatalf("no summary computed for function 1")
	}
	if got := s.State.Get(*s.Ret); !got.Has(lattice.ArgLabel(0)) {
		t.Fatalf("expected function 1's result to conservatively depend on its own argument 0, got %v", got)
	}
}
