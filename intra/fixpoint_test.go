package intra_test

import (
	"testing"

	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/cfgtest"
	"github.com/wasmstatic/core/domain/taint"
	"github.com/wasmstatic/core/intra"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/wasm"
)

func noTargets(wasm.Module, int) []int { return nil }

func conf() intra.Config[lattice.TaintMap] {
	return intra.Config[lattice.TaintMap]{
		Xfer:            taint.Instance{},
		Summaries:       summary.NewTable[lattice.TaintMap](),
		Ops:             taint.Ops{},
		ResolveIndirect: noTargets,
	}
}

// Scenario 1: straight-line taint propagation through a couple of
// instructions in a single block.
func TestStraightLineTaintPropagation(t *testing.T) {
	l0 := lattice.Label(1)
	body := cfgtest.Build(0, 1, nil,
		cfgtest.Data(0, []cfg.Instr{
			{Label: 0, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(0)}, Seed: &l0},
			{Label: 1, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(1), lattice.Local(0)}},
		}, cfgtest.To(1)),
		cfgtest.Control(1, cfg.Instr{Label: 2, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(1)}}),
	)
	mod := &cfgtest.Module{}
	fn := wasm.Func{Idx: 0, Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Locals: []wasm.ValType{wasm.I32, wasm.I32}, Body: body}

	art, err := intra.Run(mod, fn, body, conf())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	final := art.Final(body)
	if got := final.Get(lattice.Local(1)); !got.Has(l0) {
		t.Fatalf("Local(1) = %v, want to carry label %v", got, l0)
	}
}

// Scenario 2: two branch arms taint different locals; the merge point
// should see the union of both.
func TestBranchJoinUnionsTaint(t *testing.T) {
	lTrue := lattice.Label(1)
	lFalse := lattice.Label(2)

	body := cfgtest.Build(0, 3, nil,
		cfgtest.Control(0, cfg.Instr{Label: 0, Op: cfg.OpBranch}, cfgtest.TakenTo(1), cfgtest.NotTakenTo(2)),
		cfgtest.Data(1, []cfg.Instr{{Label: 1, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(0)}, Seed: &lTrue}}, cfgtest.To(3)),
		cfgtest.Data(2, []cfg.Instr{{Label: 2, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(0)}, Seed: &lFalse}}, cfgtest.To(3)),
		cfgtest.Control(3, cfg.Instr{Label: 3, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(0)}}),
	)
	mod := &cfgtest.Module{}
	fn := wasm.Func{Idx: 0, Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Locals: []wasm.ValType{wasm.I32}, Body: body}

	art, err := intra.Run(mod, fn, body, conf())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	final := art.Final(body)
	got := final.Get(lattice.Local(0))
	if !got.Has(lTrue) || !got.Has(lFalse) {
		t.Fatalf("Local(0) = %v, want to carry both %v and %v", got, lTrue, lFalse)
	}
}

// Scenario 3: a loop with a widened header converges and preserves the
// taint introduced before the loop.
func TestLoopWideningConverges(t *testing.T) {
	l0 := lattice.Label(1)
	body := cfgtest.Build(0, 4, map[cfg.BlockID]bool{1: true},
		cfgtest.Data(0, []cfg.Instr{{Label: 0, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(0)}, Seed: &l0}}, cfgtest.To(1)),
		cfgtest.Merge(1, cfgtest.To(2)),
		cfgtest.Data(2, []cfg.Instr{{Label: 1, Op: cfg.OpOther, Vars: []cfg.Var{lattice.Local(1), lattice.Local(0)}}}, cfgtest.To(3)),
		cfgtest.Control(3, cfg.Instr{Label: 2, Op: cfg.OpBranch}, cfgtest.TakenTo(1), cfgtest.NotTakenTo(4)),
		cfgtest.Control(4, cfg.Instr{Label: 3, Op: cfg.OpReturn, Vars: []cfg.Var{lattice.Local(1)}}),
	)
	mod := &cfgtest.Module{}
	fn := wasm.Func{Idx: 0, Type: wasm.FuncType{Results: []wasm.ValType{wasm.I32}}, Locals: []wasm.ValType{wasm.I32, wasm.I32}, Body: body}

	art, err := intra.Run(mod, fn, body, conf())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	final := art.Final(body)
	if got := final.Get(lattice.Local(1)); !got.Has(l0) {
		t.Fatalf("Local(1) = %v, want to carry label %v after the loop converges", got, l0)
	}
}
