package taint

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/transfer"
	"github.com/wasmstatic/core/wasm"
)

// Instance is the taint domain's Transfer realization. It carries no state
// of its own — every method is pure in its (module, cfg, instr, pre)
// arguments — so the zero value is the whole analysis instance.
type Instance struct{}

var _ transfer.Transfer[lattice.TaintMap] = Instance{}

func (Instance) BottomState(g *cfg.Cfg) lattice.TaintMap { return lattice.BottomTaintMap() }

func (Instance) JoinState(a, b lattice.TaintMap) lattice.TaintMap { return a.Join(b) }

func (Instance) WidenState(a, b lattice.TaintMap) lattice.TaintMap { return a.Widen(b) }

func (Instance) EqualState(a, b lattice.TaintMap) bool { return a.Eq(b) }

// DomainInit seeds every parameter with its own ArgLabel placeholder,
// leaving every other local and global at ⊥. This is what lets a single
// intra-procedural fixpoint run double as summary construction: the
// resulting state relates each globals_post/ret key to the formal
// arguments it depends on, in a form summary.Apply can later substitute at
// a call site. Real taint sources enter only through an import's summary
// (see OfImport) or, in test fixtures, through an instruction's Seed label.
func (Instance) DomainInit(mod wasm.Module, fn wasm.Func) lattice.TaintMap {
	m := lattice.BottomTaintMap()
	for i := range fn.Type.Params {
		m = m.Replace(lattice.Local(i), lattice.SingleTaint(lattice.ArgLabel(i)))
	}
	return m
}

// DataInstrTransfer propagates taint across one ordinary instruction: the
// result var's taint set is the union of its operands' taint sets, unless
// the instruction carries a Seed label (a test fixture's synthetic taint
// source) in which case the result is exactly {*Seed} regardless of
// operands.
func (Instance) DataInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre lattice.TaintMap) lattice.TaintMap {
	switch instr.Op {
	case cfg.OpLoad:
		if instr.MemSize != 0 {
			errs.Fatal(errs.ErrSubWordMemOp, "load at instruction %d", instr.Label)
		}
		return taintResult(instr, pre, pre.Get(instr.MemAddr))
	case cfg.OpStore:
		if instr.MemSize != 0 {
			errs.Fatal(errs.ErrSubWordMemOp, "store at instruction %d", instr.Label)
		}
		// Stores have no result var; memory is not a first-class key of
		// this domain, so the store's effect is simply dropped, a known
		// imprecision (any value previously loaded from memory keeps
		// whatever taint it had when it was loaded, not the taint of
		// anything stored afterward).
		return pre
	default:
		if instr.Seed != nil {
			return taintResult(instr, pre, lattice.SingleTaint(*instr.Seed))
		}
		return taintResult(instr, pre, operandUnion(instr, pre))
	}
}

// operandUnion unions the taint sets of every var in instr.Vars but the
// first (the convention for a value-producing instruction's result slot).
func operandUnion(instr cfg.Instr, pre lattice.TaintMap) lattice.TaintSet {
	ts := lattice.NoTaint()
	if len(instr.Vars) == 0 {
		return ts
	}
	for _, v := range instr.Vars[1:] {
		ts = ts.Union(pre.Get(v))
	}
	return ts
}

// taintResult binds instr's result var (Vars[0], if present) to ts.
func taintResult(instr cfg.Instr, pre lattice.TaintMap, ts lattice.TaintSet) lattice.TaintMap {
	if len(instr.Vars) == 0 {
		return pre
	}
	return pre.Replace(instr.Vars[0], ts)
}

// ControlInstrTransfer evaluates a branch or return. Calls are not control
// instructions in this core's Cfg model — they sit among a Data block's
// ordinary instructions and are intercepted by the generic intra-procedural
// engine, which applies the current summary table instead of delegating to
// this method (see package intra).
func (Instance) ControlInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre lattice.TaintMap) transfer.Result[lattice.TaintMap] {
	switch instr.Op {
	case cfg.OpBranch:
		// A conditional branch does not itself move taint; both successors
		// see the same incoming state. Any correlation between the
		// branch condition's taint and values read along either arm is a
		// form of implicit flow this domain does not track.
		return transfer.Branch(pre, pre)
	case cfg.OpReturn:
		return transfer.Simple(pre)
	default:
		errs.Fatal(errs.ErrMalformedCFG, "unexpected control instruction opcode %v at instruction %d", instr.Op, instr.Label)
		return transfer.Result[lattice.TaintMap]{}
	}
}

// MergeFlows is the pointwise join of every predecessor's contributed
// state; the taint domain performs no additional per-merge-point logic.
func (Instance) MergeFlows(mod wasm.Module, g *cfg.Cfg, block *cfg.Block, preds []transfer.PredFlow[lattice.TaintMap]) lattice.TaintMap {
	out := lattice.BottomTaintMap()
	for _, p := range preds {
		out = out.Join(p.State)
	}
	return out
}
