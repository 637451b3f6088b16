package valuexfer

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/domain/value"
	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/transfer"
	"github.com/wasmstatic/core/wasm"
)

// Instance is the value domain's Transfer realization, stateless like
// domain/taint.Instance.
type Instance struct{}

var _ transfer.Transfer[State] = Instance{}

func (Instance) BottomState(g *cfg.Cfg) State { return Bottom() }

func (Instance) JoinState(a, b State) State { return a.Join(b) }

func (Instance) WidenState(a, b State) State { return a.Widen(b) }

func (Instance) EqualState(a, b State) bool { return a.Eq(b) }

// DomainInit seeds every parameter with value.Arg(i), the value domain's
// analog of the taint domain's ArgLabel seeding: every intra-procedural
// fixpoint run doubles as summary construction, so parameters start out
// named by their own formal position rather than by any real value.
func (Instance) DomainInit(mod wasm.Module, fn wasm.Func) State {
	s := Bottom()
	for i, t := range fn.Type.Params {
		s = s.Replace(lattice.Local(i), value.Known(t, value.Arg(i)))
	}
	return s
}

// DataInstrTransfer propagates symbolic values across one ordinary
// instruction. A load reads the join of every aliasing store's value out
// of memory; a store records the written value without producing a result;
// every other instruction's result is the join of its operands' values —
// a single operand propagates as a copy, and two or more operands with
// different provenance degrade to ⊤, value.Value.Join's escalation-on-
// conflict rule.
func (Instance) DataInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre State) State {
	switch instr.Op {
	case cfg.OpLoad:
		if instr.MemSize != 0 {
			errs.Fatal(errs.ErrSubWordMemOp, "load at instruction %d", instr.Label)
		}
		loaded := pre.Mem.Load(pre.Get(instr.MemAddr))
		return valueResult(instr, pre, loaded)
	case cfg.OpStore:
		if instr.MemSize != 0 {
			errs.Fatal(errs.ErrSubWordMemOp, "store at instruction %d", instr.Label)
		}
		mem := pre.Mem.Store(pre.Get(instr.MemAddr), pre.Get(instr.MemValue))
		return State{Vars: pre.Vars, Mem: mem}
	default:
		return valueResult(instr, pre, operandJoin(instr, pre))
	}
}

// operandJoin joins the values of every var in instr.Vars but the first
// (the convention for a value-producing instruction's result slot).
func operandJoin(instr cfg.Instr, pre State) value.Value {
	out := value.Value{}
	if len(instr.Vars) == 0 {
		return out
	}
	for _, v := range instr.Vars[1:] {
		out = out.Join(pre.Get(v))
	}
	return out
}

// valueResult binds instr's result var (Vars[0], if present) to val.
func valueResult(instr cfg.Instr, pre State, val value.Value) State {
	if len(instr.Vars) == 0 {
		return pre
	}
	return pre.Replace(instr.Vars[0], val)
}

// ControlInstrTransfer evaluates a branch or return; calls are intercepted
// by the generic intra-procedural engine before reaching either Transfer
// method, exactly as in domain/taint.
func (Instance) ControlInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre State) transfer.Result[State] {
	switch instr.Op {
	case cfg.OpBranch:
		return transfer.Branch(pre, pre)
	case cfg.OpReturn:
		return transfer.Simple(pre)
	default:
		errs.Fatal(errs.ErrMalformedCFG, "unexpected control instruction opcode %v at instruction %d", instr.Op, instr.Label)
		return transfer.Result[State]{}
	}
}

// MergeFlows is the pointwise join of every predecessor's contributed
// state.
func (Instance) MergeFlows(mod wasm.Module, g *cfg.Cfg, block *cfg.Block, preds []transfer.PredFlow[State]) State {
	out := Bottom()
	for _, p := range preds {
		out = out.Join(p.State)
	}
	return out
}
