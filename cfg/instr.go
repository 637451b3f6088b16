package cfg

import "github.com/wasmstatic/core/lattice"

// Opcode classifies an instruction for the purposes of the core's transfer
// functions and call-graph construction. The out-of-scope decoder maps the
// full WebAssembly instruction set down onto this much smaller vocabulary;
// everything the core doesn't need to distinguish collapses to OpOther.
type Opcode int

const (
	OpOther Opcode = iota
	// OpCall is a direct call. Instr.CalleeIdx names the target in the
	// combined import+defined function index space.
	OpCall
	// OpCallIndirect is an indirect call through a table slot.
	// Instr.TypeIdx names the callee's expected function type.
	OpCallIndirect
	// OpBranch is the control instruction at the head of a two-way
	// conditional control transfer (the only path-split the core models).
	OpBranch
	// OpReturn yields the function's result, if any, via Instr.Vars[0].
	OpReturn
	// OpLoad and OpStore are memory operations. MemSize records whether
	// the access has an explicit sub-word size — an unsupported shape;
	// such accesses carry a non-zero MemSize and are rejected.
	OpLoad
	OpStore
)

// MemSize is the explicit access width of a memory instruction, in bytes.
// Zero means "natural width for the value's type" (the only shape this
// core supports); any other value is the unsupported sub-word case.
type MemSize int

// Instr is one instruction. Most fields are opcode-specific; callers only
// populate the fields relevant to Op.
type Instr struct {
	Label InstrLabel
	Op    Opcode

	// Vars carries the operands/result assigned by the variable-numbering
	// pre-pass. Convention (set by that pre-pass, not by this package):
	// for value-producing instructions, Vars[0] is the result and the
	// remainder are operands; for OpReturn, Vars[0] (if present) is the
	// returned value; for OpCall/OpCallIndirect, Vars holds the actual
	// arguments followed by the result var (if any).
	Vars []Var

	CalleeIdx int     // OpCall
	TypeIdx   int     // OpCallIndirect
	MemSize   MemSize // OpLoad, OpStore
	MemAddr   Var     // OpLoad, OpStore: the address operand
	MemValue  Var     // OpStore: the stored value operand

	// Seed, when non-nil, marks this instruction as a taint source: in the
	// taint domain, its result var is assigned the singleton taint set
	// {*Seed} instead of being computed from operands. Used by test
	// fixtures to name which values are "tainted" without modeling a real
	// import boundary.
	Seed *lattice.Label
}

// Args returns the actual-argument Vars of a Call/CallIndirect instruction,
// i.e. Vars without the trailing result var (if any is present).
func (i Instr) Args(hasRet bool) []Var {
	if !hasRet {
		return i.Vars
	}
	if len(i.Vars) == 0 {
		return nil
	}
	return i.Vars[:len(i.Vars)-1]
}

// Ret returns the result Var of a Call/CallIndirect instruction, if any.
func (i Instr) Ret(hasRet bool) (Var, bool) {
	if !hasRet || len(i.Vars) == 0 {
		return Var{}, false
	}
	return i.Vars[len(i.Vars)-1], true
}
