// Package transfer defines the capability bundle every concrete analysis
// instance (taint, value) must supply. There is no inheritance: a
// realization is a plain struct of methods satisfying Transfer[S], wired
// into the generic intra-procedural engine by passing the interface value —
// polymorphism over a capability bundle, expressed with Go generics and
// interface satisfaction instead of a shared base type.
package transfer

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/wasm"
)

// Shape distinguishes the two possible result shapes a block's computation
// can leave behind.
type Shape int

const (
	ShapeUninitialized Shape = iota
	ShapeSimple
	ShapeBranch
)

// Result is the per-block/per-instruction outcome of a transfer: either not
// yet computed, a single successor state, or a true/false-branch pair
// produced by a conditional control transfer.
type Result[S any] struct {
	Shape      Shape
	Simple     S
	BranchTrue S
	BranchFalse S
}

// Uninitialized constructs the not-yet-computed result.
func Uninitialized[S any]() Result[S] { return Result[S]{Shape: ShapeUninitialized} }

// Simple constructs a single-successor result.
func Simple[S any](s S) Result[S] { return Result[S]{Shape: ShapeSimple, Simple: s} }

// Branch constructs a two-way result.
func Branch[S any](t, f S) Result[S] {
	return Result[S]{Shape: ShapeBranch, BranchTrue: t, BranchFalse: f}
}

// PredFlow pairs a predecessor block's id with the state it is contributing
// to the successor's in_state computation.
type PredFlow[S any] struct {
	Pred  cfg.BlockID
	State S
}

// Transfer is the capability set a concrete analysis instance implements.
// S is the abstract state type of that instance.
type Transfer[S any] interface {
	// BottomState produces ⊥ for the given function's Cfg.
	BottomState(g *cfg.Cfg) S
	JoinState(a, b S) S
	WidenState(a, b S) S
	EqualState(a, b S) bool

	// DomainInit computes the initial state at the entry block from the
	// function's formal parameters, local slots, the module's globals,
	// and (for domains that track it) memory.
	DomainInit(mod wasm.Module, fn wasm.Func) S

	DataInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre S) S

	// ControlInstrTransfer evaluates a control instruction. It returns a
	// Simple result for unconditional control transfers and a Branch result
	// for the two-way split at a conditional control transfer. Calls never
	// reach it: they sit in Data blocks and the intra-procedural engine
	// applies the callee's summary itself.
	ControlInstrTransfer(mod wasm.Module, g *cfg.Cfg, instr cfg.Instr, pre S) Result[S]

	// MergeFlows combines the states contributed by a block's predecessors,
	// one PredFlow per predecessor whose result is already computed, into
	// the block's incoming state. The engine calls it for every block but
	// the entry.
	MergeFlows(mod wasm.Module, g *cfg.Cfg, block *cfg.Block, preds []PredFlow[S]) S
}
