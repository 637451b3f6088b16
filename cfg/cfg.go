// Package cfg defines the control-flow graph data model the analysis core
// consumes. Construction of a Cfg — lowering a function's instruction tree
// into basic blocks, assigning loop heads, and running the variable-
// numbering pre-pass — happens outside this module. Package cfg only
// carries the result: a narrow, read-only interface.
package cfg

import (
	"fmt"

	"github.com/wasmstatic/core/lattice"
)

// BlockID identifies a basic block within one function's Cfg.
type BlockID int

// InstrLabel uniquely identifies one instruction within one function's Cfg.
type InstrLabel int

// Kind classifies a basic block.
type Kind int

const (
	KindData Kind = iota
	KindControl
	KindMerge
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "Data"
	case KindControl:
		return "Control"
	case KindMerge:
		return "ControlMerge"
	default:
		return "Unknown"
	}
}

// Edge is a directed edge out of a block. Label is nil for an unconditional
// edge, or points to true/false for the taken/not-taken arm of a
// conditional control transfer.
type Edge struct {
	To    BlockID
	Label *bool
}

// Taken constructs the taken-branch edge label.
func Taken() *bool { b := true; return &b }

// NotTaken constructs the not-taken-branch edge label.
func NotTaken() *bool { b := false; return &b }

// Block is one basic block of a Cfg.
type Block struct {
	ID    BlockID
	Kind  Kind
	Instrs  []Instr // valid for KindData
	Control Instr   // valid for KindControl
	Succs []Edge
}

// Cfg is the control-flow graph of a single function.
type Cfg struct {
	Blocks    map[BlockID]*Block
	Entry     BlockID
	Exit      BlockID
	LoopHeads map[BlockID]bool
	// Preds is derived from Succs at construction time to let the intra
	// fixpoint enumerate predecessors of a block in O(1) instead of
	// scanning every block's successor list on every worklist pop.
	preds map[BlockID][]Edge
}

// New builds a Cfg from a block set, wiring up predecessor lookups. Callers
// (the out-of-scope CFG builder, or a test fixture) supply the block map and
// entry/exit/loop-head sets; New fills in the derived predecessor index.
func New(blocks map[BlockID]*Block, entry, exit BlockID, loopHeads map[BlockID]bool) *Cfg {
	g := &Cfg{
		Blocks:    blocks,
		Entry:     entry,
		Exit:      exit,
		LoopHeads: loopHeads,
		preds:     make(map[BlockID][]Edge),
	}
	for id, b := range blocks {
		for _, e := range b.Succs {
			g.preds[e.To] = append(g.preds[e.To], Edge{To: id, Label: e.Label})
		}
	}
	return g
}

// Preds returns the incoming edges of block id. The returned Edge.To field
// names the predecessor block; Edge.Label carries the predecessor's own
// labeling of that edge (true/false/nil), which the intra-procedural
// fixpoint consumes to pick the right side of a Branch result when
// computing a block's incoming state.
func (g *Cfg) Preds(id BlockID) []Edge {
	return g.preds[id]
}

// Succs returns the outgoing edges of block id.
func (g *Cfg) Succs(id BlockID) []Edge {
	if b, ok := g.Blocks[id]; ok {
		return b.Succs
	}
	return nil
}

func (g *Cfg) String() string {
	return fmt.Sprintf("Cfg{%d blocks, entry=%d, exit=%d}", len(g.Blocks), g.Entry, g.Exit)
}

// Var re-exports lattice.Var so callers building instructions don't need to
// import the lattice package just to name an operand or result.
type Var = lattice.Var
