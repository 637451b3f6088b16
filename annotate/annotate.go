// Package annotate renders an intra-procedural fixpoint's per-block and
// per-instruction states back onto a function's CFG as a DOT graph: each
// block's converged incoming state, and the (state_before, state_after)
// pair of every instruction in a Data block, are shown alongside the CFG
// structure cfg.ToDot already draws.
package annotate

import (
	"fmt"

	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/dot"
	"github.com/wasmstatic/core/intra"
)

// Stringer is the minimal capability an abstract state needs to be
// rendered: every domain state in this module (lattice.TaintMap,
// domain/valuexfer.State) already satisfies it.
type Stringer interface {
	String() string
}

// Mode selects how a re-run's annotations combine with a previous run's,
// when both are available for the same function.
type Mode int

const (
	// ModeReplace discards any previous annotation and shows only the
	// latest run's states.
	ModeReplace Mode = iota
	// ModeKeep pairs the previous run's annotation with the new one, so
	// a reader can see what changed between two passes of the same
	// analysis over the same function (e.g. under two seed modes).
	ModeKeep
)

// Render draws title's CFG with art's converged states attached to each
// node. If mode is ModeKeep and prior is non-nil, each node's label pairs
// prior's annotation with art's.
func Render[S Stringer](title string, g *cfg.Cfg, art *intra.Artifact[S], mode Mode, prior *intra.Artifact[S]) *dot.Graph {
	out := &dot.Graph{Title: title, Options: map[string]string{"rankdir": "TB"}}

	nodes := make(map[cfg.BlockID]*dot.Node, len(g.Blocks))
	for id, b := range g.Blocks {
		label := blockLabel(id, b, art)
		if mode == ModeKeep && prior != nil {
			label = fmt.Sprintf("%s\\n---\\nprev: %s", label, blockLabel(id, b, prior))
		}
		node := &dot.Node{ID: label, Attrs: dot.Attrs{}}
		nodes[id] = node
		out.Nodes = append(out.Nodes, node)
	}

	for id, b := range g.Blocks {
		for _, e := range b.Succs {
			edge := &dot.Edge{From: nodes[id], To: nodes[e.To], Attrs: dot.Attrs{}}
			if e.Label != nil {
				if *e.Label {
					edge.Attrs["label"] = "T"
				} else {
					edge.Attrs["label"] = "F"
				}
			}
			out.Edges = append(out.Edges, edge)
		}
	}
	return out
}

func blockLabel[S Stringer](id cfg.BlockID, b *cfg.Block, art *intra.Artifact[S]) string {
	pre := art.BlockPre[id]
	lines := []string{fmt.Sprintf("block %d (%s)", id, b.Kind), fmt.Sprintf("pre: %s", pre)}
	for _, instr := range b.Instrs {
		pp, ok := art.InstrData[instr.Label]
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("  i%d: %s -> %s", instr.Label, pp.Pre, pp.Post))
	}
	joined := lines[0]
	for _, l := range lines[1:] {
		joined += "\\n" + l
	}
	return joined
}
