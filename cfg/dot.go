package cfg

import (
	"fmt"
	"strings"

	"github.com/wasmstatic/core/dot"
)

// ToDot renders g's block/edge structure as a dot.Graph: one node per
// block, labeled with its instruction opcodes (prefixed by the block kind
// for control blocks, and just the kind for merge blocks), and one edge per
// successor, labeled "T"/"F" for the taken/not-taken arm of a conditional.
func ToDot(title string, g *Cfg) *dot.Graph {
	out := &dot.Graph{Title: title, Options: map[string]string{"rankdir": "TB"}}

	nodes := make(map[BlockID]*dot.Node, len(g.Blocks))
	for id, b := range g.Blocks {
		node := &dot.Node{ID: fmt.Sprintf("%d: %s", id, blockLabel(b)), Attrs: dot.Attrs{}}
		switch {
		case id == g.Entry:
			node.Attrs["fillcolor"] = "lightblue"
		case id == g.Exit:
			node.Attrs["fillcolor"] = "lightpink"
		case g.LoopHeads[id]:
			node.Attrs["fillcolor"] = "lightgoldenrod"
		}
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

func blockLabel(b *Block) string {
	switch b.Kind {
	case KindControl:
		return fmt.Sprintf("%s %s", b.Kind, opcodeName(b.Control.Op))
	case KindMerge:
		return b.Kind.String()
	default:
		ops := make([]string, len(b.Instrs))
		for i, instr := range b.Instrs {
			ops[i] = opcodeName(instr.Op)
		}
		return strings.Join(ops, "; ")
	}
}

func opcodeName(op Opcode) string {
	switch op {
	case OpCall:
		return "call"
	case OpCallIndirect:
		return "call_indirect"
	case OpBranch:
		return "br_if"
	case OpReturn:
		return "return"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	default:
		return "other"
	}
}
