// Package callgraph builds the whole-module call graph, resolves indirect
// calls, and decomposes it into strongly connected components to drive the
// inter-procedural schedule. Nodes are indices in the combined
// import+defined function index space of wasm.Module (see wasm.NumFuncs).
package callgraph

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/config"
	"github.com/wasmstatic/core/wasm"
)

// Graph is a directed graph over the combined function index space.
type Graph struct {
	NumNodes int
	Edges    map[int][]int
}

// NewGraph returns an empty graph over n nodes.
func NewGraph(n int) *Graph {
	return &Graph{NumNodes: n, Edges: make(map[int][]int)}
}

// AddEdge records an edge from -> to, if not already present.
func (g *Graph) AddEdge(from, to int) {
	for _, e := range g.Edges[from] {
		if e == to {
			return
		}
	}
	g.Edges[from] = append(g.Edges[from], to)
}

// Successors returns the callees of n.
func (g *Graph) Successors(n int) []int { return g.Edges[n] }

// Build walks every defined function's Cfg and records one edge per call
// site: a direct edge for OpCall, and one edge per target resolve returns
// for OpCallIndirect.
func Build(mod wasm.Module, resolve func(wasm.Module, int) []int) *Graph {
	g := NewGraph(wasm.NumFuncs(mod))
	for _, fn := range mod.Funcs() {
		walkFunc(mod, fn, g, resolve)
	}
	return g
}

func walkFunc(mod wasm.Module, fn wasm.Func, g *Graph, resolve func(wasm.Module, int) []int) {
	if fn.Body == nil {
		return
	}
	for _, b := range fn.Body.Blocks {
		for _, instr := range b.Instrs {
			addCallEdges(mod, fn.Idx, instr, g, resolve)
		}
		addCallEdges(mod, fn.Idx, b.Control, g, resolve)
	}
}

func addCallEdges(mod wasm.Module, from int, instr cfg.Instr, g *Graph, resolve func(wasm.Module, int) []int) {
	switch instr.Op {
	case cfg.OpCall:
		g.AddEdge(from, instr.CalleeIdx)
	case cfg.OpCallIndirect:
		for _, t := range resolve(mod, instr.TypeIdx) {
			g.AddEdge(from, t)
		}
	}
}

// ResolveIndirect resolves the possible targets of a CallIndirect with
// declared type typeIdx: when the module has an initialized table and
// --force-type-based-indirect is not set, only slots whose function type
// structurally matches are considered; otherwise every function (imported
// or defined) with a matching type is a possible target, a sound but
// coarser fallback. This is the plain, uncached form; NewResolver offers
// the same resolution amortized over a precomputed type partition.
func ResolveIndirect(mod wasm.Module, typeIdx int) []int {
	want := mod.TypeOfType(typeIdx)

	if table, ok := mod.Table(); ok && !forceTypeBased() {
		return resolveViaTable(mod, table, want)
	}

	var out []int
	for i := 0; i < wasm.NumFuncs(mod); i++ {
		if mod.TypeOf(i).Equal(want) {
			out = append(out, i)
		}
	}
	return out
}

func forceTypeBased() bool { return config.Opts().ForceTypeBasedCG() }

func resolveViaTable(mod wasm.Module, table wasm.TableInstance, want wasm.FuncType) []int {
	seen := map[int]bool{}
	var out []int
	for _, slot := range table.Slots {
		if slot < 0 {
			continue
		}
		idx := int(slot)
		if seen[idx] {
			continue
		}
		if mod.TypeOf(idx).Equal(want) {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}
