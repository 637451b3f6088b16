package callgraph

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/wasmstatic/core/cfgtest"
	"github.com/wasmstatic/core/wasm"
)

type edgeRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type graphSummary struct {
	Nodes []string  `json:"nodes"`
	Edges []edgeRef `json:"edges"`
}

// TestToDotCallGraphStructure locks down ToDot's cluster/node/edge shape
// for a small mutually-recursive module against a golden fixture. It
// compares a normalized JSON summary rather than raw DOT bytes so the test
// stays stable across cosmetic changes to the dot package's template.
func TestToDotCallGraphStructure(t *testing.T) {
	i2i := wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}}
	mod := &cfgtest.Module{
		Imports: []wasm.Import{{FuncIdx: 0, Module: "env", Name: "log", Type: wasm.FuncType{Params: []wasm.ValType{wasm.I32}}}},
		Defined: []wasm.Func{
			{Idx: 1, Type: i2i},
			{Idx: 2, Type: i2i},
			{Idx: 3, Type: i2i},
		},
	}

	g := NewGraph(wasm.NumFuncs(mod))
	g.AddEdge(1, 2)
	g.AddEdge(2, 1) // mutual recursion: 1 and 2 land in one component
	g.AddEdge(2, 0) // calls the import
	g.AddEdge(3, 1)

	sccs := g.Compute()
	graph := ToDot(mod, g, sccs)

	var summary graphSummary
	for _, c := range graph.Clusters {
		for _, n := range c.Nodes {
			summary.Nodes = append(summary.Nodes, n.ID)
		}
	}
	for _, e := range graph.Edges {
		summary.Edges = append(summary.Edges, edgeRef{From: e.From.ID, To: e.To.ID})
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		t.Fatalf("marshaling graph summary: %v", err)
	}

	goldie.New(t).Assert(t, t.Name(), out)
}
