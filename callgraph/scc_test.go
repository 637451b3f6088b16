package callgraph_test

import (
	"testing"

	"github.com/wasmstatic/core/callgraph"
)

func TestComputeOrdersCalleesBeforeCallers(t *testing.T) {
	g := callgraph.NewGraph(3)
	g.AddEdge(2, 1)
	g.AddEdge(1, 0)

	sccs := g.Compute()
	if len(sccs.Components) != 3 {
		t.Fatalf("got %d components, want 3 singletons", len(sccs.Components))
	}
	if sccs.ComponentOf(0) >= sccs.ComponentOf(1) || sccs.ComponentOf(1) >= sccs.ComponentOf(2) {
		t.Fatalf("expected component index to increase from callee to caller: 0=%d 1=%d 2=%d",
			sccs.ComponentOf(0), sccs.ComponentOf(1), sccs.ComponentOf(2))
	}
}

func TestComputeGroupsMutualRecursionIntoOneComponent(t *testing.T) {
	g := callgraph.NewGraph(2)
	g.AddEdge(0, 1)
	g.AddEdge(1, 0)

	sccs := g.Compute()
	if len(sccs.Components) != 1 {
		t.Fatalf("got %d components, want 1 (mutually recursive pair)", len(sccs.Components))
	}
	if sccs.ComponentOf(0) != sccs.ComponentOf(1) {
		t.Fatalf("expected nodes 0 and 1 in the same component")
	}
}
