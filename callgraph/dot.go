package callgraph

import (
	"fmt"
	"sort"

	"github.com/wasmstatic/core/dot"
	"github.com/wasmstatic/core/wasm"
)

// ToDot renders g as a dot.Graph, one cluster per strongly connected
// component of sccs so a rendered image visually groups mutually recursive
// functions together.
func ToDot(mod wasm.Module, g *Graph, sccs SCCs) *dot.Graph {
	out := &dot.Graph{Title: "call graph", Options: map[string]string{"rankdir": "TB"}}

	clusters := make([]*dot.Cluster, len(sccs.Components))
	nodes := make(map[int]*dot.Node, g.NumNodes)
	for i, members := range sccs.Components {
		c := dot.NewCluster(fmt.Sprintf("%d", i))
		for _, n := range members {
			node := &dot.Node{ID: nodeLabel(mod, n), Attrs: dot.Attrs{}}
			if wasm.IsImport(mod, n) {
				node.Attrs["fillcolor"] = "lightyellow"
			}
			nodes[n] = node
			c.Nodes = append(c.Nodes, node)
		}
		clusters[i] = c
	}
	out.Clusters = clusters

	froms := make([]int, 0, len(g.Edges))
	for from := range g.Edges {
		froms = append(froms, from)
	}
	sort.Ints(froms)
	for _, from := range froms {
		tos := append([]int(nil), g.Edges[from]...)
		sort.Ints(tos)
		for _, to := range tos {
			out.Edges = append(out.Edges, &dot.Edge{From: nodes[from], To: nodes[to], Attrs: dot.Attrs{}})
		}
	}
	return out
}

func nodeLabel(mod wasm.Module, idx int) string {
	if wasm.IsImport(mod, idx) {
		for _, imp := range mod.ImportedFuncs() {
			if imp.FuncIdx == idx {
				return imp.QualifiedName()
			}
		}
	}
	return fmt.Sprintf("func[%d]", idx)
}
