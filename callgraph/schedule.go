package callgraph

import "github.com/wasmstatic/core/wasm"

// Schedule returns sccs.Components filtered down to defined functions only,
// in the same reverse-topological order: imported functions have a fixed
// summary (package summary's OfImport) and never need to be handed to the
// intra-procedural fixpoint, so they are dropped from the driver's work
// list. A component consisting entirely of imports is dropped too.
func Schedule(mod wasm.Module, sccs SCCs) [][]int {
	out := make([][]int, 0, len(sccs.Components))
	for _, members := range sccs.Components {
		var defined []int
		for _, idx := range members {
			if !wasm.IsImport(mod, idx) {
				defined = append(defined, idx)
			}
		}
		if len(defined) > 0 {
			out = append(out, defined)
		}
	}
	return out
}
