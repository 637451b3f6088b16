package callgraph

import (
	uf "github.com/spakin/disjoint"

	"github.com/wasmstatic/core/wasm"
)

// TypeClasses partitions every function in a module's combined index space
// (imports first, then defined functions — see wasm.NumFuncs) into groups
// sharing a structurally equal FuncType, using a union-find forest. Each
// function starts in its own singleton set; ResolveIndirect's type-based
// fallback needs the full set of functions type-equal to a given type, and
// building it once up front turns what would otherwise be an O(n)
// FuncType.Equal scan per CallIndirect site into a single O(n) partition
// pass plus O(1) lookups.
type TypeClasses struct {
	elems    []*uf.Element
	groups   map[*uf.Element][]int
	byTypeID map[string][]int
}

// BuildTypeClasses computes the partition for mod.
func BuildTypeClasses(mod wasm.Module) *TypeClasses {
	n := wasm.NumFuncs(mod)
	elems := make([]*uf.Element, n)
	reps := make(map[string]*uf.Element, n)

	for i := 0; i < n; i++ {
		el := uf.NewElement()
		el.Data = i
		elems[i] = el

		key := mod.TypeOf(i).String()
		if rep, ok := reps[key]; ok {
			uf.Union(rep, el)
		} else {
			reps[key] = el
		}
	}

	groups := make(map[*uf.Element][]int, len(reps))
	for i, el := range elems {
		rep := el.Find()
		groups[rep] = append(groups[rep], i)
	}

	byTypeID := make(map[string][]int, len(reps))
	for key, rep := range reps {
		byTypeID[key] = groups[rep.Find()]
	}

	return &TypeClasses{elems: elems, groups: groups, byTypeID: byTypeID}
}

// MembersOf returns every function index in funIdx's type-equivalence
// class, including funIdx itself.
func (c *TypeClasses) MembersOf(funIdx int) []int {
	return c.groups[c.elems[funIdx].Find()]
}

// Members returns every function index (imported or defined) structurally
// type-equal to want.
func (c *TypeClasses) Members(mod wasm.Module, want wasm.FuncType) []int {
	return c.byTypeID[want.String()]
}

// NewResolver builds a CallIndirect resolver closed over mod's precomputed
// TypeClasses: the table-based path is unchanged from ResolveIndirect, but
// the conservative type-based fallback looks up want's equivalence class
// instead of rescanning every function in the module. The returned
// function has the same signature as ResolveIndirect and is a drop-in
// replacement for it.
func NewResolver(mod wasm.Module) func(wasm.Module, int) []int {
	var classes *TypeClasses // built lazily, once, on first fallback use
	return func(mod wasm.Module, typeIdx int) []int {
		want := mod.TypeOfType(typeIdx)

		if table, ok := mod.Table(); ok && !forceTypeBased() {
			return resolveViaTable(mod, table, want)
		}

		if classes == nil {
			classes = BuildTypeClasses(mod)
		}
		members := classes.Members(mod, want)
		out := make([]int, len(members))
		copy(out, members)
		return out
	}
}
