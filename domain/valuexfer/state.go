// Package valuexfer is the symbolic-value domain's Transfer[State]
// realization: the second concrete analysis instance alongside
// domain/taint, tracking for every variable a domain/value.Value and, for
// the module's linear memory, a domain/memory.Log.
package valuexfer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/wasmstatic/core/domain/memory"
	"github.com/wasmstatic/core/domain/value"
	"github.com/wasmstatic/core/lattice"
)

// State is the abstract state of the value-domain analysis instance: a
// mapping from Var to Value, plus the abstract memory log. Both halves are
// joined, widened, and compared together; Var bindings can be renamed and
// restricted independently of memory, since memory isn't addressed by Var.
type State struct {
	Vars *immutable.Map[lattice.Var, value.Value]
	Mem  memory.Log
}

// Bottom constructs ⊥: no variable bound, empty memory.
func Bottom() State {
	return State{Vars: immutable.NewMap[lattice.Var, value.Value](lattice.VarHasher), Mem: memory.NewLog()}
}

// Get retrieves the Value bound to v, or ⊥ (untyped) if v is unbound.
func (s State) Get(v lattice.Var) value.Value {
	if val, ok := s.Vars.Get(v); ok {
		return val
	}
	return value.Value{}
}

// Replace overwrites the binding of v with val.
func (s State) Replace(v lattice.Var, val value.Value) State {
	return State{Vars: s.Vars.Set(v, val), Mem: s.Mem}
}

// RenameKey removes the binding at kOld and reinserts its value under kNew.
// A no-op when kOld == kNew.
func (s State) RenameKey(kOld, kNew lattice.Var) State {
	if kOld == kNew {
		return s
	}
	val, ok := s.Vars.Get(kOld)
	vars := s.Vars.Delete(kOld)
	if ok {
		vars = vars.Set(kNew, val)
	}
	return State{Vars: vars, Mem: s.Mem}
}

// Restrict keeps only the Var bindings whose key is in keep. Memory is left
// untouched: its addresses aren't named by the Var vocabulary a summary
// restricts to, and a callee's memory effects are observable by the caller
// regardless of which locals happen to reference the written addresses.
func (s State) Restrict(keep []lattice.Var) State {
	set := make(map[lattice.Var]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	out := immutable.NewMap[lattice.Var, value.Value](lattice.VarHasher)
	it := s.Vars.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if _, ok := set[k]; ok {
			out = out.Set(k, v)
		}
	}
	return State{Vars: out, Mem: s.Mem}
}

// SubstituteArgValue resolves every Value bound anywhere in s (in both the
// Var map and memory) whose provenance is value.Arg(argIdx) by replacing it
// with actual — the value domain's realization of the summary-application
// "substitute arguments" stage, the direct analog of TaintMap's
// SubstituteArgLabel.
func (s State) SubstituteArgValue(argIdx int, actual value.Value) State {
	target := value.Arg(argIdx)
	resolve := func(v value.Value) value.Value {
		if v.IsKnown() && v.Source == target {
			return actual
		}
		return v
	}

	vars := immutable.NewMap[lattice.Var, value.Value](lattice.VarHasher)
	it := s.Vars.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		vars = vars.Set(k, resolve(v))
	}

	mem := memory.NewLog()
	mem.Strong = s.Mem.Strong
	s.Mem.ForEach(func(addr, v value.Value) {
		mem = mem.Store(resolve(addr), resolve(v))
	})

	return State{Vars: vars, Mem: mem}
}

// Join computes the pointwise join of two states.
func (s State) Join(o State) State {
	vars := s.Vars
	it := o.Vars.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if cur, ok := vars.Get(k); ok {
			vars = vars.Set(k, cur.Join(v))
		} else {
			vars = vars.Set(k, v)
		}
	}
	return State{Vars: vars, Mem: s.Mem.Join(o.Mem)}
}

// Widen is Join: the per-variable lattice has height 2 and the memory log's
// address universe is bounded by the module's instruction count, so join
// alone guarantees termination.
func (s State) Widen(o State) State { return s.Join(o) }

// Eq reports whether s and o carry identical Var bindings and memory.
func (s State) Eq(o State) bool {
	if !s.Mem.Eq(o.Mem) {
		return false
	}
	return varsEq(s.Vars, o.Vars)
}

func varsEq(a, b *immutable.Map[lattice.Var, value.Value]) bool {
	if a.Len() != b.Len() {
		return false
	}
	it := a.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		ov, ok := b.Get(k)
		if !ok || !v.Eq(ov) {
			return false
		}
	}
	return true
}

func (s State) String() string {
	var parts []string
	it := s.Vars.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		parts = append(parts, fmt.Sprintf("%s ↦ %s", k, v))
	}
	sort.Strings(parts)
	return "{vars: {" + strings.Join(parts, ", ") + "}, mem: " + s.Mem.String() + "}"
}
