package lattice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

// TaintSet is a set of taint sources (labels) that may have flowed into some
// abstract variable.
type TaintSet struct {
	labels map[Label]struct{}
}

// NoTaint is the empty taint set (⊥ at the per-variable granularity).
func NoTaint() TaintSet { return TaintSet{} }

// SingleTaint constructs a taint set containing exactly one source.
func SingleTaint(l Label) TaintSet {
	return TaintSet{map[Label]struct{}{l: {}}}
}

// Union computes the pointwise join of two taint sets.
func (s TaintSet) Union(o TaintSet) TaintSet {
	if len(s.labels) == 0 {
		return o
	}
	if len(o.labels) == 0 {
		return s
	}
	out := make(map[Label]struct{}, len(s.labels)+len(o.labels))
	for l := range s.labels {
		out[l] = struct{}{}
	}
	for l := range o.labels {
		out[l] = struct{}{}
	}
	return TaintSet{out}
}

// Equal reports whether two taint sets contain exactly the same labels.
func (s TaintSet) Equal(o TaintSet) bool {
	if len(s.labels) != len(o.labels) {
		return false
	}
	for l := range s.labels {
		if _, ok := o.labels[l]; !ok {
			return false
		}
	}
	return true
}

// Has reports whether l is a member of s.
func (s TaintSet) Has(l Label) bool {
	_, ok := s.labels[l]
	return ok
}

// Size returns the number of labels in s.
func (s TaintSet) Size() int {
	return len(s.labels)
}

func (s TaintSet) String() string {
	ls := make([]int, 0, len(s.labels))
	for l := range s.labels {
		ls = append(ls, int(l))
	}
	sort.Ints(ls)
	strs := make([]string, len(ls))
	for i, l := range ls {
		strs[i] = fmt.Sprintf("L%d", l)
	}
	return colorize.Const("{" + strings.Join(strs, ", ") + "}")
}

// TaintMap is the canonical abstract state of the taint analysis instance:
// a mapping from Var to TaintSet implementing its own Join/Leq/Eq. Its
// lattice identity is carried entirely by Go's type system via the
// Transfer[S] generic parameter, so there is no need for a dynamic
// same-lattice guard: two TaintMaps are always comparable because S is
// fixed at compile time for one analysis instance.
//
// TaintMap is backed by an immutable.Map so the driver can hold onto many
// historical versions across SCC iterations (for the "changed" comparison
// in the inter-procedural driver) without them aliasing each other.
type TaintMap struct {
	mp *immutable.Map[Var, TaintSet]
}

// varHasher is the immutable.Hasher for Var: Var is a struct, so the
// underlying map implementation has no built-in hashing strategy for it
// and one must be supplied explicitly.
type varHasher struct{}

func (varHasher) Hash(v Var) uint32 {
	return uint32(v.kind)*31 + uint32(v.Index)
}

func (varHasher) Equal(a, b Var) bool { return a == b }

// VarHasher is the shared immutable.Hasher[Var], exported so other
// packages keying an immutable.Map by Var (e.g. domain/valuexfer) can
// reuse it instead of re-deriving one.
var VarHasher immutable.Hasher[Var] = varHasher{}

// BottomTaintMap is the empty taint map (⊥ of the whole-map lattice).
func BottomTaintMap() TaintMap {
	return TaintMap{immutable.NewMap[Var, TaintSet](VarHasher)}
}

// TopTaintMap initializes every key in keys to the universal taint set
// containing every label in universe.
func TopTaintMap(keys []Var, universe []Label) TaintMap {
	top := TaintSet{}
	if len(universe) > 0 {
		top.labels = make(map[Label]struct{}, len(universe))
		for _, l := range universe {
			top.labels[l] = struct{}{}
		}
	}
	mp := immutable.NewMap[Var, TaintSet](VarHasher)
	for _, k := range keys {
		mp = mp.Set(k, top)
	}
	return TaintMap{mp}
}

// Get retrieves the taint set bound to v, or the empty set if v is unbound.
func (m TaintMap) Get(v Var) TaintSet {
	if ts, ok := m.mp.Get(v); ok {
		return ts
	}
	return NoTaint()
}

// Replace overwrites the binding of v with ts.
func (m TaintMap) Replace(v Var, ts TaintSet) TaintMap {
	return TaintMap{m.mp.Set(v, ts)}
}

// RenameKey removes the binding at kOld and reinserts its value under kNew.
// A no-op when kOld == kNew, per the summary-application protocol.
func (m TaintMap) RenameKey(kOld, kNew Var) TaintMap {
	if kOld == kNew {
		return m
	}
	ts, ok := m.mp.Get(kOld)
	if !ok {
		return TaintMap{m.mp.Delete(kOld)}
	}
	mp := m.mp.Delete(kOld)
	mp = mp.Set(kNew, ts)
	return TaintMap{mp}
}

// SubstituteArgLabel resolves every occurrence of ArgLabel(argIdx) appearing
// anywhere in m by removing it and unioning in replacement wherever it was
// found, leaving every other label untouched. It is the taint domain's
// realization of the summary-application "substitute arguments" stage.
func (m TaintMap) SubstituteArgLabel(argIdx int, replacement TaintSet) TaintMap {
	target := ArgLabel(argIdx)
	out := immutable.NewMap[Var, TaintSet](VarHasher)
	it := m.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if !v.Has(target) {
			out = out.Set(k, v)
			continue
		}
		without := make(map[Label]struct{}, len(v.labels))
		for l := range v.labels {
			if l != target {
				without[l] = struct{}{}
			}
		}
		out = out.Set(k, TaintSet{without}.Union(replacement))
	}
	return TaintMap{out}
}

// Restrict keeps only the bindings whose key is in keys.
func (m TaintMap) Restrict(keys []Var) TaintMap {
	keep := make(map[Var]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	out := immutable.NewMap[Var, TaintSet](VarHasher)
	it := m.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if _, ok := keep[k]; ok {
			out = out.Set(k, v)
		}
	}
	return TaintMap{out}
}

// Join computes the pointwise set union of two taint maps.
func (m TaintMap) Join(o TaintMap) TaintMap {
	out := m.mp
	it := o.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		cur, ok := out.Get(k)
		if !ok {
			out = out.Set(k, v)
		} else {
			out = out.Set(k, cur.Union(v))
		}
	}
	return TaintMap{out}
}

// Widen is Join: the taint domain has finite height (bounded by the
// module's instruction count), so join alone guarantees termination and no
// separate widening operator is required.
func (m TaintMap) Widen(o TaintMap) TaintMap {
	return m.Join(o)
}

// Leq reports m ⊑ o: every key bound in m is bound in o to a superset.
func (m TaintMap) Leq(o TaintMap) bool {
	it := m.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		ov, ok := o.mp.Get(k)
		if !ok {
			if len(v.labels) > 0 {
				return false
			}
			continue
		}
		for l := range v.labels {
			if !ov.Has(l) {
				return false
			}
		}
	}
	return true
}

// Eq reports whether m and o carry identical bindings.
func (m TaintMap) Eq(o TaintMap) bool {
	return m.Leq(o) && o.Leq(m)
}

// Size returns the number of bound keys.
func (m TaintMap) Size() int { return m.mp.Len() }

// ForEach iterates all bindings in m, in an unspecified order.
func (m TaintMap) ForEach(do func(Var, TaintSet)) {
	it := m.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		do(k, v)
	}
}

func (m TaintMap) String() string {
	var parts []string
	m.ForEach(func(v Var, ts TaintSet) {
		parts = append(parts, fmt.Sprintf("%s %s %s", colorize.Key(v.String()), colorize.Element("↦"), ts.String()))
	})
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
