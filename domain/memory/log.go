// Package memory implements the symbolic-value domain's abstract heap,
// keyed by abstract address rather than by Var, since a load or store's
// address is itself a domain/value.Value, not a lattice.Var.
//
// A Log never performs a strong update on an address by default: storing
// to an address that may already hold a value joins the new value in
// rather than overwriting it, so two loads through aliased (or simply
// unresolved) addresses both see whatever was ever written through either.
// This is a known, permanent approximation. StrongLog opts into exact
// single-address overwrites for callers that have proven an address is
// never aliased; it is never the default.
package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/wasmstatic/core/domain/value"
)

// Log is the abstract heap: a map from abstract address to the (possibly
// joined) value ever stored there. value.Value is a plain comparable
// struct, so it can key an immutable.Map the same way lattice.Var keys
// TaintMap's, given an explicit Hasher.
type Log struct {
	mp     *immutable.Map[value.Value, value.Value]
	Strong bool
}

// valueHasher is the immutable.Hasher for value.Value: value.Value is a
// struct, so the underlying map implementation has no built-in hashing
// strategy for it and one must be supplied explicitly.
type valueHasher struct{}

func (valueHasher) Hash(v value.Value) uint32 {
	return uint32(v.Type)*31*31 + uint32(v.Marker)*31 + uint32(v.Source.Kind)*31 + uint32(v.Source.Addr)
}

func (valueHasher) Equal(a, b value.Value) bool { return a == b }

// NewLog constructs the empty heap with the default (never-strong) update
// discipline.
func NewLog() Log {
	return Log{mp: immutable.NewMap[value.Value, value.Value](valueHasher{})}
}

// NewStrongLog constructs the empty heap under the opt-in discipline where
// a store to a known, non-aliasing address overwrites instead of joining.
func NewStrongLog() Log {
	l := NewLog()
	l.Strong = true
	return l
}

// Store records that val was written through addr. Under the default
// discipline this always joins into whatever was already there, since the
// exact address is never known to be the only thing that could hold that
// binding; under Strong, a known, non-⊤ address overwrites its own binding
// exactly, while any write through an unresolved (⊤) address still falls
// back to joining across the whole log, since it might alias anything in
// it.
func (l Log) Store(addr, val value.Value) Log {
	if l.Strong && addr.IsKnown() {
		return Log{mp: l.mp.Set(addr, val), Strong: true}
	}
	if l.Strong && addr.IsTop() {
		mp := immutable.NewMap[value.Value, value.Value](valueHasher{})
		it := l.mp.Iterator()
		for !it.Done() {
			k, v, _ := it.Next()
			mp = mp.Set(k, v.Join(val))
		}
		if _, ok := mp.Get(addr); !ok {
			mp = mp.Set(addr, val)
		}
		return Log{mp: mp, Strong: true}
	}
	cur, ok := l.mp.Get(addr)
	if !ok {
		cur = value.Bottom(val.Type)
	}
	return Log{mp: l.mp.Set(addr, cur.Join(val)), Strong: l.Strong}
}

// Load returns the join of every value ever stored through an address that
// may alias addr — the sound answer when the exact address isn't known to
// be the only writer.
func (l Log) Load(addr value.Value) value.Value {
	out := value.Bottom(addr.Type)
	it := l.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if k.MayAlias(addr) {
			out = out.Join(v)
		}
	}
	return out
}

// Join computes the pointwise join of two heaps.
func (l Log) Join(o Log) Log {
	out := l.mp
	it := o.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		if cur, ok := out.Get(k); ok {
			out = out.Set(k, cur.Join(v))
		} else {
			out = out.Set(k, v)
		}
	}
	return Log{mp: out, Strong: l.Strong || o.Strong}
}

// Widen is Join: every address's value lattice has height 2 (⊥, a known
// provenance, ⊤), and the address universe is bounded by the module's
// instruction count, so join alone guarantees termination.
func (l Log) Widen(o Log) Log { return l.Join(o) }

// Leq reports l ⊑ o.
func (l Log) Leq(o Log) bool {
	it := l.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		ov, ok := o.mp.Get(k)
		if !ok {
			if !v.IsBottom() {
				return false
			}
			continue
		}
		if !v.Leq(ov) {
			return false
		}
	}
	return true
}

// Eq reports whether l and o carry identical bindings.
func (l Log) Eq(o Log) bool { return l.Leq(o) && o.Leq(l) }

// ForEach iterates every address/value binding, in an unspecified order.
func (l Log) ForEach(do func(value.Value, value.Value)) {
	it := l.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		do(k, v)
	}
}

func (l Log) String() string {
	var parts []string
	l.ForEach(func(addr, v value.Value) {
		parts = append(parts, fmt.Sprintf("%s ↦ %s", addr, v))
	})
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
