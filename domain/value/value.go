// Package value implements a symbolic-value domain: it tracks, for every
// variable, either nothing known (⊥), a single concrete provenance (a
// formal argument, a global, a heap address, or a load result), or the
// sound "could be anything" top element reached once two distinct
// provenances are joined.
package value

import (
	"fmt"

	"github.com/wasmstatic/core/wasm"
)

// Marker distinguishes the three possible states of a Value.
type Marker int

const (
	MarkerBottom Marker = iota
	MarkerValue
	MarkerTop
)

// SourceKind classifies where a known Value's provenance comes from.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	// SourceArg names a formal argument, by position. Used the same way
	// lattice.ArgLabel is used by the taint domain: a placeholder that
	// summary.Apply's SubstituteArg stage resolves at a call site.
	SourceArg
	// SourceGlobal names a module global, by index.
	SourceGlobal
	// SourceHeapAddr names a location returned by a prior load from the
	// given abstract address, identified by its own Source so that two
	// loads from provably the same address share a provenance.
	SourceHeapAddr
)

// Source is a known Value's provenance.
type Source struct {
	Kind SourceKind
	Addr int
}

func UnknownSource() Source         { return Source{Kind: SourceUnknown} }
func Arg(i int) Source              { return Source{Kind: SourceArg, Addr: i} }
func Global(i int) Source           { return Source{Kind: SourceGlobal, Addr: i} }
func HeapAddr(addr int) Source      { return Source{Kind: SourceHeapAddr, Addr: addr} }

func (s Source) String() string {
	switch s.Kind {
	case SourceArg:
		return fmt.Sprintf("arg(%d)", s.Addr)
	case SourceGlobal:
		return fmt.Sprintf("global(%d)", s.Addr)
	case SourceHeapAddr:
		return fmt.Sprintf("heap(%d)", s.Addr)
	default:
		return "unknown"
	}
}

// Value is one element of the symbolic-value lattice. It is a plain
// comparable struct (no slices, no maps) so it can key a memory log or a
// map directly, the same way lattice.Var does for the taint domain.
type Value struct {
	Type   wasm.ValType
	Marker Marker
	Source Source
}

// Bottom constructs ⊥ at type t: nothing is known yet about this variable.
func Bottom(t wasm.ValType) Value { return Value{Type: t, Marker: MarkerBottom} }

// Top constructs ⊤ at type t: the value could be anything.
func Top(t wasm.ValType) Value { return Value{Type: t, Marker: MarkerTop} }

// Known constructs a Value with exactly one known provenance.
func Known(t wasm.ValType, src Source) Value { return Value{Type: t, Marker: MarkerValue, Source: src} }

func (v Value) IsBottom() bool { return v.Marker == MarkerBottom }
func (v Value) IsTop() bool    { return v.Marker == MarkerTop }
func (v Value) IsKnown() bool  { return v.Marker == MarkerValue }

// Join computes v ⊔ o. Two known values with the same provenance join to
// themselves; anything else that isn't ⊥ on one side escalates to ⊤, the
// sound over-approximation of a provenance conflict.
func (v Value) Join(o Value) Value {
	switch {
	case v.IsBottom():
		return o
	case o.IsBottom():
		return v
	case v.IsTop() || o.IsTop():
		return Top(wider(v.Type, o.Type))
	case v.Type == o.Type && v.Source == o.Source:
		return v
	default:
		return Top(wider(v.Type, o.Type))
	}
}

// wider picks a type to label a joined ⊤ value with, favoring whichever
// side actually carries one (⊥ carries no meaningful type).
func wider(a, b wasm.ValType) wasm.ValType {
	if a != 0 {
		return a
	}
	return b
}

// Leq reports v ⊑ o.
func (v Value) Leq(o Value) bool {
	switch {
	case v.IsBottom():
		return true
	case o.IsTop():
		return true
	case o.IsBottom():
		return false
	case v.IsTop():
		return false
	default:
		return v.Type == o.Type && v.Source == o.Source
	}
}

// Eq reports whether v and o are the same lattice element.
func (v Value) Eq(o Value) bool { return v.Leq(o) && o.Leq(v) }

// MayAlias reports whether v and o, used as memory addresses, could denote
// overlapping storage. ⊤ may alias anything (the sound over-approximation);
// ⊥ aliases nothing (no address is known yet, so there is nothing to read
// or write through it); two known addresses alias only when their
// provenance is identical.
func (v Value) MayAlias(o Value) bool {
	switch {
	case v.IsTop() || o.IsTop():
		return true
	case v.IsBottom() || o.IsBottom():
		return false
	default:
		return v.Source == o.Source
	}
}

func (v Value) String() string {
	switch v.Marker {
	case MarkerBottom:
		return "⊥"
	case MarkerTop:
		return "⊤"
	default:
		return v.Source.String()
	}
}
