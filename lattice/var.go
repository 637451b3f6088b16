package lattice

import "fmt"

// Var is the abstract-variable vocabulary every domain keys its state by.
// A Var is either a function parameter/local slot (Local) or a freshly
// numbered symbolic value produced by the out-of-scope spec-inference
// pre-pass for an instruction's result or operand (SymVar). Globals are
// represented by SymVar values at fixed indices, by convention of the
// pre-pass, not by this package.
type Var struct {
	kind  varKind
	Index int
}

type varKind uint8

const (
	localVar varKind = iota
	symVar
)

// Local constructs the Var naming function parameter/local slot i.
func Local(i int) Var { return Var{localVar, i} }

// SymVar constructs the Var naming the symbolic value numbered i.
func SymVar(i int) Var { return Var{symVar, i} }

// SummaryRetVar is the fixed canonical key a function's return value is
// renamed to when its summary is built, independent of whatever symbolic
// var the decoder's pre-pass happened to assign the returned value inside
// the function's own body. Negative sym indices are never produced by the
// pre-pass, so this can never collide with a real Var.
func SummaryRetVar() Var { return SymVar(-1) }

// GlobalVar constructs the Var naming global i, under the pre-pass's
// convention of representing globals as symbolic values at fixed indices.
func GlobalVar(i int) Var { return SymVar(i) }

// IsLocal reports whether v names a parameter/local slot.
func (v Var) IsLocal() bool { return v.kind == localVar }

// IsSym reports whether v names a symbolic value.
func (v Var) IsSym() bool { return v.kind == symVar }

func (v Var) String() string {
	if v.IsLocal() {
		return fmt.Sprintf("local(%d)", v.Index)
	}
	return fmt.Sprintf("sym(%d)", v.Index)
}

// Label identifies a taint source: the label of the instruction or argument
// that introduced a value into the analysis.
//
// Non-negative labels name real sources in the seeded universe. Negative
// labels are reserved for ArgLabel: a placeholder a function summary uses to
// record "this result depends on formal argument i", substituted away by
// summary.Apply once the actual argument's taint is known at a call site.
type Label int

// ArgLabel constructs the synthetic placeholder label standing for formal
// argument i during summary construction.
func ArgLabel(i int) Label { return Label(-(i + 1)) }

// IsArgLabel reports whether l is a placeholder produced by ArgLabel, and if
// so which argument position it names.
func IsArgLabel(l Label) (int, bool) {
	if l < 0 {
		return int(-l - 1), true
	}
	return 0, false
}
