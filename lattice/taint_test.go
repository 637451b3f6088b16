package lattice

import "testing"

func TestTaintMapJoinUnions(t *testing.T) {
	a := BottomTaintMap().Replace(Local(0), SingleTaint(Label(1)))
	b := BottomTaintMap().Replace(Local(0), SingleTaint(Label(2))).Replace(Local(1), SingleTaint(Label(3)))

	joined := a.Join(b)

	if got := joined.Get(Local(0)); !got.Has(Label(1)) || !got.Has(Label(2)) {
		t.Fatalf("Local(0) = %v, want {1,2}", got)
	}
	if got := joined.Get(Local(1)); !got.Has(Label(3)) {
		t.Fatalf("Local(1) = %v, want {3}", got)
	}
}

func TestTaintMapLeqIsPartialOrder(t *testing.T) {
	small := BottomTaintMap().Replace(Local(0), SingleTaint(Label(1)))
	big := BottomTaintMap().Replace(Local(0), SingleTaint(Label(1)).Union(SingleTaint(Label(2))))

	if !small.Leq(big) {
		t.Fatalf("expected small ⊑ big")
	}
	if big.Leq(small) {
		t.Fatalf("expected big ⋢ small")
	}
}

func TestTaintMapRenameKeyIsNoOpOnSelf(t *testing.T) {
	m := BottomTaintMap().Replace(Local(0), SingleTaint(Label(1)))
	if got := m.RenameKey(Local(0), Local(0)); !got.Eq(m) {
		t.Fatalf("renaming a key to itself changed the map: %v", got)
	}
}

func TestTaintMapRenameKeyMoves(t *testing.T) {
	m := BottomTaintMap().Replace(Local(0), SingleTaint(Label(1)))
	renamed := m.RenameKey(Local(0), Local(1))

	if got := renamed.Get(Local(0)); got.Has(Label(1)) {
		t.Fatalf("old key Local(0) still bound after rename: %v", got)
	}
	if got := renamed.Get(Local(1)); !got.Has(Label(1)) {
		t.Fatalf("new key Local(1) missing taint after rename: %v", got)
	}
}

func TestTaintMapRestrictDropsUnlistedKeys(t *testing.T) {
	m := BottomTaintMap().
		Replace(Local(0), SingleTaint(Label(1))).
		Replace(Local(1), SingleTaint(Label(2)))

	restricted := m.Restrict([]Var{Local(0)})

	if got := restricted.Get(Local(0)); !got.Has(Label(1)) {
		t.Fatalf("kept key lost its taint: %v", got)
	}
	if got := restricted.Get(Local(1)); got.Has(Label(2)) {
		t.Fatalf("dropped key %v still present", got)
	}
}

func TestSubstituteArgLabelResolvesDependency(t *testing.T) {
	// Summary state: the global depends on argument 0.
	summaryState := BottomTaintMap().Replace(GlobalVar(0), SingleTaint(ArgLabel(0)))

	// Caller state: the actual argument at the call site carries real taint.
	callerState := BottomTaintMap().Replace(Local(5), SingleTaint(Label(42)))

	resolved := summaryState.SubstituteArgLabel(0, callerState.Get(Local(5)))

	got := resolved.Get(GlobalVar(0))
	if !got.Has(Label(42)) {
		t.Fatalf("expected resolved global to carry label 42, got %v", got)
	}
	if n, ok := IsArgLabel(Label(-1)); !ok || n != 0 {
		t.Fatalf("ArgLabel round-trip broken")
	}
}
