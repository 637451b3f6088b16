package summary

import "github.com/benbjohnson/immutable"

// Table is an immutable map from function index (imported or defined) to
// its current Summary, rebuilt (functionally) after every fixpoint re-run during the
// inter-procedural driver's SCC iteration.
type Table[S any] struct {
	mp *immutable.Map[int, Summary[S]]
}

// NewTable returns the empty table.
func NewTable[S any]() Table[S] {
	return Table[S]{immutable.NewMap[int, Summary[S]](nil)}
}

// Get looks up the summary for funcIdx.
func (t Table[S]) Get(funcIdx int) (Summary[S], bool) {
	return t.mp.Get(funcIdx)
}

// Set returns a table with funcIdx rebound to s.
func (t Table[S]) Set(funcIdx int, s Summary[S]) Table[S] {
	return Table[S]{t.mp.Set(funcIdx, s)}
}

// Len returns the number of entries in the table.
func (t Table[S]) Len() int { return t.mp.Len() }

// ForEach iterates all (funcIdx, Summary) pairs, in an unspecified order.
func (t Table[S]) ForEach(do func(int, Summary[S])) {
	it := t.mp.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		do(k, v)
	}
}
