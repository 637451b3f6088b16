package summary

import "github.com/wasmstatic/core/wasm"

// SeedMode selects the starting point for every defined function's summary
// before the inter-procedural driver runs its first SCC iteration.
// SeedBottom is the sound default:
// the driver can only learn more as SCCs converge. SeedTop is available for
// callers that want an immediately-usable (but possibly unsound until
// convergence) over-approximation, selected with --seed=top.
type SeedMode int

const (
	SeedBottom SeedMode = iota
	SeedTop
)

// ParseSeedMode maps the CLI's --seed string onto a SeedMode, defaulting to
// SeedBottom for any unrecognized value.
func ParseSeedMode(s string) SeedMode {
	if s == "top" {
		return SeedTop
	}
	return SeedBottom
}

// Seed builds the initial Table for mod: bottomFn/topFn construct a defined
// function's starting summary (selected by mode), and importFn constructs
// the fixed summary standing in for an imported function, which the driver
// never re-derives from a fixpoint since no body is available to analyze.
func Seed[S any](mode SeedMode, mod wasm.Module, bottomFn, topFn func(fn wasm.Func, nglobals int) Summary[S], importFn func(imp wasm.Import, nglobals int) Summary[S]) Table[S] {
	t := NewTable[S]()
	nglobals := mod.NumGlobals()
	for _, imp := range mod.ImportedFuncs() {
		t = t.Set(imp.FuncIdx, importFn(imp, nglobals))
	}
	for _, fn := range mod.Funcs() {
		var s Summary[S]
		if mode == SeedTop {
			s = topFn(fn, nglobals)
		} else {
			s = bottomFn(fn, nglobals)
		}
		t = t.Set(fn.Idx, s)
	}
	return t
}
