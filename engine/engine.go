// Package engine wires the pieces — module, call graph, summary seeding,
// inter-procedural driver — into the top-level entry points a command-line
// frontend calls.
package engine

import (
	"github.com/wasmstatic/core/callgraph"
	"github.com/wasmstatic/core/config"
	"github.com/wasmstatic/core/domain/taint"
	"github.com/wasmstatic/core/domain/valuexfer"
	"github.com/wasmstatic/core/intra"
	"github.com/wasmstatic/core/interproc"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/wasm"
)

// TaintReport is the output of AnalyzeTaint: the converged summary table,
// every function's intra-procedural artifact, and the call graph the
// analysis resolved, so a frontend can render any of them.
type TaintReport struct {
	Summaries summary.Table[lattice.TaintMap]
	Artifacts map[int]*intra.Artifact[lattice.TaintMap]
	Graph     *callgraph.Graph
	SCCs      callgraph.SCCs
}

// ValueReport is AnalyzeValue's analog of TaintReport, carrying the
// symbolic-value domain's converged summaries and per-function artifacts.
type ValueReport struct {
	Summaries summary.Table[valuexfer.State]
	Artifacts map[int]*intra.Artifact[valuexfer.State]
	Graph     *callgraph.Graph
	SCCs      callgraph.SCCs
}

// buildCallGraph builds and decomposes the call graph once, always using
// the type-equivalence-class resolver (see callgraph.NewResolver) in place
// of the per-site linear FuncType.Equal scan, whatever the module's size.
func buildCallGraph(mod wasm.Module) (*callgraph.Graph, callgraph.SCCs, [][]int, func(wasm.Module, int) []int) {
	resolve := callgraph.NewResolver(mod)
	g := callgraph.Build(mod, resolve)
	sccs := g.Compute()
	schedule := callgraph.Schedule(mod, sccs)
	return g, sccs, schedule, resolve
}

// AnalyzeTaint runs the full taint analysis over mod: build the call
// graph, resolve indirect calls, decompose into SCCs, seed the summary
// table per config.Opts().SeedMode(), and drive the inter-procedural
// fixpoint to convergence.
func AnalyzeTaint(mod wasm.Module) (TaintReport, error) {
	g, sccs, schedule, resolve := buildCallGraph(mod)

	table := summary.Seed[lattice.TaintMap](
		summary.ParseSeedMode(config.Opts().SeedMode()),
		mod,
		taint.BottomSummary,
		taint.TopSummary,
		taint.OfImport,
	)

	result, err := interproc.Run[lattice.TaintMap](
		mod,
		taint.Instance{},
		taint.Ops{},
		resolve,
		taint.BuildSummary,
		table,
		schedule,
	)
	if err != nil {
		return TaintReport{}, err
	}

	return TaintReport{
		Summaries: result.Summaries,
		Artifacts: result.Artifacts,
		Graph:     g,
		SCCs:      sccs,
	}, nil
}

// AnalyzeValue runs the symbolic-value analysis over mod, mirroring
// AnalyzeTaint's structure with the value domain's transfer, ops, and
// summary builder wired in place of the taint domain's.
func AnalyzeValue(mod wasm.Module) (ValueReport, error) {
	g, sccs, schedule, resolve := buildCallGraph(mod)

	table := summary.Seed[valuexfer.State](
		summary.ParseSeedMode(config.Opts().SeedMode()),
		mod,
		valuexfer.BottomSummary,
		valuexfer.TopSummary,
		valuexfer.OfImport,
	)

	result, err := interproc.Run[valuexfer.State](
		mod,
		valuexfer.Instance{},
		valuexfer.Ops{},
		resolve,
		valuexfer.BuildSummary,
		table,
		schedule,
	)
	if err != nil {
		return ValueReport{}, err
	}

	return ValueReport{
		Summaries: result.Summaries,
		Artifacts: result.Artifacts,
		Graph:     g,
		SCCs:      sccs,
	}, nil
}
