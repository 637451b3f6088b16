// Package interproc drives the inter-procedural fixpoint: walk the call
// graph's strongly connected components in reverse-topological order, and
// within each component re-run every member's intra-procedural fixpoint
// until no member's summary changes.
package interproc

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/intra"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/transfer"
	"github.com/wasmstatic/core/wasm"
)

// BuildSummaryFunc derives a defined function's summary from the state its
// intra-procedural fixpoint reached at the exit block. One is supplied per
// domain (e.g. domain/taint.BuildSummary).
type BuildSummaryFunc[S any] func(mod wasm.Module, fn wasm.Func, exitState S) summary.Summary[S]

// Result is everything the driver produced: the converged summary table
// and, per defined function, the full intra-procedural artifact (used by
// package engine to produce the rendered, annotated output).
type Result[S any] struct {
	Summaries summary.Table[S]
	Artifacts map[int]*intra.Artifact[S]
}

// Run executes the driver to convergence over schedule (as produced by
// callgraph.Schedule), starting from the seeded table.
func Run[S any](
	mod wasm.Module,
	xfer transfer.Transfer[S],
	ops summary.StateOps[S],
	resolve intra.IndirectResolver,
	buildSummary BuildSummaryFunc[S],
	table summary.Table[S],
	schedule [][]int,
) (res Result[S], retErr error) {
	defer errs.Recover(&retErr)

	funcs := indexFuncs(mod)
	artifacts := make(map[int]*intra.Artifact[S], len(funcs))

	for sccIdx, scc := range schedule {
		round := 0
		for {
			changed := false
			for _, idx := range scc {
				fn, ok := funcs[idx]
				if !ok {
					return Result[S]{}, errors.Errorf("scheduled function %d is not a defined function", idx)
				}

				conf := intra.Config[S]{Xfer: xfer, Summaries: table, Ops: ops, ResolveIndirect: resolve}
				art, err := intra.Run(mod, fn, fn.Body, conf)
				if err != nil {
					return Result[S]{}, errors.Wrapf(err, "analyzing function %d (scc %d, round %d)", idx, sccIdx, round)
				}
				artifacts[idx] = art

				next := buildSummary(mod, fn, art.Final(fn.Body))
				prev, had := table.Get(idx)
				if !had || !xfer.EqualState(prev.State, next.State) {
					table = table.Set(idx, next)
					changed = true
				}
			}
			round++
			if !changed {
				break
			}
		}
		logrus.Debugf("scc %d converged after %d round(s), %d function(s)", sccIdx, round, len(scc))
	}

	return Result[S]{Summaries: table, Artifacts: artifacts}, nil
}

func indexFuncs(mod wasm.Module) map[int]wasm.Func {
	m := make(map[int]wasm.Func, len(mod.Funcs()))
	for _, fn := range mod.Funcs() {
		m[fn.Idx] = fn
	}
	return m
}
