// Package intra implements the generic worklist fixpoint: one function
// body, one Cfg, one Transfer[S] realization, iterated to a fixpoint with
// widening at loop heads. It also hosts the one piece of call handling
// that is not pluggable per domain: applying the current summary table at
// a Call/CallIndirect instruction — this is generic machinery over any
// StateOps[S], not a Transfer[S] method.
package intra

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/errs"
	"github.com/wasmstatic/core/summary"
	"github.com/wasmstatic/core/transfer"
	"github.com/wasmstatic/core/utils/pq"
	"github.com/wasmstatic/core/wasm"
)

// PrePost records the state immediately before and immediately after one
// instruction.
type PrePost[S any] struct {
	Pre, Post S
}

// Artifact is the full per-block and per-instruction record of one
// fixpoint run, kept around for both summary construction and the
// engine package's rendered output.
type Artifact[S any] struct {
	BlockPre  map[cfg.BlockID]S
	BlockPost map[cfg.BlockID]transfer.Result[S]
	InstrData map[cfg.InstrLabel]PrePost[S]
}

// Final returns the state flowing into g's exit block, the state a
// function's summary is built from.
func (a *Artifact[S]) Final(g *cfg.Cfg) S {
	return a.BlockPre[g.Exit]
}

// IndirectResolver resolves the possible call targets of a CallIndirect
// instruction by its declared type index. Supplied by package callgraph;
// taken here as a plain function so this package need not import callgraph.
type IndirectResolver func(mod wasm.Module, typeIdx int) []int

// Config bundles everything a Run needs beyond the function body itself.
type Config[S any] struct {
	Xfer            transfer.Transfer[S]
	Summaries       summary.Table[S]
	Ops             summary.StateOps[S]
	ResolveIndirect IndirectResolver
}

// Run iterates the worklist fixpoint over fn's Cfg to convergence and
// returns the full per-block/per-instruction artifact. It recovers from any
// errs.Fatal raised by the Transfer realization or by this package's own
// call-handling code, turning it into a normal error return.
func Run[S any](mod wasm.Module, fn wasm.Func, g *cfg.Cfg, conf Config[S]) (art *Artifact[S], retErr error) {
	defer errs.Recover(&retErr)

	xfer := conf.Xfer
	art = &Artifact[S]{
		BlockPre:  map[cfg.BlockID]S{},
		BlockPost: map[cfg.BlockID]transfer.Result[S]{},
		InstrData: map[cfg.InstrLabel]PrePost[S]{},
	}

	wl := pq.Empty[cfg.BlockID](func(a, b cfg.BlockID) bool { return a < b })
	wl.Add(g.Entry)
	visited := map[cfg.BlockID]bool{}

	for !wl.IsEmpty() {
		id := wl.GetNext()
		block, ok := g.Blocks[id]
		if !ok {
			errs.Fatal(errs.ErrMalformedCFG, "block %d is referenced but not present in the graph", id)
		}

		pre := computePre(mod, fn, g, block, art, xfer)
		if prior, ok := art.BlockPre[id]; ok && visited[id] && xfer.EqualState(prior, pre) {
			continue
		}
		art.BlockPre[id] = pre
		visited[id] = true

		post := runBlock(mod, fn, g, block, pre, art, conf)
		if prior, had := art.BlockPost[id]; had {
			art.BlockPost[id] = post
			if resultEqual(prior, post, xfer) {
				continue
			}
		} else {
			art.BlockPost[id] = post
		}

		for _, e := range block.Succs {
			wl.Add(e.To)
		}
	}

	return art, nil
}

func computePre[S any](mod wasm.Module, fn wasm.Func, g *cfg.Cfg, block *cfg.Block, art *Artifact[S], xfer transfer.Transfer[S]) S {
	if block.ID == g.Entry {
		return xfer.DomainInit(mod, fn)
	}

	preds := g.Preds(block.ID)
	if len(preds) == 0 {
		errs.Fatal(errs.ErrMalformedCFG, "block %d is unreachable from the entry block", block.ID)
	}

	var flows []transfer.PredFlow[S]
	for _, e := range preds {
		post, ok := art.BlockPost[e.To]
		if !ok {
			continue
		}
		flows = append(flows, transfer.PredFlow[S]{Pred: e.To, State: selectArm(post, e.Label, block.ID)})
	}

	merged := xfer.MergeFlows(mod, g, block, flows)
	if g.LoopHeads[block.ID] {
		if prior, ok := art.BlockPre[block.ID]; ok {
			return xfer.WidenState(prior, merged)
		}
	}
	return merged
}

func selectArm[S any](post transfer.Result[S], label *bool, succ cfg.BlockID) S {
	switch post.Shape {
	case transfer.ShapeSimple:
		return post.Simple
	case transfer.ShapeBranch:
		if label == nil {
			errs.Fatal(errs.ErrShapeMismatch, "edge into block %d carries a branch predecessor but no true/false label", succ)
		}
		if *label {
			return post.BranchTrue
		}
		return post.BranchFalse
	default:
		errs.Fatal(errs.ErrShapeMismatch, "edge into block %d reads an uninitialized predecessor result", succ)
		var zero S
		return zero
	}
}

func resultEqual[S any](a, b transfer.Result[S], xfer transfer.Transfer[S]) bool {
	if a.Shape != b.Shape {
		return false
	}
	switch a.Shape {
	case transfer.ShapeSimple:
		return xfer.EqualState(a.Simple, b.Simple)
	case transfer.ShapeBranch:
		return xfer.EqualState(a.BranchTrue, b.BranchTrue) && xfer.EqualState(a.BranchFalse, b.BranchFalse)
	default:
		return true
	}
}

func runBlock[S any](mod wasm.Module, fn wasm.Func, g *cfg.Cfg, block *cfg.Block, pre S, art *Artifact[S], conf Config[S]) transfer.Result[S] {
	switch block.Kind {
	case cfg.KindData:
		state := pre
		for _, instr := range block.Instrs {
			instrPre := state
			var instrPost S
			if instr.Op == cfg.OpCall || instr.Op == cfg.OpCallIndirect {
				instrPost = applyCall(mod, instr, state, conf)
			} else {
				instrPost = conf.Xfer.DataInstrTransfer(mod, g, instr, state)
			}
			art.InstrData[instr.Label] = PrePost[S]{Pre: instrPre, Post: instrPost}
			state = instrPost
		}
		return transfer.Simple(state)
	case cfg.KindControl:
		return conf.Xfer.ControlInstrTransfer(mod, g, block.Control, pre)
	case cfg.KindMerge:
		return transfer.Simple(pre)
	default:
		errs.Fatal(errs.ErrMalformedCFG, "block %d has unrecognized kind %v", block.ID, block.Kind)
		return transfer.Result[S]{}
	}
}

// applyCall resolves a call instruction's target(s) and applies each
// resolved target's current summary, joining the results when an indirect
// call resolves to more than one possible callee.
func applyCall[S any](mod wasm.Module, instr cfg.Instr, pre S, conf Config[S]) S {
	var calleeType wasm.FuncType
	var targets []int
	if instr.Op == cfg.OpCall {
		calleeType = mod.TypeOf(instr.CalleeIdx)
		targets = []int{instr.CalleeIdx}
	} else {
		calleeType = mod.TypeOfType(instr.TypeIdx)
		targets = conf.ResolveIndirect(mod, instr.TypeIdx)
		if len(targets) == 0 {
			errs.Warn("indirect call at instruction %d resolved to no possible target; leaving state unchanged", instr.Label)
			return pre
		}
	}

	hasRet := len(calleeType.Results) > 0
	actuals := instr.Args(hasRet)
	if len(actuals) != len(calleeType.Params) {
		errs.Fatal(errs.ErrMismatchedCall, "call at instruction %d passes %d actuals, callee type declares %d params", instr.Label, len(actuals), len(calleeType.Params))
	}
	var retVar *cfg.Var
	if hasRet {
		v, ok := instr.Ret(true)
		if !ok {
			errs.Fatal(errs.ErrMismatchedCall, "call at instruction %d targets a function with a result but carries no result var", instr.Label)
		}
		retVar = &v
	}

	var out S
	joined := false
	for _, tIdx := range targets {
		sum, ok := conf.Summaries.Get(tIdx)
		if !ok {
			errs.Fatal(errs.ErrMismatchedCall, "call at instruction %d targets function %d, which has no seeded summary", instr.Label, tIdx)
		}
		applied, err := summary.Apply(conf.Ops, conf.Xfer.JoinState, sum, actuals, retVar, pre)
		if err != nil {
			errs.Fatal(errs.ErrMismatchedCall, "applying summary of function %d at instruction %d: %v", tIdx, instr.Label, err)
		}
		if !joined {
			out, joined = applied, true
		} else {
			out = conf.Xfer.JoinState(out, applied)
		}
	}
	return out
}
