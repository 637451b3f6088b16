package engine

import (
	"github.com/pkg/errors"

	"github.com/wasmstatic/core/annotate"
	"github.com/wasmstatic/core/domain/valuexfer"
	"github.com/wasmstatic/core/dot"
	"github.com/wasmstatic/core/intra"
	"github.com/wasmstatic/core/lattice"
	"github.com/wasmstatic/core/wasm"
)

// AnnotateTaint renders funcIdx's converged per-block/per-instruction
// states from report as an annotated CFG. When prior is non-nil and mode
// is annotate.ModeKeep, prior's annotation for the same function is paired
// alongside report's instead of being discarded.
func AnnotateTaint(mod wasm.Module, report TaintReport, funcIdx int, mode annotate.Mode, prior *TaintReport) (*dot.Graph, error) {
	fn, ok := funcByIdx(mod, funcIdx)
	if !ok {
		return nil, errors.Errorf("no defined function with index %d", funcIdx)
	}
	art, ok := report.Artifacts[funcIdx]
	if !ok {
		return nil, errors.Errorf("no fixpoint artifact recorded for function %d", funcIdx)
	}
	var priorArt *intra.Artifact[lattice.TaintMap]
	if prior != nil {
		priorArt = prior.Artifacts[funcIdx]
	}
	return annotate.Render(fn.Type.String(), fn.Body, art, mode, priorArt), nil
}

// AnnotateValue is AnnotateTaint's counterpart for the symbolic-value
// domain's report type.
func AnnotateValue(mod wasm.Module, report ValueReport, funcIdx int, mode annotate.Mode, prior *ValueReport) (*dot.Graph, error) {
	fn, ok := funcByIdx(mod, funcIdx)
	if !ok {
		return nil, errors.Errorf("no defined function with index %d", funcIdx)
	}
	art, ok := report.Artifacts[funcIdx]
	if !ok {
		return nil, errors.Errorf("no fixpoint artifact recorded for function %d", funcIdx)
	}
	var priorArt *intra.Artifact[valuexfer.State]
	if prior != nil {
		priorArt = prior.Artifacts[funcIdx]
	}
	return annotate.Render(fn.Type.String(), fn.Body, art, mode, priorArt), nil
}

func funcByIdx(mod wasm.Module, idx int) (wasm.Func, bool) {
	for _, fn := range mod.Funcs() {
		if fn.Idx == idx {
			return fn, true
		}
	}
	return wasm.Func{}, false
}
