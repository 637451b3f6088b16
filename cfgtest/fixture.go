// Package cfgtest provides small, hand-built wasm.Module and cfg.Cfg
// fixtures for exercising the core's fixpoint and summary machinery
// without a real decoder.
package cfgtest

import (
	"github.com/wasmstatic/core/cfg"
	"github.com/wasmstatic/core/wasm"
)

// Module is a minimal, directly-constructed wasm.Module.
type Module struct {
	Imports []wasm.Import
	Defined []wasm.Func
	Globals []wasm.ValType
	Tbl     *wasm.TableInstance
	Types   []wasm.FuncType
}

func (m *Module) ImportedFuncs() []wasm.Import { return m.Imports }
func (m *Module) Funcs() []wasm.Func           { return m.Defined }
func (m *Module) NumGlobals() int              { return len(m.Globals) }
func (m *Module) GlobalType(i int) wasm.ValType { return m.Globals[i] }

func (m *Module) Table() (wasm.TableInstance, bool) {
	if m.Tbl == nil {
		return wasm.TableInstance{}, false
	}
	return *m.Tbl, true
}

func (m *Module) TypeOf(funIdx int) wasm.FuncType {
	for _, imp := range m.Imports {
		if imp.FuncIdx == funIdx {
			return imp.Type
		}
	}
	for _, fn := range m.Defined {
		if fn.Idx == funIdx {
			return fn.Type
		}
	}
	return wasm.FuncType{}
}

func (m *Module) TypeOfType(typeIdx int) wasm.FuncType {
	if typeIdx < 0 || typeIdx >= len(m.Types) {
		return wasm.FuncType{}
	}
	return m.Types[typeIdx]
}

var _ wasm.Module = (*Module)(nil)

// Data builds a KindData block.
func Data(id cfg.BlockID, instrs []cfg.Instr, succs ...cfg.Edge) *cfg.Block {
	return &cfg.Block{ID: id, Kind: cfg.KindData, Instrs: instrs, Succs: succs}
}

// Control builds a KindControl block.
func Control(id cfg.BlockID, ctrl cfg.Instr, succs ...cfg.Edge) *cfg.Block {
	return &cfg.Block{ID: id, Kind: cfg.KindControl, Control: ctrl, Succs: succs}
}

// Merge builds a KindMerge block.
func Merge(id cfg.BlockID, succs ...cfg.Edge) *cfg.Block {
	return &cfg.Block{ID: id, Kind: cfg.KindMerge, Succs: succs}
}

func To(id cfg.BlockID) cfg.Edge           { return cfg.Edge{To: id} }
func TakenTo(id cfg.BlockID) cfg.Edge      { return cfg.Edge{To: id, Label: cfg.Taken()} }
func NotTakenTo(id cfg.BlockID) cfg.Edge   { return cfg.Edge{To: id, Label: cfg.NotTaken()} }

// Build assembles a *cfg.Cfg from a flat list of blocks.
func Build(entry, exit cfg.BlockID, loopHeads map[cfg.BlockID]bool, blocks ...*cfg.Block) *cfg.Cfg {
	m := make(map[cfg.BlockID]*cfg.Block, len(blocks))
	for _, b := range blocks {
		m[b.ID] = b
	}
	if loopHeads == nil {
		loopHeads = map[cfg.BlockID]bool{}
	}
	return cfg.New(m, entry, exit, loopHeads)
}
