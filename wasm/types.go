// Package wasm defines the read-only module view the analysis core consumes.
//
// Everything here is a narrow interface onto the decoder and CFG builder that
// produce it; neither lives in this module. The core never mutates a Module,
// a Func, or a Cfg once constructed.
package wasm

import (
	"fmt"
	"strings"

	"github.com/wasmstatic/core/cfg"
)

// ValType is a WebAssembly value type.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("valtype(%#x)", byte(v))
	}
}

// FuncType is a WebAssembly function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) String() string {
	ps := make([]string, len(t.Params))
	for i, p := range t.Params {
		ps[i] = p.String()
	}
	rs := make([]string, len(t.Results))
	for i, r := range t.Results {
		rs[i] = r.String()
	}
	return fmt.Sprintf("(%s) -> (%s)", strings.Join(ps, ", "), strings.Join(rs, ", "))
}

// Equal checks strict structural equality between two function types, as
// required by indirect-call resolution (every resolved CallIndirect target
// must have a function type structurally equal to the call's type index).
func (t FuncType) Equal(o FuncType) bool {
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range t.Results {
		if t.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// Import describes one imported function, ordered as it appears in the
// module's import section.
type Import struct {
	FuncIdx int
	Module  string
	Name    string
	Type    FuncType
}

func (i Import) QualifiedName() string {
	return i.Module + "." + i.Name
}

// Func is one function defined in the module.
type Func struct {
	Idx    int
	Type   FuncType
	Locals []ValType
	Body   *cfg.Cfg
}

// TableInstance models an indirect-call table. Slot values are function
// indices (spanning both imports and defined functions); -1 marks an
// uninitialized slot.
type TableInstance struct {
	Slots []int32
}

// Module is the read-only, narrow interface the core consumes. Globals are
// addressed by index; both imported and defined functions are addressed by
// a single index space with imports first, matching the node numbering used
// by the call graph (see package callgraph).
type Module interface {
	ImportedFuncs() []Import
	Funcs() []Func
	NumGlobals() int
	GlobalType(i int) ValType
	Table() (TableInstance, bool)

	// TypeOf resolves the function type of the function (imported or
	// defined) at the given index in the combined index space.
	TypeOf(funIdx int) FuncType

	// TypeOfType resolves a function type by its index into the module's
	// type section, as recorded on a CallIndirect instruction
	// (cfg.Instr.TypeIdx). Distinct from TypeOf, which resolves by the
	// combined function index space instead.
	TypeOfType(typeIdx int) FuncType
}

// NumFuncs is the total node count of the combined import+defined index
// space, i.e. the node count of the call graph built over mod.
func NumFuncs(mod Module) int {
	return len(mod.ImportedFuncs()) + len(mod.Funcs())
}

// IsImport reports whether funIdx addresses an imported function.
func IsImport(mod Module, funIdx int) bool {
	return funIdx < len(mod.ImportedFuncs())
}
