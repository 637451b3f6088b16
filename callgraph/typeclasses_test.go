package callgraph

import (
	"testing"

	"github.com/wasmstatic/core/cfgtest"
	"github.com/wasmstatic/core/wasm"
)

func i32i32() wasm.FuncType {
	return wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}}
}

func noArgs() wasm.FuncType {
	return wasm.FuncType{}
}

func TestBuildTypeClassesGroupsByStructuralType(t *testing.T) {
	mod := &cfgtest.Module{
		Imports: []wasm.Import{{FuncIdx: 0, Module: "env", Name: "a", Type: i32i32()}},
		Defined: []wasm.Func{
			{Idx: 1, Type: i32i32()},
			{Idx: 2, Type: noArgs()},
			{Idx: 3, Type: i32i32()},
		},
	}

	classes := BuildTypeClasses(mod)

	got := classes.Members(mod, i32i32())
	want := map[int]bool{0: true, 1: true, 3: true}
	if len(got) != len(want) {
		t.Fatalf("Members(i32->i32) = %v, want members %v", got, want)
	}
	for _, idx := range got {
		if !want[idx] {
			t.Fatalf("unexpected member %d in Members(i32->i32) = %v", idx, got)
		}
	}

	if got := classes.MembersOf(2); len(got) != 1 || got[0] != 2 {
		t.Fatalf("MembersOf(2) = %v, want [2]", got)
	}
}

func TestNewResolverMatchesResolveIndirectWithoutTable(t *testing.T) {
	mod := &cfgtest.Module{
		Defined: []wasm.Func{
			{Idx: 0, Type: i32i32()},
			{Idx: 1, Type: i32i32()},
			{Idx: 2, Type: noArgs()},
		},
		Types: []wasm.FuncType{i32i32()},
	}

	want := ResolveIndirect(mod, 0)
	resolve := NewResolver(mod)
	got := resolve(mod, 0)

	if len(got) != len(want) {
		t.Fatalf("NewResolver resolved %v, ResolveIndirect resolved %v", got, want)
	}
	seen := map[int]bool{}
	for _, idx := range want {
		seen[idx] = true
	}
	for _, idx := range got {
		if !seen[idx] {
			t.Fatalf("NewResolver returned unexpected target %d, ResolveIndirect gave %v", idx, want)
		}
	}
}
