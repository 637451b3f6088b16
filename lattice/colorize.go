package lattice

import (
	"github.com/fatih/color"
	"github.com/wasmstatic/core/config"
)

// colorize assigns each syntactic category of a printed lattice element its
// own color, gated behind config.CanColorize so piping output to a file or
// a CI log degrades to plain text.
var colorize = struct {
	Element func(...interface{}) string
	Key     func(...interface{}) string
	Const   func(...interface{}) string
}{
	Element: func(is ...interface{}) string {
		return config.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Key: func(is ...interface{}) string {
		return config.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return config.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
}
