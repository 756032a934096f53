// Package rnajs evaluates an optional user-supplied JavaScript expression
// that remaps a probability in [0,1] before pkg/stylist applies its
// gradient. Grounded on lib/jsrunner/js.go's Engine/JSValue split: one
// interface, two backends switched by build tag — dop251/goja for native
// builds (what runs under `go test` and the CLI), syscall/js for the WASM
// binding where a real JS runtime (the browser's) is already present and
// pulling in a second JS engine would be pointless.
package rnajs

// Remapper evaluates expr, an arbitrary JS expression referencing the free
// variable x, with x bound to v.
type Remapper interface {
	Remap(expr string, v float64) (float64, error)
}
