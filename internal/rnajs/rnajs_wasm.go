//go:build js && wasm

package rnajs

import (
	"fmt"
	"syscall/js"
)

type wasmRemapper struct{}

// New returns the WASM Remapper, delegating to the host browser's own JS
// engine via syscall/js instead of embedding a second one.
func New() Remapper {
	return wasmRemapper{}
}

func (wasmRemapper) Remap(expr string, v float64) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rnajs: panic evaluating remap expression: %v", r)
		}
	}()

	fn := js.Global().Get("Function").New("x", "return ("+expr+");")
	out := fn.Invoke(v)
	if out.Type() != js.TypeNumber {
		return 0, fmt.Errorf("rnajs: remap expression did not evaluate to a number")
	}
	return out.Float(), nil
}
