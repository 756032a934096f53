//go:build !(js && wasm)

package rnajs

import (
	"fmt"

	"github.com/dop251/goja"
)

type gojaRemapper struct{}

// New returns the native Remapper backed by dop251/goja.
func New() Remapper {
	return gojaRemapper{}
}

func (gojaRemapper) Remap(expr string, v float64) (result float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rnajs: panic evaluating remap expression: %v", r)
		}
	}()

	vm := goja.New()
	vm.Set("x", v)
	out, err := vm.RunString(expr)
	if err != nil {
		return 0, fmt.Errorf("rnajs: evaluating remap expression: %w", err)
	}
	return out.ToFloat(), nil
}
