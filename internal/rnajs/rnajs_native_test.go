//go:build !(js && wasm)

package rnajs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/internal/rnajs"
)

func TestRemapIdentity(t *testing.T) {
	r := rnajs.New()
	v, err := r.Remap("x", 0.42)
	require.NoError(t, err)
	require.InDelta(t, 0.42, v, 1e-9)
}

func TestRemapExpression(t *testing.T) {
	r := rnajs.New()
	v, err := r.Remap("Math.sqrt(x)", 0.25)
	require.NoError(t, err)
	require.InDelta(t, 0.5, v, 1e-9)
}

func TestRemapInvalidExpressionErrors(t *testing.T) {
	r := rnajs.New()
	_, err := r.Remap("((((", 0.5)
	require.Error(t, err)
}
