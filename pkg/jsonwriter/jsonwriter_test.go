package jsonwriter_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/pkg/dotbracket"
	"github.com/rnaplot/rnaplot/pkg/jsonwriter"
	"github.com/rnaplot/rnaplot/pkg/rnalayout"
	"github.com/rnaplot/rnaplot/pkg/sstree"
)

func layoutFor(t *testing.T, structure string) *rnalayout.Layout {
	t.Helper()
	ctx := context.Background()
	tokens, err := dotbracket.Tokenize(ctx, structure)
	require.NoError(t, err)
	tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{})
	require.NoError(t, err)
	l, err := rnalayout.Layout(ctx, tree, pairs, n)
	require.NoError(t, err)
	return l
}

func TestWriteJSONSchema(t *testing.T) {
	l := layoutFor(t, "(((...)))")

	out, err := jsonwriter.WriteJSON(l)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Contains(t, decoded, "positions")
	require.Contains(t, decoded, "pairs")
	require.Contains(t, decoded, "backbone")
	require.Contains(t, decoded, "arrow")
	require.Contains(t, decoded, "bounds")

	positions, ok := decoded["positions"].([]interface{})
	require.True(t, ok)
	require.Len(t, positions, len(l.Positions))
}

func TestWriteJSONSixDecimalDigits(t *testing.T) {
	l := layoutFor(t, "(((...)))")
	out, err := jsonwriter.WriteJSON(l)
	require.NoError(t, err)

	re := regexp.MustCompile(`-?\d+\.\d+`)
	for _, m := range re.FindAllString(string(out), -1) {
		dot := -1
		for i, c := range m {
			if c == '.' {
				dot = i
				break
			}
		}
		require.GreaterOrEqualf(t, len(m)-dot-1, 6, "number %q has fewer than 6 decimal digits", m)
	}
}

func TestWriteJSONPairsSortedByI(t *testing.T) {
	l := layoutFor(t, "((...)(...))")
	out, err := jsonwriter.WriteJSON(l)
	require.NoError(t, err)

	var decoded struct {
		Pairs [][2]int `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	for i := 1; i < len(decoded.Pairs); i++ {
		require.LessOrEqual(t, decoded.Pairs[i-1][0], decoded.Pairs[i][0])
	}
}
