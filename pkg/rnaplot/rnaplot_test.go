package rnaplot_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/pkg/rnaplot"
	"github.com/rnaplot/rnaplot/pkg/stylist"
)

func TestRenderHairpin(t *testing.T) {
	ctx := context.Background()
	result, err := rnaplot.Render(ctx, "(((...)))", "GGGAAACCC", rnaplot.Options{ShowLabels: true})
	require.NoError(t, err)

	require.Len(t, result.Layout.Positions, 9)
	require.Len(t, result.Colors, 9)
	require.True(t, strings.HasPrefix(result.SVG, "<svg"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(result.JSON, &decoded))
	require.Contains(t, decoded, "positions")
}

func TestRenderProbabilityModeWithLegend(t *testing.T) {
	ctx := context.Background()
	result, err := rnaplot.Render(ctx, "((.))", "GGCCC", rnaplot.Options{
		Mode:          stylist.ModeProbability,
		Probabilities: []float64{0.1, 0.2, 0.5, 0.8, 0.9},
		ShowLegend:    true,
		Caption:       "*toy hairpin*",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Legend.StructureSpans)
	require.Contains(t, result.Legend.CaptionHTML, "<em>")
	require.Contains(t, result.SVG, "foreignObject")
}

func TestRenderRejectsUnbalancedStructure(t *testing.T) {
	ctx := context.Background()
	_, err := rnaplot.Render(ctx, "(((...))", "GGGAAACC", rnaplot.Options{})
	require.Error(t, err)
}
