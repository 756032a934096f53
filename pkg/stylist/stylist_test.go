package stylist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/pkg/stylist"
)

func positions(n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Point{X: float64(i), Y: 0}
	}
	return pts
}

func TestStyleNucleotideMode(t *testing.T) {
	seq := "ACGU"
	colors, legend, err := stylist.Style(context.Background(), positions(4), seq, stylist.StyleOptions{
		Mode: stylist.ModeNucleotide,
	})
	require.NoError(t, err)
	require.Len(t, colors, 4)
	require.Equal(t, "", legend.CaptionHTML)
	require.Empty(t, legend.ColorbarSVG)

	// Same base always gets the same color.
	colorsAgain, _, err := stylist.Style(context.Background(), positions(4), seq, stylist.StyleOptions{
		Mode: stylist.ModeNucleotide,
	})
	require.NoError(t, err)
	require.Equal(t, colors, colorsAgain)
}

func TestStyleProbabilityMode(t *testing.T) {
	probs := []float64{0, 0.25, 0.5, 0.75, 1}
	colors, legend, err := stylist.Style(context.Background(), positions(5), "", stylist.StyleOptions{
		Mode:          stylist.ModeProbability,
		Probabilities: probs,
	})
	require.NoError(t, err)
	require.Len(t, colors, 5)
	require.NotEmpty(t, legend.ColorbarSVG)

	// Endpoints hit the gradient's stop colors exactly.
	require.Equal(t, "#2166ac", colors[0].Hex())
	require.Equal(t, "#b2182b", colors[4].Hex())
}

func TestStyleColorOverrides(t *testing.T) {
	colors, _, err := stylist.Style(context.Background(), positions(1), "A", stylist.StyleOptions{
		Mode:      stylist.ModeNucleotide,
		Overrides: map[byte]string{'A': "#123456"},
	})
	require.NoError(t, err)
	require.Equal(t, "#123456", colors[0].Hex())
}

func TestStyleStructureLegend(t *testing.T) {
	_, legend, err := stylist.Style(context.Background(), positions(3), "", stylist.StyleOptions{
		Mode:      stylist.ModeNucleotide,
		Structure: "(.)",
	})
	require.NoError(t, err)
	require.Len(t, legend.StructureSpans, 3)
	for _, span := range legend.StructureSpans {
		require.NotEmpty(t, span.Color)
	}
}

func TestStyleCaption(t *testing.T) {
	_, legend, err := stylist.Style(context.Background(), positions(1), "", stylist.StyleOptions{
		Mode:    stylist.ModeNucleotide,
		Caption: "**bold** caption",
	})
	require.NoError(t, err)
	require.Contains(t, legend.CaptionHTML, "<strong>")
}

func TestStyleProbabilityModeWithRemap(t *testing.T) {
	probs := []float64{0, 1}
	colors, _, err := stylist.Style(context.Background(), positions(2), "", stylist.StyleOptions{
		Mode:          stylist.ModeProbability,
		Probabilities: probs,
		RemapExpr:     "1 - x",
	})
	require.NoError(t, err)
	// Remapping inverts the scale, so index 0 (probability 0 -> 1) lands on
	// the high stop and index 1 (probability 1 -> 0) lands on the low stop.
	require.Equal(t, "#b2182b", colors[0].Hex())
	require.Equal(t, "#2166ac", colors[1].Hex())
}

func TestStyleRejectsMismatchedSequenceLength(t *testing.T) {
	_, _, err := stylist.Style(context.Background(), positions(3), "AC", stylist.StyleOptions{Mode: stylist.ModeNucleotide})
	require.Error(t, err)
}
