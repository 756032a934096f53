package svgwriter_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/pkg/dotbracket"
	"github.com/rnaplot/rnaplot/pkg/rnalayout"
	"github.com/rnaplot/rnaplot/pkg/sstree"
	"github.com/rnaplot/rnaplot/pkg/stylist"
	"github.com/rnaplot/rnaplot/pkg/svgwriter"
)

func layoutAndColors(t *testing.T, structure, sequence string) (*rnalayout.Layout, []stylist.Color) {
	t.Helper()
	ctx := context.Background()
	tokens, err := dotbracket.Tokenize(ctx, structure)
	require.NoError(t, err)
	tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{})
	require.NoError(t, err)
	l, err := rnalayout.Layout(ctx, tree, pairs, n)
	require.NoError(t, err)
	colors, _, err := stylist.Style(ctx, l.Positions, sequence, stylist.StyleOptions{})
	require.NoError(t, err)
	return l, colors
}

func TestWriteSVGWellFormed(t *testing.T) {
	l, colors := layoutAndColors(t, "(((...)))", "GGGAAACCC")
	out, err := svgwriter.WriteSVG(l, colors, stylist.Legend{}, svgwriter.Options{Sequence: "GGGAAACCC"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "<svg"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
	require.Contains(t, out, "<circle")
	require.Contains(t, out, "<line")
}

func TestWriteSVGEmbedsLegend(t *testing.T) {
	l, colors := layoutAndColors(t, "(((...)))", "GGGAAACCC")
	ctx := context.Background()
	_, legend, err := stylist.Style(ctx, l.Positions, "GGGAAACCC", stylist.StyleOptions{
		Structure: "(((...)))",
		Caption:   "**hairpin**",
	})
	require.NoError(t, err)

	out, err := svgwriter.WriteSVG(l, colors, legend, svgwriter.Options{Sequence: "GGGAAACCC"})
	require.NoError(t, err)
	require.Contains(t, out, "foreignObject")
	require.Contains(t, out, "<strong>")
}

func TestWriteSVGWidensForLongLegend(t *testing.T) {
	l, colors := layoutAndColors(t, "(.)", "G.C")
	ctx := context.Background()
	_, legend, err := stylist.Style(ctx, l.Positions, "G.C", stylist.StyleOptions{
		Structure: strings.Repeat("(.)", 40),
	})
	require.NoError(t, err)

	out, err := svgwriter.WriteSVG(l, colors, legend, svgwriter.Options{})
	require.NoError(t, err)
	require.Contains(t, out, "<svg")
	// The molecule spans 5 layout units (100px); the 120-glyph legend at 7px
	// a glyph is 840px, plus a 16px margin on either side.
	require.Contains(t, out, `width="872"`)
}

func TestWriteSVGNoLegendIsCompact(t *testing.T) {
	l, colors := layoutAndColors(t, "(.)", "G.C")
	out, err := svgwriter.WriteSVG(l, colors, stylist.Legend{}, svgwriter.Options{})
	require.NoError(t, err)
	require.NotContains(t, out, "foreignObject")
	require.NotContains(t, out, "image")
}
