// Package e2etests exercises spec.md §8's concrete worked scenarios
// (E1-E6) plus its universal invariants, end to end through
// pkg/rnaplot.Render — the same table-driven testCase{name, ...} shape the
// teacher's own e2etests package used for its D2 script fixtures.
package e2etests

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/pkg/dotbracket"
	"github.com/rnaplot/rnaplot/pkg/rnalayout"
	"github.com/rnaplot/rnaplot/pkg/rnaplot"
	"github.com/rnaplot/rnaplot/pkg/sstree"
)

type testCase struct {
	name      string
	structure string
	sequence  string
}

func layoutFor(t *testing.T, tc testCase) *rnalayout.Layout {
	t.Helper()
	ctx := context.Background()
	tokens, err := dotbracket.Tokenize(ctx, tc.structure)
	require.NoError(t, err)
	tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{})
	require.NoError(t, err)
	l, err := rnalayout.Layout(ctx, tree, pairs, n)
	require.NoError(t, err)
	return l
}

// circumcenter returns the center of the circle through three non-collinear
// points, via the standard perpendicular-bisector intersection formula.
func circumcenter(a, b, c geom.Point) geom.Point {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	aSq, bSq, cSq := a.X*a.X+a.Y*a.Y, b.X*b.X+b.Y*b.Y, c.X*c.X+c.Y*c.Y
	ux := (aSq*(b.Y-c.Y) + bSq*(c.Y-a.Y) + cSq*(a.Y-b.Y)) / d
	uy := (aSq*(c.X-b.X) + bSq*(a.X-c.X) + cSq*(b.X-a.X)) / d
	return geom.Point{X: ux, Y: uy}
}

func collinear(t *testing.T, points ...geom.Point) {
	t.Helper()
	if len(points) < 3 {
		return
	}
	base := points[0]
	dir := points[len(points)-1].Sub(base)
	for _, p := range points[1:] {
		v := p.Sub(base)
		cross := dir.X*v.Y - dir.Y*v.X
		assert.InDelta(t, 0, cross, 1e-6, "points not collinear")
	}
}

// E1: a simple hairpin.
func TestE1Hairpin(t *testing.T) {
	tc := testCase{name: "E1", structure: "(((...)))", sequence: "GGGAAACCC"}
	l := layoutFor(t, tc)

	require.Len(t, l.Positions, 9)
	require.ElementsMatch(t, []rnalayout.Bond{{I: 0, J: 8}, {I: 1, J: 7}, {I: 2, J: 6}}, l.PairBonds)

	collinear(t, l.Positions[0], l.Positions[1], l.Positions[2])
	collinear(t, l.Positions[6], l.Positions[7], l.Positions[8])

	// The loop's perimeter is the parent pair's two endpoints (2, 6) plus
	// its 3 unpaired bases (3, 4, 5); all 5 must lie on one circle.
	center := circumcenter(l.Positions[2], l.Positions[3], l.Positions[4])
	r := center.Dist(l.Positions[2])
	for _, i := range []int{3, 4, 5, 6} {
		assert.InDelta(t, r, center.Dist(l.Positions[i]), 1e-6, "loop perimeter points not on a common circle")
	}
}

// E2: fully unpaired strand.
func TestE2UnpairedStrand(t *testing.T) {
	tc := testCase{name: "E2", structure: "...", sequence: "AAA"}
	l := layoutFor(t, tc)

	require.Len(t, l.Positions, 3)
	require.Empty(t, l.PairBonds)
	collinear(t, l.Positions[0], l.Positions[1], l.Positions[2])

	for i := 0; i < 2; i++ {
		assert.InDelta(t, rnalayout.BackboneSpacing, l.Positions[i].Dist(l.Positions[i+1]), 1e-6)
	}
}

// E3: a single strand break inside a hairpin loop. The break consumes no
// nucleotide index, so "((.+.))" has 6 nucleotides and only the (2,3)
// backbone segment is dropped.
func TestE3StrandBreak(t *testing.T) {
	tc := testCase{name: "E3", structure: "((.+.))", sequence: "GGAACC"}
	l := layoutFor(t, tc)

	require.Len(t, l.Positions, 6)
	require.ElementsMatch(t, []rnalayout.Bond{{I: 0, J: 5}, {I: 1, J: 4}}, l.PairBonds)
	require.ElementsMatch(t, []rnalayout.Bond{{I: 0, J: 1}, {I: 1, J: 2}, {I: 3, J: 4}, {I: 4, J: 5}}, l.BackboneSegments)
}

// E4: two top-level stems joined by the exterior loop, each growing +y.
func TestE4TwoTopLevelStems(t *testing.T) {
	ctx := context.Background()
	tokens, err := dotbracket.Tokenize(ctx, "((...))((...))")
	require.NoError(t, err)
	tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{})
	require.NoError(t, err)
	l, err := rnalayout.Layout(ctx, tree, pairs, n)
	require.NoError(t, err)

	require.Len(t, l.Positions, 14)
	require.Len(t, l.PairBonds, 4)
	require.Len(t, tree.Stems, 2)

	for _, stem := range tree.Stems {
		first, last := stem.Pairs[0], stem.Pairs[len(stem.Pairs)-1]
		growth := l.Positions[last.I].Sub(l.Positions[first.I])
		assert.Greater(t, growth.Y, 0.0, "stem rooted at %d not oriented +y", first.I)
	}
}

// E5: determinism — repeated renders of the same input are byte-identical.
func TestE5Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := rnaplot.Render(ctx, "(((...)))", "GGGAAACCC", rnaplot.Options{})
	require.NoError(t, err)
	b, err := rnaplot.Render(ctx, "(((...)))", "GGGAAACCC", rnaplot.Options{})
	require.NoError(t, err)
	assert.Equal(t, a.JSON, b.JSON)
}

// E6: an unbalanced structure reports the offending index.
func TestE6UnbalancedBracket(t *testing.T) {
	ctx := context.Background()
	_, err := dotbracket.Tokenize(ctx, "(")
	require.Error(t, err)
	var perr *dotbracket.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 0, perr.Index)
}

var invariantCases = []testCase{
	{name: "hairpin", structure: "(((...)))", sequence: "GGGAAACCC"},
	{name: "bulge", structure: "((.(...).))", sequence: "GGAGAAAGCCC"},
	{name: "multiloop", structure: "((...)(...))", sequence: "GGAAACGAAACC"},
	{name: "unpaired_only", structure: "......", sequence: "AAAAAA"},
	{name: "two_top_level_stems", structure: "((...))((...))", sequence: "GGAAACCGGAAACC"},
	{name: "strand_break", structure: "((.+.))", sequence: "GGAACC"},
	{name: "deep_stack", structure: "((((....))))", sequence: "GGGGAAAACCCC"},
}

// Universal invariant 2: no NaN/Inf anywhere in the output.
func TestInvariantNoNaNOrInf(t *testing.T) {
	for _, tc := range invariantCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l := layoutFor(t, tc)
			for _, p := range l.Positions {
				assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
				assert.False(t, math.IsInf(p.X, 0) || math.IsInf(p.Y, 0))
			}
		})
	}
}

// Universal invariant 3: minimum pairwise distance is never degenerate.
func TestInvariantMinimumPairwiseDistance(t *testing.T) {
	const minDist = 0.5 * rnalayout.BackboneSpacing
	for _, tc := range invariantCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l := layoutFor(t, tc)
			for i := range l.Positions {
				for j := i + 1; j < len(l.Positions); j++ {
					d := l.Positions[i].Dist(l.Positions[j])
					assert.GreaterOrEqualf(t, d, minDist-1e-9, "positions %d,%d closer than %v", i, j, minDist)
				}
			}
		})
	}
}

// Universal invariant 5: every stem's 2k points form a rectangle.
func TestInvariantStemIsRectangle(t *testing.T) {
	for _, tc := range invariantCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			tokens, err := dotbracket.Tokenize(ctx, tc.structure)
			require.NoError(t, err)
			tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{})
			require.NoError(t, err)
			l, err := rnalayout.Layout(ctx, tree, pairs, n)
			require.NoError(t, err)

			for _, stem := range tree.Stems {
				k := len(stem.Pairs)
				first := stem.Pairs[0]
				pairSide := l.Positions[first.I].Dist(l.Positions[first.J])
				assert.InDelta(t, rnalayout.PairSpacing, pairSide, 1e-6)
				if k > 1 {
					last := stem.Pairs[k-1]
					backboneSide := l.Positions[first.I].Dist(l.Positions[last.I])
					assert.InDelta(t, float64(k-1)*rnalayout.BackboneSpacing, backboneSide, 1e-6)
				}
			}
		})
	}
}
