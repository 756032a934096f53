package rnalayout

import (
	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/pkg/sstree"
)

// processStem places every base pair of a stacked stem and returns the
// frame anchored at its tip, from which the stem's closed loop continues
// (spec.md §4.2.1).
//
// base.Origin is the midpoint of the stem's outermost pair; base.Forward
// points from that outer pair toward the tip; base.Right points from the
// pair's 5' partner to its 3' partner. For m = 0 .. k-1 (outermost to
// innermost):
//
//	p(i_m) = base.At(m*BackboneSpacing, -PairSpacing/2)
//	p(j_m) = base.At(m*BackboneSpacing, +PairSpacing/2)
func processStem(tree *sstree.Tree, positions []geom.Point, placed []bool, stemIdx int, base geom.Frame) geom.Frame {
	stem := tree.Stems[stemIdx]
	k := len(stem.Pairs)

	for m, pr := range stem.Pairs {
		fwd := float64(m) * BackboneSpacing
		pi := base.At(fwd, -PairSpacing/2)
		pj := base.At(fwd, PairSpacing/2)
		positions[pr.I] = pi
		positions[pr.J] = pj
		placed[pr.I] = true
		placed[pr.J] = true
	}

	tip := base.At(float64(k-1)*BackboneSpacing, 0)
	return geom.Frame{Origin: tip, Forward: base.Forward, Right: base.Right}
}
