package rnalayout

import (
	"math"

	"github.com/rnaplot/rnaplot/internal/bisect"
	"github.com/rnaplot/rnaplot/internal/errutil"
	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/pkg/sstree"
)

// processLoop places everything a loop owns directly — its unpaired
// nucleotides and, for each child stem, the two endpoints of that stem's
// outermost pair — and returns the base frame each child stem needs to
// place the rest of itself (spec.md §4.2.2, §4.2.4).
//
// hasParent is false only for the exterior loop, which is unrolled as a
// line rather than circularized (spec.md §4.2.4): the molecule's two free
// ends never close a real bond, so there is no chord to solve a perimeter
// circle against. (An interior topological exterior circle exists in
// principle for three or more top-level stems, but spec.md leaves how its
// open perimeter would close mathematically unresolved; this engine always
// renders the exterior loop as a line, which is well-posed for any number
// of top-level stems and every worked example.)
func processLoop(tree *sstree.Tree, positions []geom.Point, placed []bool, loopIdx int, base geom.Frame, hasParent bool) []workFrame {
	loop := tree.Loops[loopIdx]
	if !hasParent {
		return lineLayout(tree, positions, placed, loop)
	}
	if len(loop.Elements) == 0 {
		// Degenerate hairpin (zero unpaired bases, zero children): only
		// reachable with sstree.BuildOptions.AllowDegenerateHairpin. There is
		// no content to place and nothing to recurse into.
		return nil
	}
	return circleLayout(tree, positions, placed, loopIdx, loop, base)
}

// lineLayout unrolls the exterior loop along the fixed axis (spec.md
// §4.2.4): forward (0,1), right (1,0), 5' end at the origin. Each child
// stem occupies PairSpacing of line length (its own outermost pair) and
// points its forward axis away from the line; everything under it is
// placed recursively off the line entirely, so the next exterior element
// resumes exactly BackboneSpacing past that stem's far pair endpoint.
func lineLayout(tree *sstree.Tree, positions []geom.Point, placed []bool, loop sstree.Loop) []workFrame {
	cursor := 0.0
	var children []workFrame

	for _, e := range loop.Elements {
		switch e.Kind {
		case sstree.ElemUnpaired:
			positions[e.NucIndex] = geom.Point{X: cursor, Y: 0}
			placed[e.NucIndex] = true
			cursor += BackboneSpacing
		case sstree.ElemStem:
			origin := geom.Point{X: cursor + PairSpacing/2, Y: 0}
			frame := geom.Frame{Origin: origin, Forward: geom.Point{X: 0, Y: 1}, Right: geom.Point{X: 1, Y: 0}}
			children = append(children, workFrame{kind: frameStem, stemIdx: e.StemIdx, in: frame})
			cursor += PairSpacing + BackboneSpacing
		}
	}
	return children
}

// slot is one perimeter anchor owned directly by a loop: either an
// unpaired nucleotide or one endpoint of a child stem's outermost pair.
type slot struct {
	isStem   bool
	stemIdx  int
	nucIndex int
	isExit   bool // true for a child stem's 3' (j) endpoint
}

// buildSlotsAndEdges walks a loop's elements in 5'->3' order, producing
// its perimeter slots and the BackboneSpacing/PairSpacing edge lengths
// between them, not counting the edge from the parent pair's i0 to the
// first slot or from the last slot back to the parent pair's j0 (the
// caller adds those, since only it knows where i0 and j0 sit).
func buildSlotsAndEdges(elements []sstree.Element) ([]slot, []float64) {
	var slots []slot
	var edges []float64

	for _, e := range elements {
		switch e.Kind {
		case sstree.ElemUnpaired:
			if len(slots) > 0 {
				edges = append(edges, BackboneSpacing)
			}
			slots = append(slots, slot{nucIndex: e.NucIndex})
		case sstree.ElemStem:
			if len(slots) > 0 {
				edges = append(edges, BackboneSpacing)
			}
			slots = append(slots, slot{isStem: true, stemIdx: e.StemIdx})
			edges = append(edges, PairSpacing)
			slots = append(slots, slot{isStem: true, stemIdx: e.StemIdx, isExit: true})
		}
	}
	return slots, edges
}

// circleLayout solves and places a loop closed by a parent pair (spec.md
// §4.2.2): find the radius whose inscribed polygon has the loop's exact
// perimeter edge lengths, then sweep from the parent's i0 around the long
// way (away from the stem) to its j0, placing every interior anchor in
// order.
func circleLayout(tree *sstree.Tree, positions []geom.Point, placed []bool, loopIdx int, loop sstree.Loop, base geom.Frame) []workFrame {
	slots, innerEdges := buildSlotsAndEdges(loop.Elements)

	edges := make([]float64, 0, len(innerEdges)+2)
	edges = append(edges, BackboneSpacing) // i0 -> first slot
	edges = append(edges, innerEdges...)
	edges = append(edges, BackboneSpacing) // last slot -> j0
	edges = append(edges, PairSpacing)     // closing chord, j0 -> i0

	R, err := bisect.SolveRadius(edges)
	errutil.Assert(err == nil, "loop %d: no perimeter circle: %v", loopIdx, err)

	half := PairSpacing / 2
	d := math.Sqrt(math.Max(0, R*R-half*half))
	center := base.Origin.Add(base.Forward.Scale(d))

	thetaI0 := math.Atan2(-half, -d)
	thetaJ0 := math.Atan2(half, -d)

	onCircle := func(theta float64) geom.Point {
		return center.
			Add(base.Forward.Scale(R * math.Cos(theta))).
			Add(base.Right.Scale(R * math.Sin(theta)))
	}

	theta := thetaI0
	// edges[0] is i0->slots[0]; edges[1:1+len(innerEdges)] walk the slots;
	// the remaining two edges (last slot->j0, j0->i0) are not swept here.
	var children []workFrame
	var pendingEntry geom.Point
	var pendingStem int
	havePending := false

	for i, s := range slots {
		theta += arcAngle(edges[i], R)
		pt := onCircle(theta)

		if !s.isStem {
			positions[s.nucIndex] = pt
			placed[s.nucIndex] = true
			continue
		}
		if !s.isExit {
			pendingEntry, pendingStem, havePending = pt, s.stemIdx, true
			continue
		}
		errutil.Assert(havePending && pendingStem == s.stemIdx, "loop %d: stem %d exit slot without matching entry", loopIdx, s.stemIdx)
		havePending = false
		children = append(children, workFrame{
			kind:    frameStem,
			stemIdx: s.stemIdx,
			in:      childFrame(pendingEntry, pt, center),
		})
	}

	theta += arcAngle(edges[len(edges)-2], R) // last slot -> j0
	errutil.Assert(math.Abs(normalizeAngle(theta-thetaJ0)) < 1e-6,
		"loop %d: perimeter sweep did not close on j0", loopIdx)

	return children
}

// childFrame builds a child stem's base frame from its own two pair
// endpoints, already placed on the parent loop's circle, and that circle's
// center: forward points radially outward (away from center, the natural
// "outward bulge" direction), right points along the perimeter's 5'->3'
// tangent from i0 to j0. The root exterior frame (lineLayout) is
// left-handed (Forward=(0,1), Right=(1,0)), so right here must be the
// clockwise rotation of forward, not geom.Rot90's counterclockwise one, to
// keep handedness consistent all the way down the tree.
func childFrame(i0pos, j0pos, center geom.Point) geom.Frame {
	origin := i0pos.Add(j0pos).Scale(0.5)
	forward := origin.Sub(center).Normalized()
	right := j0pos.Sub(i0pos).Normalized()
	return geom.Frame{Origin: origin, Forward: forward, Right: right}
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
