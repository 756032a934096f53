// Package rnalayout is THE CORE of this module: the deterministic,
// synchronous function that maps a validated structure tree to 2D
// nucleotide coordinates and base-pair/backbone bond segments (spec.md
// §4.2). It performs a single depth-first walk of the tree using an
// explicit work-stack of frames (spec.md §5, §9) rather than Go-level
// recursion, so stack depth is bounded by heap allocation rather than the
// goroutine stack even for deeply nested structures.
//
// Grounded on d2layouts/d2dagrelayout/godagre's Layout() orchestrator
// (layout.go) and its Graph/Node arena (graph.go): a linear chain of
// phases operating over one shared set of output slices, here replacing
// dagre's rank/order/position optimization passes with the stem/loop
// geometry's closed-form placement.
package rnalayout

import (
	"context"
	"math"

	"cdr.dev/slog"

	"github.com/rnaplot/rnaplot/internal/errutil"
	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/pkg/sstree"
)

// Design constants, fixed at compile time per spec.md §4.2, §6.
const (
	BackboneSpacing = 1.0
	PairSpacing     = 1.0
)

// boundsMargin is the padding added around the tight bounding box of all
// positions (spec.md §4.2.6).
const boundsMargin = 2 * BackboneSpacing

// Bond is one segment between two nucleotide indices (a base pair or a
// backbone edge).
type Bond struct {
	I, J int
}

// Arrow is the 3'-end direction indicator (spec.md §3, §4.2.6).
type Arrow struct {
	Anchor    geom.Point
	Direction geom.Point
}

// Layout is the engine's output (spec.md §3).
type Layout struct {
	Positions        []geom.Point
	PairBonds        []Bond
	BackboneSegments []Bond
	Arrow            Arrow
	Bounds           geom.Bounds
}

// frameKind tags a work-stack entry.
type frameKind int

const (
	frameLoop frameKind = iota
	frameStem
)

// workFrame is one entry of the explicit DFS stack (spec.md §9: "an
// explicit work-stack of frames { node_index, parent_frame, phase }").
// rnalayout's phase is implicit in frameKind: a loop frame does all of its
// work in one pop (place owned unpaired bases, derive each child stem's
// base frame) and a stem frame likewise (place its own rectangle, derive
// its child loop's anchor frame) — no node is ever pushed back onto the
// stack a second time.
type workFrame struct {
	kind      frameKind
	loopIdx   int
	stemIdx   int
	in        geom.Frame
	hasParent bool // meaningful only for frameLoop: false only for the exterior loop
}

// Layout computes the geometric embedding of tree (spec.md §4.2). Pure and
// deterministic: the same tree, pairs and n always yield bit-identical
// coordinates, because the DFS order is fixed and no step depends on
// anything but the tree's own shape.
func Layout(ctx context.Context, tree *sstree.Tree, pairs sstree.PairMap, n int) (*Layout, error) {
	log := logging.FromContext(ctx).Named("rnalayout")

	errutil.Assert(n > 0, "nucleotide count must be positive, got %d", n)
	errutil.Assert(len(pairs) == n, "pair map length %d does not match n %d", len(pairs), n)
	for i, j := range pairs {
		errutil.Assert(j == -1 || (j >= 0 && j < n && pairs[j] == i), "pair map asymmetric at index %d", i)
	}

	positions := make([]geom.Point, n)
	placed := make([]bool, n)

	stack := []workFrame{{kind: frameLoop, loopIdx: tree.ExteriorLoopIdx, hasParent: false}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch f.kind {
		case frameLoop:
			children := processLoop(tree, positions, placed, f.loopIdx, f.in, f.hasParent)
			stack = append(stack, children...)
		case frameStem:
			tipFrame := processStem(tree, positions, placed, f.stemIdx, f.in)
			stack = append(stack, workFrame{
				kind:      frameLoop,
				loopIdx:   tree.Stems[f.stemIdx].LoopIdx,
				in:        tipFrame,
				hasParent: true,
			})
		}
	}

	for i, ok := range placed {
		errutil.Assert(ok, "nucleotide %d was never placed by the tree walk", i)
	}

	l := &Layout{Positions: positions}
	l.PairBonds = pairBonds(pairs)
	l.BackboneSegments = backboneSegments(tree)
	l.Arrow = arrow(positions)
	l.Bounds = geom.BoundsOf(positions).Expand(boundsMargin)

	log.Debug(ctx, "computed layout",
		slog.F("nucleotides", n),
		slog.F("pair_bonds", len(l.PairBonds)),
		slog.F("backbone_segments", len(l.BackboneSegments)),
	)

	return l, nil
}

func pairBonds(pairs sstree.PairMap) []Bond {
	var bonds []Bond
	for i, j := range pairs {
		if j > i {
			bonds = append(bonds, Bond{I: i, J: j})
		}
	}
	return bonds
}

func backboneSegments(tree *sstree.Tree) []Bond {
	var segs []Bond
	for i := 0; i < tree.N-1; i++ {
		if !tree.BreakAfter[i] {
			segs = append(segs, Bond{I: i, J: i + 1})
		}
	}
	return segs
}

func arrow(positions []geom.Point) Arrow {
	n := len(positions)
	last := positions[n-1]
	if n < 2 {
		return Arrow{Anchor: last, Direction: geom.Point{X: 1, Y: 0}}
	}
	dir := last.Sub(positions[n-2]).Normalized()
	return Arrow{Anchor: last, Direction: dir}
}

// arcAngle is the subtended angle 2·arcsin(ℓ/(2R)) for a chord of length ℓ
// on a circle of radius R (spec.md §4.2.2).
func arcAngle(length, radius float64) float64 {
	return 2 * math.Asin(clamp(length/(2*radius), -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
