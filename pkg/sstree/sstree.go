// Package sstree builds the structure tree (spec.md §3, §4.1) from a
// tokenized dot-bracket-plus string: a pair map, and an ordered arena of
// Stems and Loops (the exterior loop included) with parent/child
// relationships expressed as indices rather than pointers, per the
// teacher's d2graph arena discipline and spec.md §9's own recommendation.
package sstree

import (
	"context"
	"fmt"

	"cdr.dev/slog"
	"golang.org/x/xerrors"

	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/pkg/dotbracket"
)

// Pair is one base pair (i, j), i < j.
type Pair struct {
	I, J int
}

// Stem is a run of consecutively stacked base pairs (spec.md §3). Pairs[0]
// is the outermost pair (i0, j0); Pairs[len-1] is the innermost, the pair
// that closes LoopIdx.
type Stem struct {
	Pairs   []Pair
	LoopIdx int // index into Tree.Loops of the loop this stem closes
}

// ElementKind tags a Loop element: an unpaired base, a child stem, or
// (orthogonally, via BreakBefore) a strand-break marker.
type ElementKind int

const (
	ElemUnpaired ElementKind = iota
	ElemStem
)

// Element is one member of a Loop's cyclic perimeter, in 5'->3' order.
type Element struct {
	Kind ElementKind
	// NucIndex is the nucleotide index when Kind == ElemUnpaired.
	NucIndex int
	// StemIdx indexes Tree.Stems when Kind == ElemStem.
	StemIdx int
	// BreakBefore marks a strand break immediately before this element on
	// the loop's perimeter (spec.md §4.2.3): the backbone edge to the
	// previous element is not rendered, though the perimeter arc length is
	// unaffected.
	BreakBefore bool
}

// Loop is the region enclosed by a stem's innermost pair, or — when
// ParentStemIdx is -1 — the exterior loop.
type Loop struct {
	ParentStemIdx int // -1 for the exterior loop
	Elements      []Element
}

// Tree is the arena holding every Stem and Loop, linked by index.
type Tree struct {
	Stems           []Stem
	Loops           []Loop
	ExteriorLoopIdx int
	N               int

	// BreakAfter[i] is true when a strand break separates nucleotide i
	// from i+1 in the raw sequence order (spec.md §4.2.3): the layout
	// engine omits that backbone segment. Length N (the last element is
	// always unused/false, kept for simple i/i+1 indexing).
	BreakAfter []bool

	// AllowDegenerateHairpin permits a hairpin loop with zero unpaired
	// bases (spec.md §4.2.2's degenerate case) instead of rejecting it at
	// build time. Only meaningful when set before Build via BuildOptions.
	AllowDegenerateHairpin bool
}

// PairMap maps nucleotide index to its partner's index, or -1 if unpaired.
type PairMap []int

// BuildErrorKind distinguishes the structural validation failures of
// spec.md §4.1/§7.
type BuildErrorKind int

const (
	NestingViolation BuildErrorKind = iota
	AsymmetricPairMap
	DegenerateHairpinRejected
)

func (k BuildErrorKind) String() string {
	switch k {
	case NestingViolation:
		return "NestingViolation"
	case AsymmetricPairMap:
		return "AsymmetricPairMap"
	case DegenerateHairpinRejected:
		return "DegenerateHairpinRejected"
	default:
		return "Unknown"
	}
}

// BuildError is a reported structural error.
type BuildError struct {
	Kind  BuildErrorKind
	Index int
	Msg   string
}

func (e *BuildError) Error() string {
	return xerrors.Errorf("sstree: %s at index %d: %s", e.Kind, e.Index, e.Msg).Error()
}

// BuildOptions configures Build.
type BuildOptions struct {
	AllowDegenerateHairpin bool
}

// Build matches brackets into pairs and constructs the ordered tree of
// loops and stems (spec.md §4.1). Tokens must come from dotbracket.Tokenize
// (or an equivalent producer honoring the same index invariants).
func Build(ctx context.Context, tokens []dotbracket.Token, opts BuildOptions) (*Tree, PairMap, int, error) {
	log := logging.FromContext(ctx).Named("sstree")

	n := 0
	for _, t := range tokens {
		if t.Kind != dotbracket.StrandBreak {
			n++
		}
	}

	pairs, err := matchPairs(tokens, n)
	if err != nil {
		return nil, nil, 0, err
	}

	b := &builder{
		tokens: tokens,
		pairs:  pairs,
		n:      n,
		opts:   opts,
	}
	tree := &Tree{N: n, BreakAfter: breakAfter(tokens, n), AllowDegenerateHairpin: opts.AllowDegenerateHairpin}
	b.tree = tree

	rootElems, err := b.buildLoop(0, len(tokens), -1)
	if err != nil {
		return nil, nil, 0, err
	}
	tree.ExteriorLoopIdx = len(tree.Loops)
	tree.Loops = append(tree.Loops, Loop{ParentStemIdx: -1, Elements: rootElems})

	if err := validatePairMap(pairs, n); err != nil {
		return nil, nil, 0, err
	}

	log.Debug(ctx, "built structure tree",
		slog.F("nucleotides", n),
		slog.F("stems", len(tree.Stems)),
		slog.F("loops", len(tree.Loops)),
	)

	return tree, pairs, n, nil
}

// breakAfter computes, from the raw token stream, which nucleotide-index
// boundaries have a strand break between them (spec.md §4.2.3).
func breakAfter(tokens []dotbracket.Token, n int) []bool {
	out := make([]bool, n)
	lastIdx := -1
	for _, t := range tokens {
		switch t.Kind {
		case dotbracket.StrandBreak:
			if lastIdx >= 0 && lastIdx < n {
				out[lastIdx] = true
			}
		default:
			lastIdx = t.Index
		}
	}
	return out
}

// matchPairs derives the pair map from the token stream by re-running the
// bracket stack (tokens are already known-balanced by dotbracket.Tokenize,
// but sstree is a usable entry point on its own, so it re-validates).
func matchPairs(tokens []dotbracket.Token, n int) (PairMap, error) {
	pairs := make(PairMap, n)
	for i := range pairs {
		pairs[i] = -1
	}
	var stack []int
	for _, t := range tokens {
		switch t.Kind {
		case dotbracket.OpenPair:
			stack = append(stack, t.Index)
		case dotbracket.ClosePair:
			if len(stack) == 0 {
				return nil, &BuildError{Kind: NestingViolation, Index: t.Index, Msg: "unmatched close with no open on stack"}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			pairs[open] = t.Index
			pairs[t.Index] = open
		}
	}
	if len(stack) != 0 {
		return nil, &BuildError{Kind: NestingViolation, Index: stack[len(stack)-1], Msg: "unmatched open at end of stream"}
	}
	return pairs, nil
}

type builder struct {
	tokens []dotbracket.Token
	pairs  PairMap
	n      int
	opts   BuildOptions
	tree   *Tree
}

// buildLoop walks token indices [lo, hi) — the interior of a closing pair,
// or the whole token stream for the exterior loop — classifying each token
// as an unpaired base, the opening of a child stem, or a strand break, and
// recursing into child stems' interiors. parentStemIdx is -1 for the
// exterior loop.
func (b *builder) buildLoop(lo, hi int, parentStemIdx int) ([]Element, error) {
	var elems []Element
	breakPending := false

	i := lo
	for i < hi {
		tok := b.tokens[i]
		switch tok.Kind {
		case dotbracket.StrandBreak:
			breakPending = true
			i++
		case dotbracket.Unpaired:
			elems = append(elems, Element{Kind: ElemUnpaired, NucIndex: tok.Index, BreakBefore: breakPending})
			breakPending = false
			i++
		case dotbracket.OpenPair:
			stemEnd, stemIdx, err := b.buildStem(i, hi, breakPending)
			if err != nil {
				return nil, err
			}
			elems = append(elems, Element{Kind: ElemStem, StemIdx: stemIdx, BreakBefore: breakPending})
			breakPending = false
			i = stemEnd
		case dotbracket.ClosePair:
			// Only reachable if called with a malformed span; the caller
			// always stops a loop's interior exactly at its closing token.
			return nil, &BuildError{Kind: NestingViolation, Index: tok.Index, Msg: "unexpected close-pair while scanning loop interior"}
		}
	}

	if len(elems) == 0 && parentStemIdx != -1 && !b.opts.AllowDegenerateHairpin {
		return nil, &BuildError{Kind: DegenerateHairpinRejected, Index: lo, Msg: "zero-element hairpin loop"}
	}

	return elems, nil
}

// buildStem consumes one maximal run of stacked pairs starting at the
// OpenPair token at index i, builds the Stem, and recurses into the loop
// it closes. Returns the token index just past the stem's outermost
// ClosePair.
func (b *builder) buildStem(i, hi int, breakBeforeStem bool) (int, int, error) {
	startTok := b.tokens[i]
	open0 := startTok.Index
	close0 := b.pairs[open0]
	if close0 < 0 {
		return 0, 0, &BuildError{Kind: NestingViolation, Index: open0, Msg: "open-pair token has no partner"}
	}

	var pairs []Pair
	pairs = append(pairs, Pair{I: open0, J: close0})

	// Advance while the next token is another OpenPair immediately stacked
	// against the current pair (i+1, j-1), with nothing unpaired between.
	j := i + 1
	curOpen, curClose := open0, close0
	for j < hi && b.tokens[j].Kind == dotbracket.OpenPair {
		nextOpen := b.tokens[j].Index
		nextClose := b.pairs[nextOpen]
		if nextClose < 0 {
			return 0, 0, &BuildError{Kind: NestingViolation, Index: nextOpen, Msg: "open-pair token has no partner"}
		}
		if nextOpen != curOpen+1 || nextClose != curClose-1 {
			break
		}
		pairs = append(pairs, Pair{I: nextOpen, J: nextClose})
		curOpen, curClose = nextOpen, nextClose
		j++
	}

	stemIdx := len(b.tree.Stems)
	// Reserve the slot so buildLoop's recursive call can reference
	// stemIdx's LoopIdx once computed (arena-by-index, no pointer cycle).
	b.tree.Stems = append(b.tree.Stems, Stem{Pairs: pairs})

	// The stem's interior spans the token range strictly between the
	// innermost pair's open and close tokens. j is one past the token index
	// of the innermost pair's OpenPair; its matching ClosePair sits
	// somewhere after, found by walking forward from j to the token whose
	// Index == curClose.
	innerOpenTok := j - 1
	innerCloseTokIdx := b.findTokenIndex(innerOpenTok+1, hi, curClose)

	childElems, err := b.buildLoop(innerOpenTok+1, innerCloseTokIdx, stemIdx)
	if err != nil {
		return 0, 0, err
	}

	loopIdx := len(b.tree.Loops)
	b.tree.Loops = append(b.tree.Loops, Loop{ParentStemIdx: stemIdx, Elements: childElems})
	b.tree.Stems[stemIdx].LoopIdx = loopIdx

	// Stacked pairs have no intervening unpaired base on either strand
	// (spec.md §3's Stem invariant), but a StrandBreak token between two
	// stacked ClosePair tokens consumes no nucleotide index and still has
	// to be skipped, so the outermost pair's ClosePair can't be found by
	// offsetting innerCloseTokIdx by len(pairs)-1: walk forward by Kind
	// instead, same as findTokenIndex does for the innermost one.
	outerCloseTokIdx := b.findTokenIndex(innerCloseTokIdx+1, hi, close0)
	return outerCloseTokIdx + 1, stemIdx, nil
}

// findTokenIndex scans [lo, hi) for the ClosePair token whose Index ==
// nucIdx. Strand-break tokens are skipped by Kind, not by nucleotide index
// (they don't consume one), so a linear scan is required rather than
// direct indexing.
func (b *builder) findTokenIndex(lo, hi, nucIdx int) int {
	for k := lo; k < hi; k++ {
		if b.tokens[k].Kind == dotbracket.ClosePair && b.tokens[k].Index == nucIdx {
			return k
		}
	}
	return hi
}

func validatePairMap(pairs PairMap, n int) error {
	for i, j := range pairs {
		if j == -1 {
			continue
		}
		if j < 0 || j >= n {
			return &BuildError{Kind: AsymmetricPairMap, Index: i, Msg: fmt.Sprintf("partner %d out of range", j)}
		}
		if pairs[j] != i {
			return &BuildError{Kind: AsymmetricPairMap, Index: i, Msg: fmt.Sprintf("pair[%d]=%d but pair[%d]=%d", i, j, j, pairs[j])}
		}
	}
	return nil
}
