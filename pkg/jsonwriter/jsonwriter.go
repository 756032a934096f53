// Package jsonwriter emits the stable wire-format JSON document described
// in spec.md §6: a pure, stateless mapping from a computed Layout to bytes.
// Colors have no place in this schema — pkg/stylist's output belongs only
// to pkg/svgwriter.
package jsonwriter

import (
	"bytes"
	"encoding/json"

	"github.com/rnaplot/rnaplot/pkg/rnalayout"
)

// point is [x, y], serialized with at least 6 decimal digits (spec.md §6).
type point [2]json.Number

type bond [2]int

type arrow struct {
	X  json.Number `json:"x"`
	Y  json.Number `json:"y"`
	DX json.Number `json:"dx"`
	DY json.Number `json:"dy"`
}

type bounds struct {
	MinX json.Number `json:"min_x"`
	MinY json.Number `json:"min_y"`
	MaxX json.Number `json:"max_x"`
	MaxY json.Number `json:"max_y"`
}

// document is the exact shape of spec.md §6's wire schema.
type document struct {
	Positions []point     `json:"positions"`
	Pairs     []bond      `json:"pairs"`
	Backbone  []bond      `json:"backbone"`
	Arrow     arrow       `json:"arrow"`
	Bounds    bounds      `json:"bounds"`
}

// WriteJSON renders l as spec.md §6's wire-format JSON document.
func WriteJSON(l *rnalayout.Layout) ([]byte, error) {
	doc := document{
		Positions: make([]point, len(l.Positions)),
		Pairs:     bondsToPairs(l.PairBonds),
		Backbone:  bondsToPairs(l.BackboneSegments),
		Arrow: arrow{
			X:  num(l.Arrow.Anchor.X),
			Y:  num(l.Arrow.Anchor.Y),
			DX: num(l.Arrow.Direction.X),
			DY: num(l.Arrow.Direction.Y),
		},
		Bounds: bounds{
			MinX: num(l.Bounds.MinX),
			MinY: num(l.Bounds.MinY),
			MaxX: num(l.Bounds.MaxX),
			MaxY: num(l.Bounds.MaxY),
		},
	}
	for i, p := range l.Positions {
		doc.Positions[i] = point{num(p.X), num(p.Y)}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	return out[:len(out)-1], nil // Encode appends a trailing newline
}

// bondsToPairs keeps its input order: bonds are already produced sorted by
// i (rnalayout.pairBonds and
// backboneSegments both walk indices in ascending order), satisfying
// spec.md §6's "sorted by i" requirement without a separate sort pass.
func bondsToPairs(bonds []rnalayout.Bond) []bond {
	out := make([]bond, len(bonds))
	for i, b := range bonds {
		out[i] = bond{b.I, b.J}
	}
	return out
}

// num formats f with at least 6 decimal digits, per spec.md §6.
func num(f float64) json.Number {
	return json.Number(formatFloat(f))
}
