package stylist

import (
	"bytes"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/styles"
	"github.com/yuin/goldmark"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// highlightStructure assigns a chroma style color to each character of the
// dot-bracket(-plus) string, treating brackets as one token kind, dots as
// another, strand breaks as a third and anything else as an error token —
// the structure grammar has no nested lexer states, so this classification
// replaces a full chroma.Lexer.
func highlightStructure(structure, styleName string) ([]ColoredRune, error) {
	if styleName == "" {
		styleName = "monokai"
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	spans := make([]ColoredRune, 0, len(structure))
	for _, r := range structure {
		entry := style.Get(tokenTypeFor(r))
		spans = append(spans, ColoredRune{Rune: r, Color: entry.Colour.String()})
	}
	return spans, nil
}

func tokenTypeFor(r rune) chroma.TokenType {
	switch r {
	case '(', ')':
		return chroma.Keyword
	case '.':
		return chroma.Text
	case '+':
		return chroma.Operator
	default:
		return chroma.Error
	}
}

// renderCaption converts a Markdown caption to inline HTML for embedding
// in the SVG's <foreignObject> (spec.md §4.3's stylist interface has no
// caption concept; this is a SPEC_FULL.md supplement).
func renderCaption(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderColorbar draws a standalone blue-white-red gradient legend as its
// own small SVG document, for pkg/svgwriter to embed as a data URI
// alongside a probability-colored structure.
func renderColorbar(_ [3]string) (string, error) {
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	p := plot.New()

	bar := &plotter.ColorBar{ColorMap: &cmap}
	p.Add(bar)

	canvas := vgsvg.New(3*vg.Inch, 0.4*vg.Inch)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
