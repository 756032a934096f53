// Package svgwriter is the pure, stateless mapping from a computed Layout
// plus stylist output to an SVG string (spec.md §4.3). It never re-derives
// geometry or color — everything it draws was already decided upstream.
//
// Grounded on ajstarks/svgo's element-at-a-time drawing style (a thin
// wrapper over an io.Writer, already an indirect dependency via
// gonum.org/v1/plot's vg/vgsvg canvas), promoted to a direct dependency
// here since nothing else in this module draws raw SVG primitives.
package svgwriter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/pkg/rnalayout"
	"github.com/rnaplot/rnaplot/pkg/stylist"
)

// scale converts layout units (BackboneSpacing == PairSpacing == 1.0) to
// SVG pixels; pixelsPerUnit chosen so adjacent nucleotides render with
// clear separation at the default nucleotideRadius.
const (
	pixelsPerUnit    = 20.0
	nucleotideRadius = 6
	legendRowHeight  = 24
	colorbarHeight   = 56
	captionHeight    = 64
	margin           = 16
)

// Options configures WriteSVG beyond what Layout/Legend/colors already
// decided.
type Options struct {
	// Sequence, when non-empty, is drawn as a letter inside each
	// nucleotide's circle. Length must equal len(Layout.Positions).
	Sequence string
}

// WriteSVG renders l, colored per-nucleotide by colors, with legend's
// auxiliary markup appended below the molecule, as a self-contained SVG
// document (spec.md §4.3).
func WriteSVG(l *rnalayout.Layout, colors []stylist.Color, legend stylist.Legend, opts Options) (string, error) {
	b := l.Bounds
	width := (b.MaxX - b.MinX) * pixelsPerUnit
	height := (b.MaxY - b.MinY) * pixelsPerUnit

	legendText := legendString(legend)
	if w := measureTextWidth(legendText); float64(w) > width {
		width = float64(w)
	}

	extra := 0
	if len(legend.StructureSpans) > 0 {
		extra += legendRowHeight
	}
	if legend.ColorbarSVG != "" {
		extra += colorbarHeight
	}
	if legend.CaptionHTML != "" {
		extra += captionHeight
	}

	canvasW := int(width) + 2*margin
	canvasH := int(height) + extra + 2*margin

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(canvasW, canvasH)
	canvas.Rect(0, 0, canvasW, canvasH, "fill:#ffffff")

	project := func(p geom.Point) (int, int) {
		return margin + int((p.X-b.MinX)*pixelsPerUnit), margin + int((p.Y-b.MinY)*pixelsPerUnit)
	}

	for _, bond := range l.BackboneSegments {
		x1, y1 := project(l.Positions[bond.I])
		x2, y2 := project(l.Positions[bond.J])
		canvas.Line(x1, y1, x2, y2, "stroke:#999999;stroke-width:1.5")
	}
	for _, bond := range l.PairBonds {
		x1, y1 := project(l.Positions[bond.I])
		x2, y2 := project(l.Positions[bond.J])
		canvas.Line(x1, y1, x2, y2, "stroke:#333333;stroke-width:1")
	}

	for i, p := range l.Positions {
		x, y := project(p)
		fill := "#888888"
		if i < len(colors) {
			fill = colors[i].Hex()
		}
		canvas.Circle(x, y, nucleotideRadius, fmt.Sprintf("fill:%s;stroke:#000000;stroke-width:0.5", fill))
		if i < len(opts.Sequence) {
			canvas.Text(x, y+3, string(opts.Sequence[i]),
				"text-anchor:middle;font-size:8px;font-family:monospace;fill:#000000")
		}
	}

	drawArrow(canvas, l.Arrow, project)

	y := margin + int(height) + margin/2
	if len(legend.StructureSpans) > 0 {
		drawStructureLegend(canvas, legend.StructureSpans, margin, y)
		y += legendRowHeight
	}
	if legend.ColorbarSVG != "" {
		embedColorbar(canvas, legend.ColorbarSVG, margin, y, int(width))
		y += colorbarHeight
	}
	if legend.CaptionHTML != "" {
		embedCaption(canvas, legend.CaptionHTML, margin, y, int(width))
	}

	canvas.End()
	// svgo's Start writes an XML prologue ahead of the root element; drop it
	// so the document begins at <svg and can be inlined into HTML as is.
	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return out, nil
}

func legendString(legend stylist.Legend) string {
	runes := make([]rune, len(legend.StructureSpans))
	for i, s := range legend.StructureSpans {
		runes[i] = s.Rune
	}
	return string(runes)
}

// drawArrow draws a short line and filled triangle at the 3' end pointing
// in Arrow.Direction (spec.md §4.2.6).
func drawArrow(canvas *svg.SVG, a rnalayout.Arrow, project func(geom.Point) (int, int)) {
	const length = 14.0
	tip := geom.Point{X: a.Anchor.X, Y: a.Anchor.Y}
	tipPx, tipPy := project(tip)

	tailPoint := geom.Point{
		X: a.Anchor.X - a.Direction.X*length/pixelsPerUnit,
		Y: a.Anchor.Y - a.Direction.Y*length/pixelsPerUnit,
	}
	tailPx, tailPy := project(tailPoint)
	canvas.Line(tailPx, tailPy, tipPx, tipPy, "stroke:#000000;stroke-width:1.5")

	perp := geom.Point{X: -a.Direction.Y, Y: a.Direction.X}
	wingScale := 5.0
	leftWing := geom.Point{
		X: tip.X - a.Direction.X*6/pixelsPerUnit + perp.X*wingScale/pixelsPerUnit,
		Y: tip.Y - a.Direction.Y*6/pixelsPerUnit + perp.Y*wingScale/pixelsPerUnit,
	}
	rightWing := geom.Point{
		X: tip.X - a.Direction.X*6/pixelsPerUnit - perp.X*wingScale/pixelsPerUnit,
		Y: tip.Y - a.Direction.Y*6/pixelsPerUnit - perp.Y*wingScale/pixelsPerUnit,
	}
	lx, ly := project(leftWing)
	rx, ry := project(rightWing)
	canvas.Polygon([]int{tipPx, lx, rx}, []int{tipPy, ly, ry}, "fill:#000000")
}

func drawStructureLegend(canvas *svg.SVG, spans []stylist.ColoredRune, x, y int) {
	const charWidth = 7
	for i, s := range spans {
		canvas.Text(x+i*charWidth, y, string(s.Rune),
			fmt.Sprintf("font-family:monospace;font-size:12px;fill:%s", s.Color))
	}
}

func embedColorbar(canvas *svg.SVG, colorbarSVG string, x, y, width int) {
	uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(colorbarSVG))
	canvas.Image(x, y, width, colorbarHeight-8, uri)
}

func embedCaption(canvas *svg.SVG, html string, x, y, width int) {
	fmt.Fprintf(canvas.Writer,
		`<foreignObject x="%d" y="%d" width="%d" height="%d"><div xmlns="http://www.w3.org/1999/xhtml" style="font-family:sans-serif;font-size:12px;color:#333">%s</div></foreignObject>`,
		x, y, width, captionHeight-8, html)
}
