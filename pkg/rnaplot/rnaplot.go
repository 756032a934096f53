// Package rnaplot is the public facade chaining tokenizer, tree builder,
// layout engine, stylist and emitters into one call — the single entry
// point shared by cmd/rnaplot and wasm/rnaplot_wasm.
package rnaplot

import (
	"context"

	"github.com/rnaplot/rnaplot/internal/errutil"
	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/pkg/dotbracket"
	"github.com/rnaplot/rnaplot/pkg/jsonwriter"
	"github.com/rnaplot/rnaplot/pkg/rnalayout"
	"github.com/rnaplot/rnaplot/pkg/sstree"
	"github.com/rnaplot/rnaplot/pkg/stylist"
	"github.com/rnaplot/rnaplot/pkg/svgwriter"

	"cdr.dev/slog"
)

// Options configures a single Render call. All fields are optional; the
// zero value renders an unlabeled, nucleotide-identity-colored structure
// with no legend or caption.
type Options struct {
	Mode                   stylist.Mode
	Probabilities          []float64
	GradientStops          [3]string
	ColorOverrides         map[byte]string
	Caption                string
	ChromaStyle            string
	RemapExpr              string
	ShowLegend             bool
	ShowLabels             bool
	AllowDegenerateHairpin bool
}

// Result bundles every artifact Render produces, so callers that only want
// the JSON manifest aren't forced to also have an SVG string discarded.
type Result struct {
	Layout *rnalayout.Layout
	Colors []stylist.Color
	Legend stylist.Legend
	SVG    string
	JSON   []byte
}

// Render runs structure and sequence through the full pipeline: tokenize,
// build the structure tree, lay it out, color it, and emit SVG and JSON.
func Render(ctx context.Context, structure, sequence string, opts Options) (Result, error) {
	log := logging.FromContext(ctx).Named("rnaplot")

	tokens, err := dotbracket.Tokenize(ctx, structure)
	if err != nil {
		return Result{}, errutil.Wrap(err, "tokenize structure")
	}

	tree, pairs, n, err := sstree.Build(ctx, tokens, sstree.BuildOptions{
		AllowDegenerateHairpin: opts.AllowDegenerateHairpin,
	})
	if err != nil {
		return Result{}, errutil.Wrap(err, "build structure tree")
	}

	layout, err := rnalayout.Layout(ctx, tree, pairs, n)
	if err != nil {
		return Result{}, errutil.Wrap(err, "compute layout")
	}

	styleOpts := stylist.StyleOptions{
		Mode:          opts.Mode,
		Probabilities: opts.Probabilities,
		GradientStops: opts.GradientStops,
		Overrides:     opts.ColorOverrides,
		Caption:       opts.Caption,
		ChromaStyle:   opts.ChromaStyle,
		RemapExpr:     opts.RemapExpr,
	}
	if opts.ShowLegend {
		styleOpts.Structure = structure
	}
	colors, legend, err := stylist.Style(ctx, layout.Positions, sequence, styleOpts)
	if err != nil {
		return Result{}, errutil.Wrap(err, "style layout")
	}

	svgOpts := svgwriter.Options{}
	if opts.ShowLabels {
		svgOpts.Sequence = sequence
	}
	svg, err := svgwriter.WriteSVG(layout, colors, legend, svgOpts)
	if err != nil {
		return Result{}, errutil.Wrap(err, "write svg")
	}

	jsonBytes, err := jsonwriter.WriteJSON(layout)
	if err != nil {
		return Result{}, errutil.Wrap(err, "write json")
	}

	log.Debug(ctx, "rendered structure",
		slog.F("nucleotides", n),
		slog.F("svg_bytes", len(svg)),
		slog.F("json_bytes", len(jsonBytes)),
	)

	return Result{
		Layout: layout,
		Colors: colors,
		Legend: legend,
		SVG:    svg,
		JSON:   jsonBytes,
	}, nil
}
