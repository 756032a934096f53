// Package stylist assigns a fill color to every nucleotide and renders the
// small set of auxiliary visual elements spec.md §4.3 calls "the
// coloring/gradient module": a perceptually-uniform probability gradient,
// nucleotide-identity palette, user color overrides, a syntax-highlighted
// dot-bracket legend, an optional Markdown caption and a standalone
// gradient colorbar. It is a pure function of positions/sequence/options —
// it never touches the network or filesystem.
//
// Grounded on godagre/layout.go's phase-chained style: Style runs a fixed
// sequence of independent steps over one accumulator, same as Layout()
// chains assignRanks/orderNodes/assignPositions.
package stylist

import (
	"context"
	"fmt"

	"cdr.dev/slog"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"

	"github.com/rnaplot/rnaplot/internal/errutil"
	"github.com/rnaplot/rnaplot/internal/geom"
	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/internal/rnajs"
)

// Color is an RGB fill color in the sRGB space SVG expects.
type Color struct {
	R, G, B uint8
}

// Hex renders c as a "#rrggbb" CSS color string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Mode selects how per-nucleotide colors are derived.
type Mode int

const (
	// ModeNucleotide colors each base by identity (A/C/G/U/other).
	ModeNucleotide Mode = iota
	// ModeProbability colors each base by a scalar in [0,1] through the
	// 3-stop Lab gradient.
	ModeProbability
)

// StyleOptions configures Style.
type StyleOptions struct {
	Mode Mode

	// Probabilities is read when Mode == ModeProbability; length must equal
	// len(positions).
	Probabilities []float64

	// GradientStops are the 3 Lab-interpolated stops for ModeProbability,
	// low/mid/high. Defaults to a blue-white-red scale when all three are
	// empty.
	GradientStops [3]string

	// Overrides maps an uppercase nucleotide letter to a CSS color string
	// (e.g. "custom:A=#ff0000"), parsed with csscolorparser. Takes priority
	// over both modes above when Seq is non-empty and the base matches.
	Overrides map[byte]string

	// Structure is the raw dot-bracket(-plus) string, used for the
	// syntax-highlighted legend. Empty skips the legend.
	Structure string

	// Caption is optional Markdown rendered into the legend's caption area.
	Caption string

	// ChromaStyle names a github.com/alecthomas/chroma/styles entry
	// ("monokai" by default).
	ChromaStyle string

	// RemapExpr, when Mode == ModeProbability, is a JS expression in the
	// free variable x evaluated once per nucleotide to remap its
	// probability before the gradient is applied (e.g. "Math.sqrt(x)" to
	// spread low-confidence values apart). Empty skips remapping.
	RemapExpr string
}

// Legend holds the auxiliary markup Style produces alongside the fill
// colors, for pkg/svgwriter to embed.
type Legend struct {
	// StructureSpans is the dot-bracket string's characters, each tagged
	// with the hex color chroma assigned its token kind.
	StructureSpans []ColoredRune
	// CaptionHTML is the rendered Markdown caption, safe to embed in a
	// foreignObject (empty if no caption was requested).
	CaptionHTML string
	// ColorbarSVG is a standalone gonum/plot-rendered SVG gradient bar,
	// empty unless Mode == ModeProbability.
	ColorbarSVG string
}

// ColoredRune is one character of the legend's structure string plus the
// color chroma assigned it.
type ColoredRune struct {
	Rune  rune
	Color string
}

var defaultGradientStops = [3]string{"#2166ac", "#f7f7f7", "#b2182b"}

// Style computes the per-nucleotide fill colors and the auxiliary legend
// markup (spec.md §4.3).
func Style(ctx context.Context, positions []geom.Point, seq string, opts StyleOptions) ([]Color, Legend, error) {
	log := logging.FromContext(ctx).Named("stylist")
	n := len(positions)

	if opts.Mode == ModeProbability && len(opts.Probabilities) != n {
		return nil, Legend{}, fmt.Errorf("stylist: probability vector length %d does not match %d positions", len(opts.Probabilities), n)
	}
	if seq != "" && len(seq) != n {
		return nil, Legend{}, fmt.Errorf("stylist: sequence length %d does not match %d positions", len(seq), n)
	}

	stops := opts.GradientStops
	if stops == [3]string{} {
		stops = defaultGradientStops
	}
	gradient, err := newLabGradient(stops)
	if err != nil {
		return nil, Legend{}, errutil.Wrap(err, "stylist: building gradient")
	}

	overrides, err := parseOverrides(opts.Overrides)
	if err != nil {
		return nil, Legend{}, errutil.Wrap(err, "stylist: parsing color overrides")
	}

	var remap rnajs.Remapper
	if opts.Mode == ModeProbability && opts.RemapExpr != "" {
		remap = rnajs.New()
	}

	colors := make([]Color, n)
	for i := 0; i < n; i++ {
		var base byte
		if seq != "" {
			base = upper(seq[i])
		}
		if c, ok := overrides[base]; ok {
			colors[i] = c
			continue
		}
		switch opts.Mode {
		case ModeProbability:
			p := opts.Probabilities[i]
			if remap != nil {
				p, err = remap.Remap(opts.RemapExpr, p)
				if err != nil {
					return nil, Legend{}, errutil.Wrap(err, "stylist: remapping probability at index %d", i)
				}
			}
			colors[i] = gradient(p)
		default:
			colors[i] = nucleotideColor(base)
		}
	}

	legend := Legend{}
	if opts.Structure != "" {
		spans, err := highlightStructure(opts.Structure, opts.ChromaStyle)
		if err != nil {
			return nil, Legend{}, errutil.Wrap(err, "stylist: highlighting structure legend")
		}
		legend.StructureSpans = spans
	}
	if opts.Caption != "" {
		html, err := renderCaption(opts.Caption)
		if err != nil {
			return nil, Legend{}, errutil.Wrap(err, "stylist: rendering caption")
		}
		legend.CaptionHTML = html
	}
	if opts.Mode == ModeProbability {
		svg, err := renderColorbar(stops)
		if err != nil {
			return nil, Legend{}, errutil.Wrap(err, "stylist: rendering colorbar")
		}
		legend.ColorbarSVG = svg
	}

	log.Debug(ctx, "styled structure",
		slog.F("nucleotides", n),
		slog.F("mode", int(opts.Mode)),
		slog.F("overrides", len(overrides)),
	)

	return colors, legend, nil
}

// nucleotidePalette is the default identity palette, chosen for contrast
// against a white SVG background.
var nucleotidePalette = map[byte]Color{
	'A': {R: 0x4c, G: 0xaf, B: 0x50},
	'C': {R: 0x21, G: 0x96, B: 0xf3},
	'G': {R: 0xff, G: 0xc1, B: 0x07},
	'U': {R: 0xf4, G: 0x43, B: 0x36},
	'T': {R: 0xf4, G: 0x43, B: 0x36},
}

var unknownNucleotideColor = Color{R: 0x9e, G: 0x9e, B: 0x9e}

func nucleotideColor(base byte) Color {
	if c, ok := nucleotidePalette[base]; ok {
		return c
	}
	return unknownNucleotideColor
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func parseOverrides(raw map[byte]string) (map[byte]Color, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[byte]Color, len(raw))
	for base, spec := range raw {
		c, err := csscolorparser.Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("stylist: override for %q: %w", string(base), err)
		}
		r, g, b, _ := c.RGBA255()
		out[upper(base)] = Color{R: r, G: g, B: b}
	}
	return out, nil
}

// newLabGradient builds a 3-stop perceptually-uniform gradient function
// over [0,1]: stops[0]->stops[1] on [0,0.5], stops[1]->stops[2] on
// [0.5,1], interpolated in CIE Lab space (go-colorful's BlendLab) so the
// midpoint doesn't look muddier than either end, unlike a naive RGB blend.
func newLabGradient(stops [3]string) (func(float64) Color, error) {
	parsed := make([]colorful.Color, 3)
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("stylist: gradient stop %d (%q): %w", i, s, err)
		}
		parsed[i] = c
	}
	return func(p float64) Color {
		p = clamp01(p)
		if p <= 0.5 {
			t := p / 0.5
			return fromColorful(parsed[0].BlendLab(parsed[1], t))
		}
		t := (p - 0.5) / 0.5
		return fromColorful(parsed[1].BlendLab(parsed[2], t))
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
