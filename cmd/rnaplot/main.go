// Command rnaplot is the CLI front end for pkg/rnaplot: read a dot-bracket
// structure (and optional sequence) from an argument or file, render it,
// and write SVG/JSON/PNG outputs — plus -watch/-serve/-manifest/-share
// convenience modes layered on top of the same pkg/rnaplot.Render call.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/internal/urlenc"
	"github.com/rnaplot/rnaplot/pkg/rnaplot"
	"github.com/rnaplot/rnaplot/pkg/stylist"
)

type flags struct {
	sequence      string
	probabilities string
	colorScheme   string
	caption       string
	remapExpr     string
	chromaStyle   string
	outputs       []string
	file          string
	watch         bool
	serve         string
	manifest      string
	share         bool
	showLabels    bool
}

func main() {
	var f flags
	pflag.StringVar(&f.sequence, "sequence", "", "nucleotide sequence, same length as the structure")
	pflag.StringVar(&f.probabilities, "probabilities", "", "comma-separated per-base probabilities in [0,1] for -color-scheme probability")
	pflag.StringVar(&f.colorScheme, "color-scheme", "nucleotide", `"nucleotide", "probability", or "custom:A=#rrggbb,C=#rrggbb,..."`)
	pflag.StringVar(&f.caption, "caption", "", "optional Markdown caption rendered under the legend")
	pflag.StringVar(&f.remapExpr, "remap", "", "optional JS expression in x remapping probabilities before the gradient")
	pflag.StringVar(&f.chromaStyle, "chroma-style", "", "chroma style name for the structure legend")
	pflag.StringArrayVar(&f.outputs, "out", nil, "output path, repeatable; format inferred from extension (.svg, .json, .png)")
	pflag.StringVar(&f.file, "file", "", "path to a file containing \"structure\\nsequence\" (overrides the positional structure argument)")
	pflag.BoolVar(&f.watch, "watch", false, "re-render on changes to -file")
	pflag.StringVar(&f.serve, "serve", "", "address (e.g. :7070) to serve a live-reload preview on; implies -watch when -file is set")
	pflag.StringVar(&f.manifest, "manifest", "", "path to an HTML manifest of <pre class=\"structure\" data-sequence=\"...\"> entries for batch rendering")
	pflag.BoolVar(&f.share, "share", false, "print a compressed share-link token instead of rendering")
	pflag.BoolVar(&f.showLabels, "labels", false, "draw nucleotide letters inside each circle")
	pflag.Parse()

	ctx := logging.WithContext(context.Background(), logging.NewCLI("cmd"))

	if err := run(ctx, f, pflag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "rnaplot:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, args []string) error {
	if f.manifest != "" {
		return runManifest(ctx, f)
	}

	structure, sequence, err := resolveInput(f, args)
	if err != nil {
		return err
	}

	if f.share {
		token, err := urlenc.Encode(structure, sequence)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	}

	opts, err := buildOptions(f)
	if err != nil {
		return err
	}

	if (f.watch || f.serve != "") && f.file != "" {
		return watchAndServe(ctx, f, opts)
	}

	return renderAndWrite(ctx, structure, sequence, opts, f.outputs)
}

func resolveInput(f flags, args []string) (structure, sequence string, err error) {
	if f.file != "" {
		return readStructureFile(f.file)
	}
	if len(args) == 0 {
		return "", "", fmt.Errorf("no structure given: pass one as an argument or via -file")
	}
	return args[0], f.sequence, nil
}

func readStructureFile(path string) (structure, sequence string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read -file %q: %w", path, err)
	}
	lines := strings.SplitN(strings.TrimRight(string(raw), "\n"), "\n", 2)
	structure = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		sequence = strings.TrimSpace(lines[1])
	}
	return structure, sequence, nil
}

func buildOptions(f flags) (rnaplot.Options, error) {
	opts := rnaplot.Options{
		Caption:     f.caption,
		RemapExpr:   f.remapExpr,
		ChromaStyle: f.chromaStyle,
		ShowLegend:  true,
		ShowLabels:  f.showLabels,
	}

	scheme := f.colorScheme
	switch {
	case scheme == "" || scheme == "nucleotide":
		opts.Mode = stylist.ModeNucleotide
	case scheme == "probability":
		opts.Mode = stylist.ModeProbability
		probs, err := parseProbabilities(f.probabilities)
		if err != nil {
			return opts, err
		}
		opts.Probabilities = probs
	case strings.HasPrefix(scheme, "custom:"):
		opts.Mode = stylist.ModeNucleotide
		overrides, err := parseColorOverrides(strings.TrimPrefix(scheme, "custom:"))
		if err != nil {
			return opts, err
		}
		opts.ColorOverrides = overrides
	default:
		return opts, fmt.Errorf("unrecognized -color-scheme %q", scheme)
	}
	return opts, nil
}

func parseProbabilities(raw string) ([]float64, error) {
	if raw == "" {
		return nil, fmt.Errorf("-color-scheme probability requires -probabilities")
	}
	fields := strings.Split(raw, ",")
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("-probabilities entry %d (%q): %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseColorOverrides(raw string) (map[byte]string, error) {
	out := make(map[byte]string)
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || len(kv[0]) != 1 {
			return nil, fmt.Errorf("malformed -color-scheme custom entry %q, want BASE=#hex", pair)
		}
		out[kv[0][0]] = kv[1]
	}
	return out, nil
}
