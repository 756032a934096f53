//go:build js && wasm

// Command rnaplot_wasm exposes pkg/rnaplot.Render to the browser, mirroring
// lib/jsrunner/js.go's marshal-strings-in, marshal-strings-out convention:
// this binding itself only ever touches strings and JSON, never Go values,
// so the JS side needs no glue beyond calling a function and reading JSON.
package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/rnaplot/rnaplot/internal/logging"
	"github.com/rnaplot/rnaplot/pkg/rnaplot"
	"github.com/rnaplot/rnaplot/pkg/stylist"
)

// renderOptions is the JSON shape accepted from JS, a flattened subset of
// rnaplot.Options that survives round-tripping through JSON.parse/stringify.
type renderOptions struct {
	Probability    bool      `json:"probability"`
	Probabilities  []float64 `json:"probabilities"`
	GradientStops  [3]string `json:"gradientStops"`
	ColorOverrides map[string]string `json:"colorOverrides"`
	Caption        string    `json:"caption"`
	ChromaStyle    string    `json:"chromaStyle"`
	RemapExpr      string    `json:"remapExpr"`
	ShowLegend     bool      `json:"showLegend"`
	ShowLabels     bool      `json:"showLabels"`
}

type renderResult struct {
	SVG   string `json:"svg"`
	JSON  string `json:"json"`
	Error string `json:"error,omitempty"`
}

func toOptions(raw renderOptions) rnaplot.Options {
	opts := rnaplot.Options{
		GradientStops: raw.GradientStops,
		Caption:       raw.Caption,
		ChromaStyle:   raw.ChromaStyle,
		RemapExpr:     raw.RemapExpr,
		ShowLegend:    raw.ShowLegend,
		ShowLabels:    raw.ShowLabels,
		Probabilities: raw.Probabilities,
	}
	if raw.Probability {
		opts.Mode = stylist.ModeProbability
	}
	if len(raw.ColorOverrides) > 0 {
		opts.ColorOverrides = make(map[byte]string, len(raw.ColorOverrides))
		for base, spec := range raw.ColorOverrides {
			if len(base) == 1 {
				opts.ColorOverrides[base[0]] = spec
			}
		}
	}
	return opts
}

func renderFunc(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return marshalResult(renderResult{Error: "rnaplotRender requires (structure, sequence[, optionsJSON])"})
	}
	structure := args[0].String()
	sequence := args[1].String()

	var raw renderOptions
	if len(args) > 2 && args[2].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[2].String()), &raw); err != nil {
			return marshalResult(renderResult{Error: "invalid options JSON: " + err.Error()})
		}
	}

	ctx := logging.WithContext(context.Background(), logging.NewSilent())
	result, err := rnaplot.Render(ctx, structure, sequence, toOptions(raw))
	if err != nil {
		return marshalResult(renderResult{Error: err.Error()})
	}
	return marshalResult(renderResult{SVG: result.SVG, JSON: string(result.JSON)})
}

func marshalResult(r renderResult) string {
	out, err := json.Marshal(r)
	if err != nil {
		return `{"error":"failed to marshal result"}`
	}
	return string(out)
}

func main() {
	js.Global().Set("rnaplotRender", js.FuncOf(renderFunc))
	select {} // block forever; callbacks keep the wasm runtime alive
}
