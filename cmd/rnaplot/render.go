package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/rnaplot/rnaplot/internal/rnapng"
	"github.com/rnaplot/rnaplot/pkg/rnaplot"
)

// renderAndWrite runs the pipeline once and writes every requested output,
// collecting failures with multierr so one bad output path doesn't abort
// the others.
func renderAndWrite(ctx context.Context, structure, sequence string, opts rnaplot.Options, outputs []string) error {
	result, err := rnaplot.Render(ctx, structure, sequence, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if len(outputs) == 0 {
		fmt.Println(result.SVG)
		return nil
	}

	var pw *rnapng.Playwright
	defer func() {
		if pw != nil {
			_ = pw.Cleanup()
		}
	}()

	var errs error
	for _, out := range outputs {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".svg":
			errs = multierr.Append(errs, writeFile(out, []byte(result.SVG)))
		case ".json":
			errs = multierr.Append(errs, writeFile(out, result.JSON))
		case ".png":
			if pw == nil {
				started, pwErr := rnapng.Init()
				if pwErr != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", out, pwErr))
					continue
				}
				pw = &started
			}
			png, pwErr := pw.ConvertSVG([]byte(result.SVG))
			if pwErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", out, pwErr))
				continue
			}
			errs = multierr.Append(errs, writeFile(out, png))
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: unrecognized output extension", out))
		}
	}
	return errs
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
