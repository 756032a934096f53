package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
)

// runManifest renders every entry in an HTML manifest: one
// `<pre class="structure" data-sequence="...">structure</pre>` per
// molecule. Each entry's outputs are named "<basename>-<n><ext>" for every
// extension requested via -out.
func runManifest(ctx context.Context, f flags) error {
	file, err := os.Open(f.manifest)
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	defer file.Close()

	doc, err := goquery.NewDocumentFromReader(file)
	if err != nil {
		return fmt.Errorf("manifest: parse html: %w", err)
	}

	opts, err := buildOptions(f)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(f.manifest), filepath.Ext(f.manifest))
	var errs error
	doc.Find(`pre.structure`).Each(func(i int, sel *goquery.Selection) {
		structure := strings.TrimSpace(sel.Text())
		sequence, _ := sel.Attr("data-sequence")

		outputs := make([]string, len(f.outputs))
		for j, out := range f.outputs {
			ext := filepath.Ext(out)
			outputs[j] = fmt.Sprintf("%s-%s%s", base, strconv.Itoa(i), ext)
		}

		if err := renderAndWrite(ctx, structure, sequence, opts, outputs); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("manifest entry %d: %w", i, err))
		}
	})
	return errs
}
