// Package rnapng renders an SVG document to PNG via a headless Chromium
// instance, and stamps the result with EXIF provenance metadata. Adapted
// from lib/png/png.go: the same playwright-community/playwright-go launch
// flags and dsoprea/go-exif + go-png-image-structure stamping flow, with
// the SVG animation-scrubbing step dropped (this module never produces
// animated SVG — spec.md names animation a non-goal) and the Make/Model
// tags renamed to this project's own identity.
package rnapng

import (
	"bytes"
	"encoding/base64"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	pngstruct "github.com/dsoprea/go-png-image-structure/v2"
	"github.com/playwright-community/playwright-go"

	"github.com/rnaplot/rnaplot/internal/compression"
)

// Version is stamped into every exported PNG's EXIF Model tag.
const Version = "0.1.0"

// Playwright wraps one Chromium instance scoped to this process's PNG
// export calls.
type Playwright struct {
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// Init installs (if needed) and launches a tightly-scoped headless
// Chromium instance.
func Init() (Playwright, error) {
	if err := playwright.Install(&playwright.RunOptions{
		Verbose:  false,
		Browsers: []string{"chromium"},
	}); err != nil {
		return Playwright{}, fmt.Errorf("rnapng: install chromium: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return Playwright{}, fmt.Errorf("rnapng: run playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
			"--disable-features=TranslateUI",
			"--disable-ipc-flooding-protection",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return Playwright{}, fmt.Errorf("rnapng: launch chromium: %w", err)
	}

	return Playwright{PW: pw, Browser: browser}, nil
}

// Cleanup shuts down the Chromium instance and the Playwright driver.
func (pw *Playwright) Cleanup() error {
	if err := pw.Browser.Close(); err != nil {
		return fmt.Errorf("rnapng: close chromium: %w", err)
	}
	if err := pw.PW.Stop(); err != nil {
		return fmt.Errorf("rnapng: stop playwright: %w", err)
	}
	return nil
}

func mountSVG(page playwright.Page, svgMarkup string) error {
	decompressed := compression.UnzipEmbeddedSVGImages([]byte(svgMarkup))
	html := `<!doctype html><meta charset="utf-8">
<style>
  html,body{margin:0;background:#fff}
  #stage{display:inline-block}
</style>
<div id="stage">` + string(decompressed) + `</div>`
	_, err := page.Goto("data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html)))
	if err != nil {
		return err
	}
	return page.Locator("svg").First().WaitFor()
}

// ConvertSVG screenshots svg at 2x device scale and returns PNG bytes with
// EXIF provenance metadata stamped in.
func (pw *Playwright) ConvertSVG(svg []byte) ([]byte, error) {
	ctx, err := pw.Browser.NewContext(playwright.BrowserNewContextOptions{
		DeviceScaleFactor: playwright.Float(2.0),
	})
	if err != nil {
		return nil, fmt.Errorf("rnapng: new browser context: %w", err)
	}
	defer ctx.Close()

	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("rnapng: new page: %w", err)
	}
	defer page.Close()

	if err := mountSVG(page, string(svg)); err != nil {
		return nil, fmt.Errorf("rnapng: mount svg: %w", err)
	}

	raw, err := page.Locator("svg").First().Screenshot()
	if err != nil {
		return nil, fmt.Errorf("rnapng: screenshot: %w", err)
	}

	return addExif(raw)
}

func addExif(png []byte) ([]byte, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()
	ib := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.TestDefaultByteOrder)

	if err := ib.AddStandardWithName("Make", "rnaplot"); err != nil {
		return nil, err
	}
	if err := ib.AddStandardWithName("Model", Version); err != nil {
		return nil, err
	}

	pmp := pngstruct.NewPngMediaParser()
	intfc, err := pmp.ParseBytes(png)
	if err != nil {
		return nil, err
	}
	cs := intfc.(*pngstruct.ChunkSlice)
	if err := cs.SetExif(ib); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	if err := cs.WriteTo(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
