package svgwriter

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// legendFace is a pure-Go, asset-free bitmap face: there is no embeddable
// TrueType font file anywhere in this module, and fabricating one as a
// binary asset isn't an option, so canvas sizing uses the one glyph
// source that needs no font file at all. golang/freetype's truetype.Parse
// has no legitimate caller under that constraint and is dropped (see
// DESIGN.md).
var legendFace = basicfont.Face7x13

// measureTextWidth returns the rendered pixel width of s in legendFace,
// used to widen the SVG canvas when the structure-legend string is wider
// than the molecule itself.
func measureTextWidth(s string) int {
	if s == "" {
		return 0
	}
	return font.MeasureString(legendFace, s).Round()
}
