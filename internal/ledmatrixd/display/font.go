package display

import (
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// glyphFont is the fixed bitmap font every text item is rasterized in.
var glyphFont = basicfont.Face7x13

// glyphHeight is the font's fixed cell height, used to vertically center
// static text and to size every cached glyph's mask.
var glyphHeight = glyphFont.Metrics().Height.Ceil()

var baselineDot = fixed.Point26_6{X: 0, Y: glyphFont.Metrics().Ascent}

// glyph is one codepoint's bitmap mask and horizontal advance, cached once
// per rune the first time it is drawn.
type glyph struct {
	mask    [][]bool // mask[y][x], true where the glyph paints a pixel
	width   int
	advance int
}

// glyphCache memoizes rasterized glyphs by codepoint across renders.
type glyphCache struct {
	cache map[rune]*glyph
}

func newGlyphCache() *glyphCache {
	return &glyphCache{cache: make(map[rune]*glyph)}
}

func (c *glyphCache) get(r rune) *glyph {
	if g, ok := c.cache[r]; ok {
		return g
	}
	g := rasterize(r)
	c.cache[r] = g
	return g
}

// rasterize samples basicfont's glyph mask for r into a dense bool grid, so
// the renderer blits pixels without touching the font package per pixel.
func rasterize(r rune) *glyph {
	dr, maskImg, maskPt, advance, ok := glyphFont.Glyph(baselineDot, r)
	if !ok {
		dr, maskImg, maskPt, advance, _ = glyphFont.Glyph(baselineDot, ' ')
	}

	width := dr.Dx()
	mask := make([][]bool, glyphHeight)
	for y := 0; y < glyphHeight; y++ {
		mask[y] = make([]bool, width)
		if y >= dr.Dy() {
			continue
		}
		for x := 0; x < width; x++ {
			_, _, _, a := maskImg.At(maskPt.X+x, maskPt.Y+y).RGBA()
			mask[y][x] = a > 0
		}
	}

	return &glyph{mask: mask, width: width, advance: advance.Ceil()}
}
