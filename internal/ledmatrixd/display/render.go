// Package display rasterizes playlist/preview items into panel framebuffers
// and drives the playback state machine that decides which item is active
// on each animation tick.
package display

import (
	"time"

	"github.com/google/uuid"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
)

// Renderer rasterizes DisplayItems into a FrameBuffer, caching glyph
// bitmaps and per-item border-effect state (sparkle) across calls.
type Renderer struct {
	glyphs  *glyphCache
	borders map[uuid.UUID]*borderState
}

// NewRenderer builds an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		glyphs:  newGlyphCache(),
		borders: make(map[uuid.UUID]*borderState),
	}
}

// Render rasterizes item into buf at tick-relative time t, gamma-correcting
// and brightness-scaling every output pixel. It returns the cumulative
// count of scroll passes completed since t=0 for scrolling text (always 0
// for static text); the caller compares this against the item's
// repeat_count to detect end-of-item.
func (r *Renderer) Render(item v1alpha1.DisplayItem, t time.Duration, buf *panel.FrameBuffer, effectiveBrightness uint8, inverseColors bool) int {
	buf.Clear()

	text := item.Content.Data
	runes := []rune(text.Text)
	glyphs := make([]*glyph, len(runes))
	width := 0
	for i, ch := range runes {
		g := r.glyphs.get(ch)
		glyphs[i] = g
		width += g.advance
	}

	passes := 0
	var x0 int
	y := (buf.Height - glyphHeight) / 2

	if text.Scroll {
		speed := float64(text.Speed)
		cycle := float64(buf.Width + width)
		distance := speed * t.Seconds()
		if cycle > 0 {
			passes = int(distance / cycle)
		}
		offset := 0.0
		if cycle > 0 {
			offset = distance - float64(passes)*cycle
		}
		x0 = buf.Width - int(offset)
	} else {
		x0 = (buf.Width - width) / 2
	}

	cursor := x0
	for i, g := range glyphs {
		color := text.Color
		for _, seg := range text.Segments {
			if i >= seg.Start && i < seg.End {
				color = seg.Color
				break
			}
		}
		blitGlyph(buf, g, cursor, y, color, effectiveBrightness)
		cursor += g.advance
	}

	state, ok := r.borders[item.ID]
	if !ok {
		state = newBorderState()
		r.borders[item.ID] = state
	}
	paintBorder(buf, item.BorderEffect, text.Color, t, state, effectiveBrightness)

	if inverseColors {
		invert(buf)
	}

	return passes
}

// blitGlyph paints g's mask at (x, y), clipping against buf's bounds and
// applying gamma/brightness per pixel.
func blitGlyph(buf *panel.FrameBuffer, g *glyph, x, y int, color v1alpha1.Color, brightness uint8) {
	for gy, row := range g.mask {
		for gx, on := range row {
			if !on {
				continue
			}
			setGamma(buf, x+gx, y+gy, color.R, color.G, color.B, brightness)
		}
	}
}

func invert(buf *panel.FrameBuffer) {
	for i, p := range buf.Pix {
		buf.Pix[i] = panel.Pixel{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B}
	}
}

// ForgetItem drops any cached border-effect state for id, freeing it once
// the item leaves the playlist.
func (r *Renderer) ForgetItem(id uuid.UUID) {
	delete(r.borders, id)
}
