package display

import (
	"math"
	"math/rand"
	"time"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
)

const (
	rainbowPeriod   = 4 * time.Second
	pulsePeriod     = 1500 * time.Millisecond
	gradientSpeed   = 1.0 / 3 // rotations per second
	sparkleFraction = 0.05
	sparkleDecay    = 100 * time.Millisecond
)

// perimeterPoint is one pixel on the outside border, in clockwise order
// starting at the top-left corner.
type perimeterPoint struct {
	x, y int
}

func perimeter(width, height int) []perimeterPoint {
	if width < 2 || height < 2 {
		return nil
	}

	points := make([]perimeterPoint, 0, 2*width+2*height-4)
	for x := 0; x < width; x++ {
		points = append(points, perimeterPoint{x, 0})
	}
	for y := 1; y < height; y++ {
		points = append(points, perimeterPoint{width - 1, y})
	}
	for x := width - 2; x >= 0; x-- {
		points = append(points, perimeterPoint{x, height - 1})
	}
	for y := height - 2; y >= 1; y-- {
		points = append(points, perimeterPoint{0, y})
	}
	return points
}

// sparkleParticle is one currently-lit sparkle pixel, fading out over
// sparkleDecay.
type sparkleParticle struct {
	color   v1alpha1.Color
	litAt   time.Duration
}

// borderState holds the per-item mutable state a border effect needs across
// frames (sparkle only; the others are pure functions of t).
type borderState struct {
	rng      *rand.Rand
	sparkles map[int]sparkleParticle
}

func newBorderState() *borderState {
	return &borderState{
		rng:      rand.New(rand.NewSource(1)),
		sparkles: make(map[int]sparkleParticle),
	}
}

// paintBorder overlays effect on the one-pixel-wide border of buf.
func paintBorder(buf *panel.FrameBuffer, effect *v1alpha1.BorderEffect, baseColor v1alpha1.Color, t time.Duration, state *borderState, effectiveBrightness uint8) {
	if effect == nil || effect.Kind == v1alpha1.BorderEffectNone {
		return
	}

	points := perimeter(buf.Width, buf.Height)
	if len(points) == 0 {
		return
	}

	colors := effect.Colors
	if len(colors) == 0 {
		colors = []v1alpha1.Color{baseColor}
	}

	switch effect.Kind {
	case v1alpha1.BorderEffectRainbow:
		paintRainbow(buf, points, t, effectiveBrightness)
	case v1alpha1.BorderEffectPulse:
		paintPulse(buf, points, colors, t, effectiveBrightness)
	case v1alpha1.BorderEffectSparkle:
		paintSparkle(buf, points, colors, t, state, effectiveBrightness)
	case v1alpha1.BorderEffectGradient:
		paintGradient(buf, points, colors, t, effectiveBrightness)
	}
}

func paintRainbow(buf *panel.FrameBuffer, points []perimeterPoint, t time.Duration, brightness uint8) {
	n := len(points)
	phase := t.Seconds() / rainbowPeriod.Seconds()
	for i, p := range points {
		hue := float64(i)/float64(n) + phase
		r, g, b := hsvToRGB(hue, 1, 1)
		setGamma(buf, p.x, p.y, r, g, b, brightness)
	}
}

func paintPulse(buf *panel.FrameBuffer, points []perimeterPoint, colors []v1alpha1.Color, t time.Duration, brightness uint8) {
	phase := math.Mod(t.Seconds(), pulsePeriod.Seconds()) / pulsePeriod.Seconds()
	idx := int(phase * float64(len(colors)))
	if idx >= len(colors) {
		idx = len(colors) - 1
	}
	c := colors[idx]

	// Triangular wave across the full perimeter cycle: brightest at
	// phase=0.5, dimmest at the wrap points.
	triangle := 1 - math.Abs(2*phase-1)

	for _, p := range points {
		r := uint8(float64(c.R) * triangle)
		g := uint8(float64(c.G) * triangle)
		b := uint8(float64(c.B) * triangle)
		setGamma(buf, p.x, p.y, r, g, b, brightness)
	}
}

func paintSparkle(buf *panel.FrameBuffer, points []perimeterPoint, colors []v1alpha1.Color, t time.Duration, state *borderState, brightness uint8) {
	n := len(points)
	newSparkles := int(float64(n) * sparkleFraction)
	for i := 0; i < newSparkles; i++ {
		idx := state.rng.Intn(n)
		state.sparkles[idx] = sparkleParticle{
			color: colors[state.rng.Intn(len(colors))],
			litAt: t,
		}
	}

	for idx, particle := range state.sparkles {
		age := t - particle.litAt
		if age < 0 || age > sparkleDecay {
			delete(state.sparkles, idx)
			continue
		}
		fade := 1 - float64(age)/float64(sparkleDecay)
		p := points[idx]
		r := uint8(float64(particle.color.R) * fade)
		g := uint8(float64(particle.color.G) * fade)
		b := uint8(float64(particle.color.B) * fade)
		setGamma(buf, p.x, p.y, r, g, b, brightness)
	}
}

func paintGradient(buf *panel.FrameBuffer, points []perimeterPoint, colors []v1alpha1.Color, t time.Duration, brightness uint8) {
	n := len(points)
	if n == 0 {
		return
	}
	rotation := t.Seconds() * gradientSpeed
	segments := len(colors)

	for i, p := range points {
		pos := math.Mod(float64(i)/float64(n)+rotation, 1) * float64(segments)
		lo := int(pos) % segments
		hi := (lo + 1) % segments
		frac := pos - math.Floor(pos)

		c1, c2 := colors[lo], colors[hi]
		r := uint8(float64(c1.R)*(1-frac) + float64(c2.R)*frac)
		g := uint8(float64(c1.G)*(1-frac) + float64(c2.G)*frac)
		b := uint8(float64(c1.B)*(1-frac) + float64(c2.B)*frac)
		setGamma(buf, p.x, p.y, r, g, b, brightness)
	}
}

func setGamma(buf *panel.FrameBuffer, x, y int, r, g, b uint8, brightness uint8) {
	buf.Set(x, y, panel.Pixel{
		R: applyGammaBrightness(r, brightness),
		G: applyGammaBrightness(g, brightness),
		B: applyGammaBrightness(b, brightness),
	})
}
