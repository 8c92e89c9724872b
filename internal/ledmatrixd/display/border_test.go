package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1alpha1 "github.com/paviro/RPi-LED-Sign-Controller/api/types/v1alpha1"
	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/panel"
)

func TestPerimeter_CountsMatchBoundary(t *testing.T) {
	points := perimeter(10, 5)
	assert.Len(t, points, 2*10+2*5-4)

	seen := make(map[perimeterPoint]bool)
	for _, p := range points {
		assert.False(t, seen[p], "duplicate perimeter point %+v", p)
		seen[p] = true
		onEdge := p.x == 0 || p.y == 0 || p.x == 9 || p.y == 4
		assert.True(t, onEdge, "point %+v is not on the border", p)
	}
}

func TestPerimeter_DegenerateSizeIsEmpty(t *testing.T) {
	assert.Empty(t, perimeter(1, 5))
	assert.Empty(t, perimeter(5, 1))
}

func TestPaintBorder_NoneKindLeavesBufferUntouched(t *testing.T) {
	buf := panel.NewFrameBuffer(8, 8)
	state := newBorderState()
	paintBorder(buf, &v1alpha1.BorderEffect{Kind: v1alpha1.BorderEffectNone}, v1alpha1.Color{}, 0, state, 100)

	for _, p := range buf.Pix {
		assert.Equal(t, panel.Pixel{}, p)
	}
}

func TestPaintBorder_NilEffectLeavesBufferUntouched(t *testing.T) {
	buf := panel.NewFrameBuffer(8, 8)
	state := newBorderState()
	paintBorder(buf, nil, v1alpha1.Color{}, 0, state, 100)

	for _, p := range buf.Pix {
		assert.Equal(t, panel.Pixel{}, p)
	}
}

func TestPaintBorder_RainbowLightsThePerimeter(t *testing.T) {
	buf := panel.NewFrameBuffer(8, 8)
	state := newBorderState()
	paintBorder(buf, &v1alpha1.BorderEffect{Kind: v1alpha1.BorderEffectRainbow}, v1alpha1.Color{}, 0, state, 100)

	lit := 0
	for _, p := range buf.Pix {
		if p != (panel.Pixel{}) {
			lit++
		}
	}
	assert.Equal(t, len(perimeter(8, 8)), lit)
}

func TestPaintBorder_GradientFallsBackToBaseColorWithNoPalette(t *testing.T) {
	buf := panel.NewFrameBuffer(8, 8)
	state := newBorderState()
	base := v1alpha1.Color{R: 200, G: 10, B: 10}
	paintBorder(buf, &v1alpha1.BorderEffect{Kind: v1alpha1.BorderEffectGradient}, base, 0, state, 100)

	p := buf.At(0, 0)
	require.NotEqual(t, panel.Pixel{}, p)
}
