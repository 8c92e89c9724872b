package display

import "math"

// gamma is the target correction exponent; nothing in the example corpus
// covers perceptual gamma correction or HSV conversion, so this is plain
// arithmetic on the standard library.
const gamma = 2.2

// gammaLUT[v] is v corrected for a display gamma of ~2.2, scaled back to
// 0-255. Computed once at package init.
var gammaLUT = buildGammaLUT()

func buildGammaLUT() [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		normalized := float64(i) / 255
		corrected := math.Pow(normalized, gamma)
		lut[i] = uint8(math.Round(corrected * 255))
	}
	return lut
}

// applyGammaBrightness transforms one linear channel value into its
// gamma-corrected, brightness-scaled output value. effectiveBrightness is
// 0-100.
func applyGammaBrightness(channel uint8, effectiveBrightness uint8) uint8 {
	corrected := gammaLUT[channel]
	return uint8(uint32(corrected) * uint32(effectiveBrightness) / 100)
}

// hsvToRGB converts hue/saturation/value (each in [0,1]) to an RGB triplet.
func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	h = h - math.Floor(h)
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var rf, gf, bf float64
	switch i % 6 {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	default:
		rf, gf, bf = v, p, q
	}

	return uint8(math.Round(rf * 255)), uint8(math.Round(gf * 255)), uint8(math.Round(bf * 255))
}
