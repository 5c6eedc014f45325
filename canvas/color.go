package canvas

import "image/color"

// Color is a linear RGB triple with channels in [0,1]. Devices convert to
// whatever depth their hardware wants at flush time; the layout itself
// always stores full-precision values.
type Color struct {
	R, G, B float64
}

// ColorRGB builds a Color from 8-bit channel values.
func ColorRGB(r, g, b uint8) Color {
	return Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255.0)
}

// NRGBA converts the color to 8-bit, clamping out-of-range channels.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: clamp255(c.R), G: clamp255(c.G), B: clamp255(c.B), A: 255}
}

// remap carries a channel authored against brightness floor source onto a
// device whose floor is target. The map is affine and anchored at 1.0:
// remap(1,s,t)==1, remap(s,s,t)==t, remap(c,s,s)==c.
func remap(c, source, target float64) float64 {
	return (c-1)*(1-target)/(1-source) + 1
}

// Remapped applies remap to every channel of c.
func (c Color) Remapped(source, target float64) Color {
	return Color{
		R: remap(c.R, source, target),
		G: remap(c.G, source, target),
		B: remap(c.B, source, target),
	}
}
