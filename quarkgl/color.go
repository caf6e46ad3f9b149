package quarkgl

// Color is 8-bit RGBA. Alpha is carried but the rasteriser only reads a
// material's Opacity.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color { return Color{r, g, b, 0xFF} }

// Hex builds an opaque color from 0xRRGGBB.
func Hex(rgb uint32) Color {
	return RGB(uint8(rgb>>16), uint8(rgb>>8), uint8(rgb))
}

// MulScalar darkens the RGB channels by s, clamped to [0, 1].
func (c Color) MulScalar(s Scalar) Color {
	k := Clamp01(s)
	c.R = uint8(Scalar(c.R) * k)
	c.G = uint8(Scalar(c.G) * k)
	c.B = uint8(Scalar(c.B) * k)
	return c
}

// Lerp mixes c toward o by t in [0, 1], rounding each channel.
func (c Color) Lerp(o Color, t Scalar) Color {
	t = Clamp01(t)
	ch := func(a, b uint8) uint8 { return uint8(Scalar(a) + (Scalar(b)-Scalar(a))*t + 0.5) }
	return Color{ch(c.R, o.R), ch(c.G, o.G), ch(c.B, o.B), ch(c.A, o.A)}
}
