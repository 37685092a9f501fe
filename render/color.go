package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Luma is the perceptual brightness used for true-grayscale output.
func Luma(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ColorLuma is a visually tuned weighting used to pick glyph density for
// colored output. It intentionally differs from Luma: saturated colors
// land on different glyphs than their grayscale equivalent would.
func ColorLuma(r, g, b float64) float64 {
	return 0.267*r + 0.642*g + 0.091*b
}

// ToAnsi quantizes an RGB color into the xterm 256-color cube, using the
// 24-step grayscale ramp for achromatic colors.
func ToAnsi(r, g, b int) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 230
		}
		return int(math.Round(float64(r-8)/247*24)) + 232
	}
	toRange := func(c int) int { return int(math.Round(float64(c) / 51.0)) }
	return 16 + 36*toRange(r) + 6*toRange(g) + toRange(b)
}

// BoostSaturation nudges a color toward more saturation and slightly more
// brightness before quantization, so quantized output stays vivid.
func BoostSaturation(r, g, b float64) (float64, float64, float64) {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	h, s, v := c.Hsv()
	s = math.Min(s+0.3, 1.0)
	v = math.Min(v+0.1, 1.0)
	out := colorful.Hsv(h, s, v)
	return out.R * 255, out.G * 255, out.B * 255
}

// BoostSaturationScaled multiplies saturation and value instead of adding,
// clamped to valid range.
func BoostSaturationScaled(r, g, b, satScale, valScale float64) (float64, float64, float64) {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	h, s, v := c.Hsv()
	s = math.Min(s*satScale, 1.0)
	v = math.Min(v*valScale, 1.0)
	out := colorful.Hsv(h, s, v)
	return out.R * 255, out.G * 255, out.B * 255
}

// Colorize wraps a string in the 256-color foreground escape sequence.
func Colorize(s string, ansi int) string {
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", ansi, s)
}
