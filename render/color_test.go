package render

import (
	"strings"
	"testing"
)

func TestToAnsiGrayscaleRange(t *testing.T) {
	for v := 0; v <= 255; v++ {
		ansi := ToAnsi(v, v, v)
		if ansi == 16 || ansi == 230 || (ansi >= 232 && ansi <= 255) {
			continue
		}
		t.Fatalf("Gray %d mapped to %d, outside the grayscale ramp", v, ansi)
	}
	if ToAnsi(0, 0, 0) != 16 {
		t.Error("Expected black to map to 16")
	}
	if ToAnsi(255, 255, 255) != 230 {
		t.Error("Expected white to map to 230")
	}
}

func TestToAnsiChromaticRange(t *testing.T) {
	for r := 0; r <= 255; r += 15 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 15 {
				if r == g && g == b {
					continue
				}
				ansi := ToAnsi(r, g, b)
				if ansi < 16 || ansi > 231 {
					t.Fatalf("Color (%d, %d, %d) mapped to %d, outside the 6x6x6 cube", r, g, b, ansi)
				}
			}
		}
	}
}

func TestLumaFormulasDiffer(t *testing.T) {
	// a saturated red: the tuned weighting must select a different glyph
	// than the perceptual one
	perceptual := Luma(220, 30, 30)
	tuned := ColorLuma(220, 30, 30)
	if perceptual == tuned {
		t.Error("Expected the two luma formulas to disagree on saturated colors")
	}
	glyphA := BrightnessToGlyph(clamp255(perceptual), TierDetailed)
	glyphB := BrightnessToGlyph(clamp255(tuned), TierDetailed)
	if glyphA == glyphB {
		t.Error("Expected different glyph density from the two formulas")
	}
}

func TestBoostSaturationClamps(t *testing.T) {
	r, g, b := BoostSaturation(255, 0, 0)
	if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
		t.Errorf("Boosted color out of range: (%f, %f, %f)", r, g, b)
	}

	// a washed-out color must come back more saturated
	r2, g2, b2 := BoostSaturation(200, 150, 150)
	if !(r2-g2 > 200-150) {
		t.Errorf("Expected more channel spread after boost, got (%f, %f, %f)", r2, g2, b2)
	}
	if g2 != b2 {
		t.Errorf("Hue should be preserved: got g=%f b=%f", g2, b2)
	}
}

func TestColorizeFormat(t *testing.T) {
	out := Colorize("xx", 196)
	if out != "\x1b[38;5;196mxx\x1b[0m" {
		t.Errorf("Unexpected escape sequence: %q", out)
	}
	if !strings.Contains(out, "xx") {
		t.Error("Colorized output lost its payload")
	}
}
