package render

import (
	"fmt"
	"strings"

	"github.com/ruslanjabari/video-to-ascii/frame"
)

// Kind identifies a render strategy.
type Kind int

const (
	ColoredASCII Kind = iota
	PlainASCII
	FilledBlocks
	Adaptive
	Cinematic
)

var kindNames = map[string]Kind{
	"ascii-color":  ColoredASCII,
	"just-ascii":   PlainASCII,
	"filled-ascii": FilledBlocks,
	"adaptive":     Adaptive,
	"cinematic":    Cinematic,
}

// ParseKind resolves a strategy name from the CLI set. The empty string
// selects the default colored strategy.
func ParseKind(name string) (Kind, error) {
	if name == "" {
		return ColoredASCII, nil
	}
	kind, ok := kindNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown strategy %q", name)
	}
	return kind, nil
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Dimensions is a terminal size in character cells.
type Dimensions struct {
	Columns int
	Rows    int
}

// Position is the row and column of the cell being rendered, passed
// explicitly so pixel classification never depends on call order.
type Position struct {
	Row int
	Col int
}

// Strategy converts frames to glyph cells. Strategies with temporal state
// (cinematic) keep it on the instance, so an instance must never be shared
// between two playback streams.
type Strategy struct {
	kind Kind
	cin  *cinematicState
}

func New(kind Kind) *Strategy {
	s := &Strategy{kind: kind}
	if kind == Cinematic {
		s.cin = newCinematicState()
	}
	return s
}

func (s *Strategy) Kind() Kind {
	return s.kind
}

// PrintingWidth is the number of glyph cells per row: every cell prints
// two characters, and the source is never stretched beyond double width.
func PrintingWidth(columns, frameWidth int) int {
	w := columns
	if doubled := 2 * frameWidth; doubled < w {
		w = doubled
	}
	return w / 2
}

// Resize scales the frame to fit the glyph grid and applies the
// strategy's enhancement pass.
func (s *Strategy) Resize(f *frame.Frame, dims Dimensions) *frame.Frame {
	width := PrintingWidth(dims.Columns, f.Width)
	resized := frame.Resize(f, width, dims.Rows)
	switch s.kind {
	case Adaptive:
		return enhanceAdaptive(resized)
	case Cinematic:
		s.cin.update(resized)
		return resized
	default:
		return resized
	}
}

// enhanceAdaptive runs the contrast and edge pipeline: local contrast
// equalization, edge-preserving smoothing, hysteresis edge detection,
// one dilation pass, then a 30% edge blend per channel.
func enhanceAdaptive(f *frame.Frame) *frame.Frame {
	equalized := frame.EqualizeContrast(f)
	smoothed := frame.Smooth(equalized)
	edges := frame.Dilate(frame.DetectEdges(smoothed.Gray()))
	return frame.BlendEdges(smoothed, edges, 0.3)
}

// Cell classifies one BGR pixel into its rendered glyph cell.
func (s *Strategy) Cell(b, g, r byte, pos Position) string {
	rf, gf, bf := float64(r), float64(g), float64(b)
	switch s.kind {
	case PlainASCII:
		glyph := BrightnessToGlyph(clamp255(Luma(rf, gf, bf)), TierLight)
		return strings.Repeat(string(glyph), 2)
	case FilledBlocks:
		return coloredCell(rf, gf, bf, TierFilled)
	case Adaptive:
		br, bg, bb := BoostSaturationScaled(rf, gf, bf, 1.4, 1.1)
		glyph := BrightnessToGlyph(clamp255(ColorLuma(br, bg, bb)), TierDetailed)
		return Colorize(strings.Repeat(string(glyph), 2), ToAnsi(int(br), int(bg), int(bb)))
	case Cinematic:
		return s.cin.cell(rf, gf, bf, pos)
	default:
		return coloredCell(rf, gf, bf, TierColor)
	}
}

// coloredCell is the shared colored pixel path: density from the tuned
// luma of the raw color, color from the saturation-boosted one.
func coloredCell(r, g, b float64, tier Tier) string {
	bright := clamp255(ColorLuma(r, g, b))
	br, bg, bb := BoostSaturation(r, g, b)
	glyph := BrightnessToGlyph(bright, tier)
	return Colorize(strings.Repeat(string(glyph), 2), ToAnsi(int(br), int(bg), int(bb)))
}

func clamp255(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
