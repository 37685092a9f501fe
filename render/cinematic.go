package render

import (
	"strings"

	"github.com/ruslanjabari/video-to-ascii/frame"
)

// emphasisGlyphs are bold symbols used for pixels inside the motion mask.
var emphasisGlyphs = []rune{'@', '#', '$', '%', '&'}

const (
	historyDepth      = 3
	motionThreshold   = 3.0
	gradientThreshold = 0.5
)

// cinematicState is the per-stream temporal state of the cinematic
// strategy: bounded frame history, the last motion mask from optical flow
// and the last gradient fields. One instance per playback stream.
type cinematicState struct {
	history    *frame.Ring
	prevGray   *frame.Gray
	motionMask *frame.Gray
	gradDir    []float64
	gradMag    []float64
	gradWidth  int
	gradHeight int
	frameCount int
	flowOpts   frame.FlowOptions
	maskStale  bool
}

func newCinematicState() *cinematicState {
	return &cinematicState{
		history:  frame.NewRing(historyDepth),
		flowOpts: frame.DefaultFlowOptions(),
	}
}

// update refreshes temporal state for a newly resized frame. Optical flow
// runs every other frame; if it fails the previous mask stays in place and
// playback continues.
func (c *cinematicState) update(resized *frame.Frame) {
	c.frameCount++
	gray := resized.Gray()

	c.history.Add(resized.Clone())

	if c.frameCount%2 == 0 && c.prevGray != nil &&
		c.prevGray.Width == gray.Width && c.prevGray.Height == gray.Height {
		flow, err := frame.EstimateFlow(c.prevGray, gray, c.flowOpts)
		if err != nil {
			c.maskStale = true
		} else {
			mask := frame.MotionMask(flow.Magnitude(), gray.Width, gray.Height, motionThreshold)
			c.motionMask = frame.MorphClose(frame.MorphOpen(mask))
			c.maskStale = false
		}
	}
	c.prevGray = gray

	c.gradDir, c.gradMag = frame.SobelGradients(gray)
	c.gradWidth = gray.Width
	c.gradHeight = gray.Height
}

// MaskStale reports whether the last optical flow pass failed and the
// motion mask is carried over from an earlier frame.
func (s *Strategy) MaskStale() bool {
	if s.cin == nil {
		return false
	}
	return s.cin.maskStale
}

// cell classifies a pixel with tie-break order: motion emphasis, then
// strong directional edges, then the plain density lookup.
func (c *cinematicState) cell(r, g, b float64, pos Position) string {
	ansi := ToAnsi(int(r), int(g), int(b))

	if c.inMask(pos) {
		bright := ColorLuma(r, g, b)
		index := int(bright) * len(emphasisGlyphs) / 256
		if index >= len(emphasisGlyphs) {
			index = len(emphasisGlyphs) - 1
		}
		return Colorize(strings.Repeat(string(emphasisGlyphs[index]), 2), ansi)
	}

	if i, ok := c.gradIndex(pos); ok && c.gradMag[i] > gradientThreshold {
		angle := c.gradDir[i]
		switch {
		case (-22.5 <= angle && angle < 22.5) || angle >= 157.5 || angle < -157.5:
			return Colorize("--", ansi)
		case (67.5 <= angle && angle < 112.5) || (-112.5 <= angle && angle < -67.5):
			return Colorize("||", ansi)
		}
	}

	return coloredCell(r, g, b, TierColor)
}

func (c *cinematicState) inMask(pos Position) bool {
	if c.motionMask == nil {
		return false
	}
	if pos.Col >= c.motionMask.Width || pos.Row >= c.motionMask.Height {
		return false
	}
	return c.motionMask.At(pos.Col, pos.Row) > 0
}

func (c *cinematicState) gradIndex(pos Position) (int, bool) {
	if c.gradMag == nil || pos.Col >= c.gradWidth || pos.Row >= c.gradHeight {
		return 0, false
	}
	return pos.Row*c.gradWidth + pos.Col, true
}
