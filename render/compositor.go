package render

import (
	"strings"

	"github.com/ruslanjabari/video-to-ascii/frame"
)

// LineEnding selects how each printed row is terminated.
type LineEnding int

const (
	// LineNewline ends every row with "\n" (file export).
	LineNewline LineEnding = iota
	// LinePad appends spaces up to the terminal width instead of a
	// newline, relying on terminal wrap (live playback).
	LinePad
)

// Compose renders a prepared frame into its terminal representation.
// The last source row is dropped so output height stays stable across
// frames of slightly varying decoded size. The frame always ends with
// "\r\n".
func Compose(f *frame.Frame, dims Dimensions, s *Strategy, ending LineEnding) string {
	printingWidth := PrintingWidth(dims.Columns, f.Width)
	pad := dims.Columns - 2*printingWidth
	if pad < 0 {
		pad = 0
	}

	var sb strings.Builder
	for row := 0; row < f.Height-1; row++ {
		for col := 0; col < printingWidth; col++ {
			b, g, r := f.At(col, row)
			sb.WriteString(s.Cell(b, g, r, Position{Row: row, Col: col}))
		}
		if ending == LineNewline {
			sb.WriteByte('\n')
		} else {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	sb.WriteString("\r\n")
	return sb.String()
}
