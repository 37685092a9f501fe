package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/ruslanjabari/video-to-ascii/render"
	"github.com/ruslanjabari/video-to-ascii/video"
)

// stdoutSink paints frames onto the controlling terminal: clears once,
// homes the cursor per frame and hides the cursor while playing.
type stdoutSink struct{}

func (stdoutSink) Preamble() []byte {
	return []byte("\x1b[?25l\x1b[2J\x1b[H")
}

func (stdoutSink) WriteFrame(data []byte) error {
	_, err := os.Stdout.Write(data)
	return err
}

func (stdoutSink) Complete() []byte {
	return []byte("\x1b[?25h\r\n")
}

func (stdoutSink) LineEnding() render.LineEnding {
	return render.LinePad
}

// Play runs local playback in the invoking goroutine until the video is
// exhausted or the context is cancelled. Cancellation is a clean stop.
func Play(ctx context.Context, path string, kind render.Kind) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("stdout is not a terminal, use -o to export instead")
	}

	src, err := video.Open(path)
	if err != nil {
		return err
	}
	return playTerminal(ctx, src, src.Fps(), kind)
}

// PlayFrom runs local playback from an already-open source, such as a
// live shared memory feed. The source is closed on return.
func PlayFrom(ctx context.Context, src Source, fps float64, kind render.Kind) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		src.Close()
		return fmt.Errorf("stdout is not a terminal")
	}
	return playTerminal(ctx, src, fps, kind)
}

func playTerminal(ctx context.Context, src Source, fps float64, kind render.Kind) error {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}
	dims := render.Dimensions{Columns: cols, Rows: rows}

	scheduler := NewScheduler(render.New(kind), func() render.Dimensions { return dims }, NewClock(fps))
	err = scheduler.Run(ctx, src, stdoutSink{})
	// restore the cursor even when playback stops early
	os.Stdout.WriteString("\x1b[?25h")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// frameWriter is the export sink: rendered frames appended to a file with
// plain newlines, no pacing.
type frameWriter struct {
	file *os.File
}

func (w *frameWriter) Preamble() []byte { return nil }

func (w *frameWriter) WriteFrame(data []byte) error {
	_, err := w.file.Write(data)
	return err
}

func (w *frameWriter) Complete() []byte { return nil }

func (w *frameWriter) LineEnding() render.LineEnding {
	return render.LineNewline
}

// Export renders the whole video into a file as fast as frames decode.
func Export(ctx context.Context, path string, kind render.Kind, output string) error {
	src, err := video.Open(path)
	if err != nil {
		return err
	}

	file, err := os.Create(output)
	if err != nil {
		src.Close()
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	clock := NewClock(src.Fps())
	clock.Sleep = func(d time.Duration) {}

	dims := render.Dimensions{Columns: 80, Rows: 24}
	scheduler := NewScheduler(render.New(kind), func() render.Dimensions { return dims }, clock)
	return scheduler.Run(ctx, src, &frameWriter{file: file})
}
