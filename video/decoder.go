package video

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ruslanjabari/video-to-ascii/frame"
)

// ErrSourceExhausted marks the normal end of a video source.
var ErrSourceExhausted = errors.New("video source exhausted")

// Decoder reads raw BGR frames from an ffmpeg pipe. Each Open call gets
// its own ffmpeg process and read cursor, so concurrent sessions never
// share decode state.
type Decoder struct {
	path   string
	width  int
	height int
	fps    float64
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Open probes the video and starts an ffmpeg process emitting rawvideo
// bgr24 on stdout.
func Open(path string) (*Decoder, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file does not exist: %s", path)
	}

	width, height, fps, err := probe(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	return &Decoder{
		path:   path,
		width:  width,
		height: height,
		fps:    fps,
		cmd:    cmd,
		stdout: stdout,
	}, nil
}

func probe(path string) (width, height int, fps float64, err error) {
	out, err := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate",
		"-of", "csv=p=0",
		path).Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("probing %s: %w", path, err)
	}
	return parseProbe(string(out))
}

func parseProbe(out string) (width, height int, fps float64, err error) {
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected ffprobe output: %q", out)
	}
	width, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid width %q: %w", fields[0], err)
	}
	height, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid height %q: %w", fields[1], err)
	}
	fps, err = parseFrameRate(fields[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return width, height, fps, nil
}

// parseFrameRate handles rational rates like "30000/1001" and plain ones
// like "25".
func parseFrameRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, fmt.Errorf("invalid frame rate %q", s)
		}
		return n / d, nil
	}
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	return rate, nil
}

func (d *Decoder) Fps() float64 {
	return d.fps
}

func (d *Decoder) Size() (width, height int) {
	return d.width, d.height
}

// ReadFrame returns the next decoded frame, or ErrSourceExhausted once
// the stream ends.
func (d *Decoder) ReadFrame() (*frame.Frame, error) {
	f := frame.New(d.width, d.height)
	f.Fps = d.fps
	if _, err := io.ReadFull(d.stdout, f.Data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrSourceExhausted
		}
		return nil, fmt.Errorf("reading from ffmpeg: %w", err)
	}
	return f, nil
}

// Close releases the decoder and its ffmpeg process.
func (d *Decoder) Close() error {
	d.stdout.Close()
	if d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	d.cmd.Wait()
	return nil
}
