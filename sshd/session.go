package sshd

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/ruslanjabari/video-to-ascii/player"
	"github.com/ruslanjabari/video-to-ascii/render"
	"github.com/ruslanjabari/video-to-ascii/video"
)

const (
	fallbackColumns = 80
	fallbackRows    = 24
)

// Session is one remote viewer: its channel, negotiated terminal size and
// an exclusively owned strategy instance and decoder handle.
type Session struct {
	ID       uuid.UUID
	User     string
	Addr     string
	LastSeen time.Time

	cfg     Config
	channel ssh.Channel

	mu   sync.Mutex
	dims render.Dimensions
}

func newSession(channel ssh.Channel, user, addr string, cfg Config) *Session {
	return &Session{
		ID:       uuid.New(),
		User:     user,
		Addr:     addr,
		LastSeen: time.Now(),
		cfg:      cfg,
		channel:  channel,
		dims:     render.Dimensions{Columns: fallbackColumns, Rows: fallbackRows},
	}
}

// Dimensions returns the current negotiated terminal size.
func (s *Session) Dimensions() render.Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// setDimensions stores a renegotiated size; zero values keep the
// 80x24 fallback.
func (s *Session) setDimensions(columns, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if columns > 0 {
		s.dims.Columns = columns
	}
	if rows > 0 {
		s.dims.Rows = rows
	}
	s.LastSeen = time.Now()
}

// handleRequests serves the channel's out-of-band requests. A shell
// request starts streaming; window changes update the size on any frame
// boundary.
func (s *Session) handleRequests(ctx context.Context, requests <-chan *ssh.Request) {
	defer s.channel.Close()

	streaming := false
	for req := range requests {
		switch req.Type {
		case "pty-req":
			term, cols, rows, ok := parsePtyRequest(req.Payload)
			if ok {
				s.setDimensions(cols, rows)
				log.Printf("Session %s: terminal %s, dimensions %dx%d", s.ID, term, cols, rows)
			}
			req.Reply(ok, nil)
		case "window-change":
			cols, rows, ok := parseWindowChange(req.Payload)
			if ok {
				s.setDimensions(cols, rows)
			}
			if req.WantReply {
				req.Reply(ok, nil)
			}
		case "shell":
			req.Reply(true, nil)
			if !streaming {
				streaming = true
				go s.stream(ctx)
			}
		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// stream plays the video to this client with a fresh strategy instance
// and a private decoder. Errors end this session only.
func (s *Session) stream(ctx context.Context) {
	defer s.channel.Close()

	src, err := video.Open(s.cfg.VideoPath)
	if err != nil {
		log.Printf("Session %s (%s): %v", s.ID, s.Addr, err)
		fmt.Fprintf(s.channel, "Error: could not open video file.\r\n")
		return
	}

	sink := &channelSink{
		writer:    newChunkedWriter(s.channel, sendChunkSize, sendChunkDelay),
		videoName: filepath.Base(s.cfg.VideoPath),
		strategy:  s.cfg.Kind.String(),
	}
	scheduler := player.NewScheduler(render.New(s.cfg.Kind), s.Dimensions, player.NewClock(src.Fps()))
	s.logStreamEnd(ctx, scheduler.Run(ctx, src, sink))
}

// logStreamEnd distinguishes a completed playback from a shutdown abort
// and from a genuine per-session failure.
func (s *Session) logStreamEnd(ctx context.Context, err error) {
	switch {
	case err == nil:
		log.Printf("Session %s (%s) finished playback", s.ID, s.Addr)
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		log.Printf("Session %s (%s) stopped by shutdown", s.ID, s.Addr)
	default:
		log.Printf("Session %s (%s) ended: %v", s.ID, s.Addr, err)
	}
}

// channelSink writes rendered frames to the SSH channel through the
// chunked writer. Every frame starts with cursor-home so the client
// repaints in place.
type channelSink struct {
	writer    *chunkedWriter
	videoName string
	strategy  string
	primed    bool
}

func (c *channelSink) Preamble() []byte {
	banner := "Welcome to the ASCII video server!\r\n" +
		"Streaming video: " + c.videoName + "\r\n" +
		"Using strategy: " + c.strategy + "\r\n" +
		"Press Ctrl+C to exit\r\n\n"
	return []byte(banner + "\x1b[2J\x1b[H")
}

func (c *channelSink) WriteFrame(data []byte) error {
	if c.primed {
		if _, err := c.writer.Write([]byte("\x1b[H")); err != nil {
			return err
		}
	}
	c.primed = true
	_, err := c.writer.Write(data)
	return err
}

func (c *channelSink) Complete() []byte {
	return []byte("\r\n\r\nPlayback complete\r\n")
}

func (c *channelSink) LineEnding() render.LineEnding {
	return render.LinePad
}

// parsePtyRequest decodes the RFC 4254 pty-req payload: TERM string, then
// width and height in characters. The TERM length field is client
// controlled, so the bounds check must not wrap.
func parsePtyRequest(payload []byte) (term string, columns, rows int, ok bool) {
	if len(payload) < 12 {
		return "", 0, 0, false
	}
	termLen := binary.BigEndian.Uint32(payload)
	if termLen > uint32(len(payload)-12) {
		return "", 0, 0, false
	}
	n := int(termLen)
	term = string(payload[4 : 4+n])
	columns = int(binary.BigEndian.Uint32(payload[4+n:]))
	rows = int(binary.BigEndian.Uint32(payload[4+n+4:]))
	return term, columns, rows, true
}

// parseWindowChange decodes the window-change payload: width and height
// in characters.
func parseWindowChange(payload []byte) (columns, rows int, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	return int(binary.BigEndian.Uint32(payload)), int(binary.BigEndian.Uint32(payload[4:])), true
}
