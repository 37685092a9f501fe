package sshd

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ruslanjabari/video-to-ascii/render"
)

func ptyPayload(term string, columns, rows uint32) []byte {
	payload := make([]byte, 4+len(term)+16)
	binary.BigEndian.PutUint32(payload, uint32(len(term)))
	copy(payload[4:], term)
	binary.BigEndian.PutUint32(payload[4+len(term):], columns)
	binary.BigEndian.PutUint32(payload[4+len(term)+4:], rows)
	return payload
}

func TestParsePtyRequest(t *testing.T) {
	term, cols, rows, ok := parsePtyRequest(ptyPayload("xterm-256color", 120, 40))
	if !ok {
		t.Fatal("Expected the payload to parse")
	}
	if term != "xterm-256color" {
		t.Errorf("Expected term xterm-256color, got %q", term)
	}
	if cols != 120 || rows != 40 {
		t.Errorf("Expected 120x40, got %dx%d", cols, rows)
	}
}

func TestParsePtyRequestTruncated(t *testing.T) {
	full := ptyPayload("vt100", 80, 24)
	for _, payload := range [][]byte{nil, {0, 0}, full[:4+5+6]} {
		if _, _, _, ok := parsePtyRequest(payload); ok {
			t.Errorf("Expected truncated payload of %d bytes to be rejected", len(payload))
		}
	}
}

func TestParsePtyRequestRejectsHugeTermLength(t *testing.T) {
	// a length field larger than the payload must not wrap the bounds
	// check into a slice panic
	payload := make([]byte, 16)
	binary.BigEndian.PutUint32(payload, 0xFFFFFFFF)
	if _, _, _, ok := parsePtyRequest(payload); ok {
		t.Error("Expected an oversized TERM length to be rejected")
	}

	binary.BigEndian.PutUint32(payload, uint32(len(payload)-11))
	if _, _, _, ok := parsePtyRequest(payload); ok {
		t.Error("Expected a TERM length overlapping the size fields to be rejected")
	}
}

func TestParseWindowChange(t *testing.T) {
	payload := make([]byte, 16)
	binary.BigEndian.PutUint32(payload, 132)
	binary.BigEndian.PutUint32(payload[4:], 43)
	cols, rows, ok := parseWindowChange(payload)
	if !ok || cols != 132 || rows != 43 {
		t.Errorf("Expected 132x43, got %dx%d ok=%v", cols, rows, ok)
	}
	if _, _, ok := parseWindowChange(payload[:7]); ok {
		t.Error("Expected a short payload to be rejected")
	}
}

func TestSessionDimensionsFallback(t *testing.T) {
	s := newSession(nil, "viewer", "127.0.0.1:2222", Config{})
	if dims := s.Dimensions(); dims != (render.Dimensions{Columns: 80, Rows: 24}) {
		t.Errorf("Expected the 80x24 fallback, got %+v", dims)
	}

	s.setDimensions(120, 40)
	if dims := s.Dimensions(); dims.Columns != 120 || dims.Rows != 40 {
		t.Errorf("Expected 120x40 after renegotiation, got %+v", dims)
	}

	// A zero value keeps the previous size for that axis.
	s.setDimensions(0, 50)
	if dims := s.Dimensions(); dims.Columns != 120 || dims.Rows != 50 {
		t.Errorf("Expected 120x50 after partial update, got %+v", dims)
	}
	s.setDimensions(0, 0)
	if dims := s.Dimensions(); dims.Columns != 120 || dims.Rows != 50 {
		t.Errorf("Expected zero update to keep 120x50, got %+v", dims)
	}
}

func TestLogStreamEndDistinguishesShutdown(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	s := newSession(nil, "viewer", "127.0.0.1:2222", Config{})

	s.logStreamEnd(context.Background(), nil)
	if !strings.Contains(buf.String(), "finished playback") {
		t.Errorf("Expected a completion log, got %q", buf.String())
	}

	buf.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.logStreamEnd(ctx, context.Canceled)
	if !strings.Contains(buf.String(), "stopped by shutdown") {
		t.Errorf("Expected a shutdown log, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "finished playback") {
		t.Error("A cancelled session must not be logged as finished")
	}

	buf.Reset()
	s.logStreamEnd(context.Background(), errors.New("broken pipe"))
	if !strings.Contains(buf.String(), "ended: broken pipe") {
		t.Errorf("Expected a failure log, got %q", buf.String())
	}
}

func TestChannelSinkHomesCursorAfterFirstFrame(t *testing.T) {
	rec := &recordWriter{}
	sink := &channelSink{
		writer:    newChunkedWriter(rec, 4096, 0),
		videoName: "clip.mp4",
		strategy:  "ascii-color",
	}
	sink.writer.sleep = func(time.Duration) {}

	if err := sink.WriteFrame([]byte("frame-one")); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteFrame([]byte("frame-two")); err != nil {
		t.Fatal(err)
	}
	want := "frame-one\x1b[Hframe-two"
	if got := rec.buf.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if sink.LineEnding() != render.LinePad {
		t.Error("Expected padded line endings for remote terminals")
	}
}
