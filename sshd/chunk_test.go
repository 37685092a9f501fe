package sshd

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// recordWriter captures the size of every individual write.
type recordWriter struct {
	chunks []int
	buf    bytes.Buffer
	failAt int
}

func (r *recordWriter) Write(p []byte) (int, error) {
	if r.failAt > 0 && len(r.chunks)+1 >= r.failAt {
		return 0, errors.New("broken pipe")
	}
	r.chunks = append(r.chunks, len(p))
	return r.buf.Write(p)
}

func TestChunkedWriterSplitsPayload(t *testing.T) {
	rec := &recordWriter{}
	w := newChunkedWriter(rec, 4096, time.Millisecond)
	delays := 0
	w.sleep = func(time.Duration) { delays++ }

	payload := bytes.Repeat([]byte{'x'}, 10000)
	n, err := w.Write(payload)
	if err != nil {
		t.Fatal("Write failed:", err)
	}
	if n != 10000 {
		t.Errorf("Expected 10000 bytes written, got %d", n)
	}
	expected := []int{4096, 4096, 1808}
	if len(rec.chunks) != len(expected) {
		t.Fatalf("Expected %d chunks, got %d", len(expected), len(rec.chunks))
	}
	for i, want := range expected {
		if rec.chunks[i] != want {
			t.Errorf("Chunk %d: expected %d bytes, got %d", i, want, rec.chunks[i])
		}
	}
	if delays != 2 {
		t.Errorf("Expected 2 inter-chunk delays, got %d", delays)
	}
	if !bytes.Equal(rec.buf.Bytes(), payload) {
		t.Error("Reassembled payload differs from input")
	}
}

func TestChunkedWriterSmallPayloadSingleChunk(t *testing.T) {
	rec := &recordWriter{}
	w := newChunkedWriter(rec, 4096, time.Millisecond)
	w.sleep = func(time.Duration) { t.Error("No delay expected for a single chunk") }

	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal("Write failed:", err)
	}
	if len(rec.chunks) != 1 || rec.chunks[0] != 5 {
		t.Errorf("Expected one 5-byte chunk, got %v", rec.chunks)
	}
}

func TestChunkedWriterPropagatesFailure(t *testing.T) {
	rec := &recordWriter{failAt: 2}
	w := newChunkedWriter(rec, 4096, time.Millisecond)
	w.sleep = func(time.Duration) {}

	n, err := w.Write(bytes.Repeat([]byte{'x'}, 10000))
	if err == nil {
		t.Fatal("Expected the write error to propagate")
	}
	if n != 4096 {
		t.Errorf("Expected 4096 bytes written before the failure, got %d", n)
	}
}
