package sshd

import (
	"io"
	"time"
)

const (
	sendChunkSize  = 4096
	sendChunkDelay = time.Millisecond
)

// chunkedWriter splits payloads into bounded chunks with a small delay
// between them, so slow transports are not overwhelmed by full frames.
type chunkedWriter struct {
	w     io.Writer
	size  int
	delay time.Duration
	sleep func(time.Duration)
}

func newChunkedWriter(w io.Writer, size int, delay time.Duration) *chunkedWriter {
	return &chunkedWriter{w: w, size: size, delay: delay, sleep: time.Sleep}
}

func (c *chunkedWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		end := written + c.size
		if end > len(p) {
			end = len(p)
		}
		n, err := c.w.Write(p[written:end])
		written += n
		if err != nil {
			return written, err
		}
		if written < len(p) {
			c.sleep(c.delay)
		}
	}
	return written, nil
}
