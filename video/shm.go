package video

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ruslanjabari/video-to-ascii/frame"
)

// shm record layout: width uint16 | height uint16 | dataLen uint32 | BGR
// bytes, all little-endian.
const shmHeaderSize = 8

// SharedMemorySource receives live frames from an external producer that
// writes BGR records into a /dev/shm file. Each write event becomes one
// frame on the Frames channel.
type SharedMemorySource struct {
	shmPath   string
	watcher   *fsnotify.Watcher
	Frames    chan *frame.Frame
	ActualFps float64
}

func NewSharedMemorySource(shmName string) (*SharedMemorySource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	source := &SharedMemorySource{
		shmPath:   filepath.Join("/dev/shm", shmName),
		watcher:   watcher,
		Frames:    make(chan *frame.Frame, 10),
		ActualFps: 30,
	}

	// Watch the shared memory directory
	if err := watcher.Add("/dev/shm"); err != nil {
		watcher.Close()
		return nil, err
	}

	return source, nil
}

func (s *SharedMemorySource) readFrameFromShm() (*frame.Frame, error) {
	if _, err := os.Stat(s.shmPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no valid shared memory file found")
	}

	data, err := os.ReadFile(s.shmPath)
	if err != nil {
		return nil, err
	}

	if len(data) < shmHeaderSize {
		return nil, fmt.Errorf("invalid frame data: too short")
	}
	width := int(binary.LittleEndian.Uint16(data[0:2]))
	height := int(binary.LittleEndian.Uint16(data[2:4]))
	dataLength := int(binary.LittleEndian.Uint32(data[4:8]))
	if dataLength != width*height*3 || len(data) < shmHeaderSize+dataLength {
		return nil, fmt.Errorf("invalid frame data: %dx%d with %d bytes", width, height, dataLength)
	}

	f := frame.New(width, height)
	copy(f.Data, data[shmHeaderSize:shmHeaderSize+dataLength])
	f.Fps = s.ActualFps
	return f, nil
}

// Watch turns shared memory writes into frames until the watcher closes.
func (s *SharedMemorySource) Watch() {
	defer close(s.Frames)
	log.Println("Starting shared memory watcher...")
	var lastFrameData []byte
	startTime := time.Now()
	frameCount := 0
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name != s.shmPath {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}

			f, err := s.readFrameFromShm()
			if err != nil {
				log.Printf("Error reading frame from shared memory: %v", err)
				continue
			}
			// skip the same event triggered twice
			if bytes.Equal(f.Data, lastFrameData) {
				continue
			}
			lastFrameData = f.Data

			frameCount++
			if elapsed := time.Since(startTime); elapsed > time.Second {
				s.ActualFps = float64(frameCount) / elapsed.Seconds()
				frameCount = 0
				startTime = time.Now()
			}
			f.Fps = s.ActualFps
			s.Frames <- f

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// ReadFrame blocks for the next frame, satisfying the player source
// interface. The channel closing ends the stream.
func (s *SharedMemorySource) ReadFrame() (*frame.Frame, error) {
	f, ok := <-s.Frames
	if !ok {
		return nil, ErrSourceExhausted
	}
	return f, nil
}

func (s *SharedMemorySource) Fps() float64 {
	return s.ActualFps
}

func (s *SharedMemorySource) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
