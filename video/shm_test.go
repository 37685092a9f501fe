package video

import (
	"encoding/binary"
	"os"
	"testing"
	"time"
)

func writeShmFrame(t *testing.T, name string, width, height int, bgr []byte) {
	t.Helper()
	record := make([]byte, shmHeaderSize+len(bgr))
	binary.LittleEndian.PutUint16(record[0:2], uint16(width))
	binary.LittleEndian.PutUint16(record[2:4], uint16(height))
	binary.LittleEndian.PutUint32(record[4:8], uint32(len(bgr)))
	copy(record[shmHeaderSize:], bgr)
	file, err := os.Create("/dev/shm/" + name)
	if err != nil {
		t.Fatal("Failed to create shared memory file:", err)
	}
	defer file.Close()
	if _, err := file.Write(record); err != nil {
		t.Fatal("Failed to write shared memory file:", err)
	}
	file.Sync()
}

func TestNoSharedMemoryFileToRead(t *testing.T) {
	source, err := NewSharedMemorySource("non_existent_shm")
	if err != nil {
		t.Fatal("Failed to create SharedMemorySource:", err)
	}
	defer source.Close()
	_, err = source.readFrameFromShm()
	if err == nil {
		t.Fatal("Expected an error when reading from non-existent shared memory file, got nil")
	}
	if err.Error() != "no valid shared memory file found" {
		t.Errorf("Expected specific error message, got: %v", err)
	}
}

func TestReadFrameFromShm(t *testing.T) {
	bgr := make([]byte, 2*2*3)
	for i := range bgr {
		bgr[i] = byte(i * 10)
	}
	writeShmFrame(t, "test_shm_read", 2, 2, bgr)
	defer os.Remove("/dev/shm/test_shm_read")

	source, err := NewSharedMemorySource("test_shm_read")
	if err != nil {
		t.Fatal("Failed to create SharedMemorySource:", err)
	}
	defer source.Close()

	f, err := source.readFrameFromShm()
	if err != nil {
		t.Fatal("Failed to read frame from shared memory:", err)
	}
	if f.Width != 2 || f.Height != 2 {
		t.Errorf("Expected a 2x2 frame, got %dx%d", f.Width, f.Height)
	}
	for i, v := range bgr {
		if f.Data[i] != v {
			t.Fatalf("Byte %d: expected %d, got %d", i, v, f.Data[i])
		}
	}
}

func TestReadFrameFromShmRejectsCorruptRecords(t *testing.T) {
	source, err := NewSharedMemorySource("test_shm_corrupt")
	if err != nil {
		t.Fatal("Failed to create SharedMemorySource:", err)
	}
	defer source.Close()
	defer os.Remove("/dev/shm/test_shm_corrupt")

	// Too short to carry a header.
	if err := os.WriteFile("/dev/shm/test_shm_corrupt", []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := source.readFrameFromShm(); err == nil {
		t.Error("Expected a truncated record to be rejected")
	}

	// Declared length does not match the dimensions.
	writeShmFrame(t, "test_shm_corrupt", 4, 4, make([]byte, 2*2*3))
	if _, err := source.readFrameFromShm(); err == nil {
		t.Error("Expected a mismatched data length to be rejected")
	}
}

func TestWatchSharedMemoryReceivedFrame(t *testing.T) {
	defer os.Remove("/dev/shm/test_shm_watch")

	source, err := NewSharedMemorySource("test_shm_watch")
	if err != nil {
		t.Fatal("Failed to create SharedMemorySource:", err)
	}
	defer source.Close()
	go source.Watch()
	time.Sleep(10 * time.Millisecond)

	bgr := make([]byte, 3*2*3)
	for i := range bgr {
		bgr[i] = byte(i)
	}
	writeShmFrame(t, "test_shm_watch", 3, 2, bgr)

	timeout := time.After(2 * time.Second)
	select {
	case f := <-source.Frames:
		if f.Width != 3 || f.Height != 2 {
			t.Errorf("Expected a 3x2 frame, got %dx%d", f.Width, f.Height)
		}
	case <-timeout:
		t.Fatal("Timeout waiting for frame")
	}
}
