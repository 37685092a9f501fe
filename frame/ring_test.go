package frame

import "testing"

func TestRingInitialState(t *testing.T) {
	ring := NewRing(3)
	if ring.IsFull() {
		t.Error("Ring should not be full")
	}
	if ring.Last() != nil {
		t.Error("Empty ring should have no last frame")
	}
}

func TestRingIsFull(t *testing.T) {
	ring := NewRing(3)
	ring.Add(New(1, 1))
	ring.Add(New(1, 1))
	ring.Add(New(1, 1))
	if !ring.IsFull() {
		t.Error("Ring should be full")
	}
}

func TestRingSize(t *testing.T) {
	ring := NewRing(3)
	ring.Add(New(1, 1))
	ring.Add(New(1, 1))
	if ring.Size() != 2 {
		t.Errorf("Expected size 2, got %d", ring.Size())
	}
	ring.Add(New(1, 1))
	ring.Add(New(1, 1))
	if ring.Size() != 3 {
		t.Errorf("Expected size 3, got %d", ring.Size())
	}
}

func TestRingClear(t *testing.T) {
	ring := NewRing(3)
	ring.Add(New(1, 1))
	ring.Add(New(1, 1))
	ring.Clear()
	if ring.Size() != 0 {
		t.Errorf("Expected size 0 after clear, got %d", ring.Size())
	}
	ring.Add(New(1, 1))
	if ring.IsFull() {
		t.Error("Ring should not be full")
	}
}

func TestRingKeepsNewestFrames(t *testing.T) {
	ring := NewRing(2)
	first := New(1, 1)
	second := New(2, 2)
	third := New(3, 3)
	ring.Add(first)
	ring.Add(second)
	ring.Add(third)

	all := ring.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(all))
	}
	if all[0] != second || all[1] != third {
		t.Error("Expected oldest-first order with the first frame evicted")
	}
	if ring.Last() != third {
		t.Error("Expected Last to return the newest frame")
	}
}
