package frame

// Ring holds a fixed number of frames, replacing the oldest once full.
// Render strategies use it as bounded temporal history.
type Ring struct {
	frames   []*Frame
	size     int
	capacity int
	head     int
}

// NewRing creates a new frame ring with the given capacity.
func NewRing(capacity int) *Ring {
	return &Ring{
		frames:   make([]*Frame, capacity),
		capacity: capacity,
	}
}

// Add appends a new frame, replacing the oldest if at capacity.
func (r *Ring) Add(f *Frame) {
	r.frames[r.head] = f
	r.head = (r.head + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Last returns the most recently added frame, or nil when empty.
func (r *Ring) Last() *Frame {
	if r.size == 0 {
		return nil
	}
	return r.frames[(r.head+r.capacity-1)%r.capacity]
}

// All returns the stored frames in insertion order (oldest first).
func (r *Ring) All() []*Frame {
	if r.size == 0 {
		return nil
	}
	result := make([]*Frame, 0, r.size)
	start := 0
	if r.size == r.capacity {
		start = r.head
	}
	for i := 0; i < r.size; i++ {
		result = append(result, r.frames[(start+i)%r.capacity])
	}
	return result
}

// Size returns the current number of stored frames.
func (r *Ring) Size() int {
	return r.size
}

func (r *Ring) IsFull() bool {
	return r.size == r.capacity
}

func (r *Ring) Clear() {
	for i := range r.frames {
		r.frames[i] = nil
	}
	r.size = 0
	r.head = 0
}
