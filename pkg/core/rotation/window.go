package rotation

import "slices"

// DefaultWindowSize is the number of individual names remembered (two weeks of pairs)
const DefaultWindowSize = 4

// RecencyWindow is a fixed-capacity FIFO of the most recently assigned names
type RecencyWindow struct {
	capacity int
	names    []string
}

// NewRecencyWindow creates an empty window. A capacity of 0 disables the window.
func NewRecencyWindow(capacity int) *RecencyWindow {
	if capacity < 0 {
		capacity = 0
	}
	return &RecencyWindow{
		capacity: capacity,
		names:    make([]string, 0, capacity),
	}
}

// Push appends names, evicting the oldest entries once capacity is exceeded
func (w *RecencyWindow) Push(names ...string) {
	if w.capacity == 0 {
		return
	}
	w.names = append(w.names, names...)
	if overflow := len(w.names) - w.capacity; overflow > 0 {
		w.names = slices.Clone(w.names[overflow:])
	}
}

// Contains reports whether name is in the window
func (w *RecencyWindow) Contains(name string) bool {
	return slices.Contains(w.names, name)
}

// Len returns the number of names currently held
func (w *RecencyWindow) Len() int {
	return len(w.names)
}

// Capacity returns the maximum number of names held
func (w *RecencyWindow) Capacity() int {
	return w.capacity
}

// Names returns the window contents, oldest first
func (w *RecencyWindow) Names() []string {
	return slices.Clone(w.names)
}
