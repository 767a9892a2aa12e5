package battle

// Floor is the run's dungeon depth. It starts at 1, rises by one per
// victory, and resets when a new run begins.
//
// Floor is not safe for concurrent use.
type Floor struct {
	current uint8
}

// NewFloor returns a Floor on level 1.
func NewFloor() *Floor {
	return &Floor{current: 1}
}

// Current returns the current floor.
func (f *Floor) Current() uint8 {
	return f.current
}

// Set moves to floor n.
//
// Postcondition: Current() is n clamped into [1, 255].
func (f *Floor) Set(n int) {
	switch {
	case n < 1:
		f.current = 1
	case n > 255:
		f.current = 255
	default:
		f.current = uint8(n)
	}
}

// Increment descends one floor, saturating at 255.
func (f *Floor) Increment() {
	if f.current < 255 {
		f.current++
	}
}

// Reset returns to floor 1.
func (f *Floor) Reset() {
	f.current = 1
}
