package logic

// Switch is a set/reset latch. A rising edge on inputs[0] sets the output and a
// rising edge on inputs[1] clears it. When both inputs rise on the same tick,
// set wins.
type Switch struct {
	set   edge
	reset edge
	value bool
}

// NewSwitch creates a Switch with a false output and both previous inputs false.
func NewSwitch() *Switch {
	return &Switch{}
}

// Transform reads the set and reset inputs for this tick.
func (s *Switch) Transform(inputs []any) bool {
	// Both histories advance on every tick, whichever branch is taken.
	setRise := s.set.rising(Coerce(inputs[0]))
	resetRise := s.reset.rising(Coerce(inputs[1]))

	if setRise {
		s.value = true
	} else if resetRise {
		s.value = false
	}
	return s.value
}

// Value returns the current output.
func (s *Switch) Value() bool {
	return s.value
}
