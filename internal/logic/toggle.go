package logic

// Toggle is a one-input flip-flop. Its output flips on every rising edge of the
// input and never on the trailing edge.
type Toggle struct {
	in    edge
	value bool
}

// NewToggle creates a Toggle with a false output and a false previous input.
func NewToggle() *Toggle {
	return &Toggle{}
}

// Transform reads inputs[0] for this tick.
func (t *Toggle) Transform(inputs []any) bool {
	if t.in.rising(Coerce(inputs[0])) {
		t.value = !t.value
	}
	return t.value
}

// Value returns the current output.
func (t *Toggle) Value() bool {
	return t.value
}
