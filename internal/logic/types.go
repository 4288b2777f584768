// Package logic contains the stateful signal operators evaluated by the graph engine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via a Clock.
package logic

import "time"

// Clock returns the current time. Production code passes time.Now; tests pass a
// controllable clock so pulse deadlines can be stepped deterministically.
type Clock func() time.Time

// Operator is a stateful transform from per-tick raw inputs to a boolean output.
// An Operator is not safe for concurrent use: the host calls Transform once per
// tick, from one goroutine, for the lifetime of the node that owns it.
type Operator interface {
	// Transform consumes one tick of raw input values and returns the new output.
	// The host guarantees len(inputs) equals the operator's declared arity.
	Transform(inputs []any) bool

	// Value returns the output produced by the most recent Transform.
	Value() bool
}

// edge remembers the previous coerced value of one input.
type edge struct {
	last bool
}

// rising records v and reports whether it is a false->true transition.
func (e *edge) rising(v bool) bool {
	r := v && !e.last
	e.last = v
	return r
}
