package logic

import (
	"math"
	"time"
)

// maxPeriodMs keeps period*time.Millisecond within time.Duration.
const maxPeriodMs = math.MaxInt64 / int64(time.Millisecond)

// TimedPulse is a one-shot timer. A rising edge on the signal input, while the
// period input is positive, drives the output true until period milliseconds
// have elapsed on the clock.
//
// The deadline is only checked when Transform runs, so the output falls on the
// first tick at or after the deadline: the observed pulse is longer than the
// period by less than one tick interval. A started pulse always runs to its
// deadline; later changes to the period input do not move it. A new rising
// edge during a pulse restarts it from that tick.
type TimedPulse struct {
	now      Clock
	signal   edge
	period   time.Duration
	value    bool
	running  bool
	deadline time.Time
}

// NewTimedPulse creates a disabled TimedPulse reading time from now.
// A nil clock means time.Now.
func NewTimedPulse(now Clock) *TimedPulse {
	if now == nil {
		now = time.Now
	}
	return &TimedPulse{now: now}
}

// Transform reads the signal (inputs[0]) and period in milliseconds (inputs[1])
// for this tick. A non-numeric or negative period disables pulse starts.
func (p *TimedPulse) Transform(inputs []any) bool {
	rise := p.signal.rising(Coerce(inputs[0]))
	p.period = parsePeriod(inputs[1])

	if rise && p.period > 0 {
		p.deadline = p.now().Add(p.period)
		p.running = true
		p.value = true
	} else if p.running && !p.now().Before(p.deadline) {
		p.value = false
		p.running = false
		p.deadline = time.Time{}
	}
	return p.value
}

// Value returns the current output.
func (p *TimedPulse) Value() bool {
	return p.value
}

// Period returns the period read on the most recent tick.
func (p *TimedPulse) Period() time.Duration {
	return p.period
}

// Deadline returns the end time of the running pulse, if any.
func (p *TimedPulse) Deadline() (time.Time, bool) {
	return p.deadline, p.running
}

func parsePeriod(raw any) time.Duration {
	ms, ok := ParseInteger(raw)
	if !ok || ms <= 0 {
		return 0
	}
	if ms > maxPeriodMs {
		ms = maxPeriodMs
	}
	return time.Duration(ms) * time.Millisecond
}
