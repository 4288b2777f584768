package pattern

import (
	"fmt"
	"time"
)

// DefaultTick is the replay tick length.
const DefaultTick = 10 * time.Millisecond

// Loader returns the pattern to replay. It is called before the first tick and
// again after the last pair has been emitted.
type Loader func() ([]Pair, error)

// FileLoader re-reads path on every call.
func FileLoader(path string) Loader {
	return func() ([]Pair, error) {
		return ParseFile(path)
	}
}

// Replayer emits the current pattern value once per tick.
// Not safe for concurrent use.
type Replayer struct {
	load  Loader
	tick  time.Duration
	pairs []Pair
	index int // -1 means reload before the next emit
	ticks int
}

// NewReplayer creates a Replayer. A tick <= 0 means DefaultTick.
func NewReplayer(load Loader, tick time.Duration) *Replayer {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Replayer{load: load, tick: tick, index: -1}
}

// Next returns the value to emit for this tick and advances. Each pair is
// emitted until tick*ticks reaches its duration, so every pair is emitted for
// at least one tick. If reloading fails, the error is returned and the reload
// is retried on the next call.
func (r *Replayer) Next() (int64, error) {
	if r.index < 0 {
		pairs, err := r.load()
		if err != nil {
			return 0, fmt.Errorf("load pattern: %w", err)
		}
		if len(pairs) == 0 {
			pairs = []Pair{DefaultPair}
		}
		r.pairs = pairs
		r.index = 0
		r.ticks = 0
	}

	p := r.pairs[r.index]
	r.ticks++
	if time.Duration(r.ticks)*r.tick >= p.Duration {
		r.ticks = 0
		r.index++
		if r.index >= len(r.pairs) {
			r.index = -1
		}
	}
	return p.Value, nil
}

// Position returns the index of the pair the next call will emit from, or -1
// when a reload is due.
func (r *Replayer) Position() int {
	return r.index
}
