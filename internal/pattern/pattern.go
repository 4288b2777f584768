// Package pattern replays a (value, duration) pattern file one tick at a time,
// the way the file-pattern test device simulates a sensor.
package pattern

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sweeney/signal-graph/internal/logic"
)

// DefaultPair replaces any line that does not hold two integers.
var DefaultPair = Pair{Value: 0, Duration: 100 * time.Millisecond}

// Pair holds Value for Duration.
type Pair struct {
	Value    int64
	Duration time.Duration
}

// Parse reads pattern lines of the form "<value> <durationMs>". A line with
// fewer than two leading integers becomes DefaultPair, including the empty
// line after a trailing newline. An empty input yields one DefaultPair.
func Parse(contents string) []Pair {
	lines := strings.Split(contents, "\n")

	pairs := make([]Pair, 0, len(lines))
	for _, line := range lines {
		pairs = append(pairs, parseLine(line))
	}
	return pairs
}

func parseLine(line string) Pair {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return DefaultPair
	}
	v, ok := logic.ParseInteger(fields[0])
	if !ok {
		return DefaultPair
	}
	ms, ok := logic.ParseInteger(fields[1])
	if !ok {
		return DefaultPair
	}
	return Pair{Value: v, Duration: time.Duration(ms) * time.Millisecond}
}

// ParseFile reads and parses a pattern file.
func ParseFile(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern: %w", err)
	}
	return Parse(string(data)), nil
}
