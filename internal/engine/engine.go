// Package engine is a minimal host for operator nodes. It owns the scheduling
// tick: every Step copies source values and the previous tick's node outputs
// into each node's inputs, evaluates every node, and then publishes the new
// outputs together. Evaluation order within a tick therefore never matters.
package engine

import (
	"fmt"
	"time"

	"github.com/sweeney/signal-graph/internal/registry"
)

// Change reports a node whose output changed on a tick.
type Change struct {
	Time     time.Time
	NodeID   string
	Operator string
	Value    bool
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Ticks     uint64
	Counts    map[string]int
}

// binding resolves one node input each tick.
type binding struct {
	source string // source id, or
	node   int    // index into Engine.nodes, or -1
	value  any    // constant when source == "" and node < 0
}

// Engine evaluates a fixed set of operator instances once per tick.
type Engine struct {
	nodes    []*registry.Instance
	bindings [][]binding
	outputs  []bool
	sources  map[string]any

	startTime     time.Time
	lastHeartbeat time.Time
	ticks         uint64
	counts        map[string]int
}

// Build wires a graph against the registry. Every configuration error wraps
// registry.ErrInvalidNode.
func Build(g *Graph, reg *registry.Registry, startTime time.Time) (*Engine, error) {
	e := &Engine{
		sources:       make(map[string]any),
		startTime:     startTime,
		lastHeartbeat: startTime,
		counts:        make(map[string]int),
	}

	for _, s := range g.Sources {
		if _, dup := e.sources[s.ID]; dup {
			return nil, fmt.Errorf("source %q: duplicate id: %w", s.ID, registry.ErrInvalidNode)
		}
		e.sources[s.ID] = s.Initial
	}

	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := index[n.ID]; dup {
			return nil, fmt.Errorf("node %q: duplicate id: %w", n.ID, registry.ErrInvalidNode)
		}
		if _, clash := e.sources[n.ID]; clash {
			return nil, fmt.Errorf("node %q: id already used by a source: %w", n.ID, registry.ErrInvalidNode)
		}
		index[n.ID] = i
	}

	for _, n := range g.Nodes {
		wiring := make([]registry.Wire, len(n.Inputs))
		for j, in := range n.Inputs {
			wiring[j] = registry.Wire{Ref: in.Ref, Value: in.Value}
		}
		inst, err := reg.Instantiate(n.ID, n.Operator, wiring)
		if err != nil {
			return nil, err
		}

		bs := make([]binding, len(n.Inputs))
		for j, in := range n.Inputs {
			switch {
			case in.Ref == "":
				bs[j] = binding{node: -1, value: in.Value}
			case hasKey(e.sources, in.Ref):
				bs[j] = binding{node: -1, source: in.Ref}
			default:
				k, ok := index[in.Ref]
				if !ok {
					return nil, fmt.Errorf("node %q input %d: unknown reference %q: %w",
						n.ID, j, in.Ref, registry.ErrInvalidNode)
				}
				bs[j] = binding{node: k}
			}
		}

		e.nodes = append(e.nodes, inst)
		e.bindings = append(e.bindings, bs)
		e.counts[n.ID] = 0
	}
	e.outputs = make([]bool, len(e.nodes))
	return e, nil
}

func hasKey(m map[string]any, k string) bool {
	_, ok := m[k]
	return ok
}

// HasSource reports whether id names a declared source.
func (e *Engine) HasSource(id string) bool {
	return hasKey(e.sources, id)
}

// SetSource records the latest raw sample for a source. It reports false if
// the source is not declared.
func (e *Engine) SetSource(id string, v any) bool {
	if !hasKey(e.sources, id) {
		return false
	}
	e.sources[id] = v
	return true
}

// Step runs one tick and returns the nodes whose output changed, in declared order.
func (e *Engine) Step(now time.Time) []Change {
	for i, inst := range e.nodes {
		for j, b := range e.bindings[i] {
			switch {
			case b.source != "":
				inst.Node.InputValues[j] = e.sources[b.source]
			case b.node >= 0:
				inst.Node.InputValues[j] = e.outputs[b.node]
			default:
				inst.Node.InputValues[j] = b.value
			}
		}
	}

	var changes []Change
	next := make([]bool, len(e.nodes))
	for i, inst := range e.nodes {
		next[i] = inst.Transform()
		if next[i] != e.outputs[i] {
			changes = append(changes, Change{
				Time:     now,
				NodeID:   inst.Node.ID,
				Operator: inst.Node.Operator,
				Value:    next[i],
			})
			e.counts[inst.Node.ID]++
		}
	}
	e.outputs = next
	e.ticks++
	return changes
}

// Outputs returns the current output of every node.
func (e *Engine) Outputs() map[string]bool {
	out := make(map[string]bool, len(e.nodes))
	for i, inst := range e.nodes {
		out[inst.Node.ID] = e.outputs[i]
	}
	return out
}

// Output returns the current output of one node.
func (e *Engine) Output(id string) (bool, bool) {
	for i, inst := range e.nodes {
		if inst.Node.ID == id {
			return e.outputs[i], true
		}
	}
	return false, false
}

// ChangeCounts returns a copy of the per-node change counters.
func (e *Engine) ChangeCounts() map[string]int {
	out := make(map[string]int, len(e.counts))
	for k, v := range e.counts {
		out[k] = v
	}
	return out
}

// Ticks returns the number of completed Steps.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed, or
// if interval is <= 0 (disabled).
func (e *Engine) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(e.lastHeartbeat) < interval {
		return nil
	}

	e.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(e.startTime),
		Ticks:     e.ticks,
		Counts:    e.ChangeCounts(),
	}
}
