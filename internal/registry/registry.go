// Package registry describes the operators a graph can instantiate and
// allocates per-node operator state.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sweeney/signal-graph/internal/logic"
)

// Builtin operator identifiers.
const (
	ToggleID     = "toggle-operator"
	SwitchID     = "switch-operator"
	TimedPulseID = "timed-pulse-operator"
)

// ErrInvalidNode is wrapped by every configuration error returned while
// instantiating a node. It is fatal for graph activation.
var ErrInvalidNode = errors.New("invalid node")

// Wire describes what one node input is connected to: a source or node
// identifier in Ref, or a constant in Value when Ref is empty.
type Wire struct {
	Ref   string
	Value any
}

// Node is a graph node as seen by an operator: its identity, how each input is
// wired, and the raw values currently present on its inputs, in declared order.
type Node struct {
	ID          string
	Operator    string
	Wiring      []Wire
	InputValues []any
}

// Descriptor is the externally visible shape of an operator.
type Descriptor struct {
	ID     string
	Label  string
	Inputs int

	// Validate rejects malformed wiring before the graph is activated.
	// Nil means no constraints beyond arity.
	Validate func(n *Node) error

	// New allocates fresh state for one node instance.
	New func(clock logic.Clock) logic.Operator
}

// Instance binds a node to its own operator state.
type Instance struct {
	Node       *Node
	Descriptor Descriptor
	op         logic.Operator
}

// Transform evaluates the node's current InputValues and returns the new output.
func (i *Instance) Transform() bool {
	return i.op.Transform(i.Node.InputValues)
}

// Value returns the output from the most recent Transform.
func (i *Instance) Value() bool {
	return i.op.Value()
}

// Registry maps operator identifiers to descriptors.
type Registry struct {
	clock       logic.Clock
	descriptors map[string]Descriptor
}

// New creates an empty registry whose instances read time from clock.
func New(clock logic.Clock) *Registry {
	return &Registry{
		clock:       clock,
		descriptors: make(map[string]Descriptor),
	}
}

// NewDefault creates a registry holding the builtin operators.
func NewDefault(clock logic.Clock) *Registry {
	r := New(clock)
	r.mustRegister(Builtins()...)
	return r
}

// mustRegister registers static descriptors and panics on any error.
func (r *Registry) mustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Builtins returns the descriptors of the toggle, switch and timed pulse operators.
func Builtins() []Descriptor {
	return []Descriptor{
		{
			ID:     ToggleID,
			Label:  "Toggle",
			Inputs: 1,
			New:    func(logic.Clock) logic.Operator { return logic.NewToggle() },
		},
		{
			ID:     SwitchID,
			Label:  "On/Off switch",
			Inputs: 2,
			New:    func(logic.Clock) logic.Operator { return logic.NewSwitch() },
		},
		{
			ID:     TimedPulseID,
			Label:  "Timed pulse",
			Inputs: 2,
			New:    func(c logic.Clock) logic.Operator { return logic.NewTimedPulse(c) },
		},
	}
}

// Register adds a descriptor. Identifiers must be unique and non-empty, and the
// descriptor must have a factory.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return errors.New("register operator: empty id")
	}
	if d.New == nil {
		return fmt.Errorf("register operator %q: no factory", d.ID)
	}
	if d.Inputs < 0 {
		return fmt.Errorf("register operator %q: negative input count %d", d.ID, d.Inputs)
	}
	if _, ok := r.descriptors[d.ID]; ok {
		return fmt.Errorf("register operator %q: already registered", d.ID)
	}
	r.descriptors[d.ID] = d
	return nil
}

// Lookup returns the descriptor for id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.descriptors[id]
	return d, ok
}

// Descriptors returns all registered descriptors sorted by identifier.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Instantiate validates the node and allocates fresh operator state for it.
// Constant inputs are copied into InputValues before Validate runs.
func (r *Registry) Instantiate(nodeID, operatorID string, wiring []Wire) (*Instance, error) {
	inputs := len(wiring)
	d, ok := r.descriptors[operatorID]
	if !ok {
		return nil, fmt.Errorf("node %q: unknown operator %q: %w", nodeID, operatorID, ErrInvalidNode)
	}
	if inputs != d.Inputs {
		return nil, fmt.Errorf("node %q: operator %q takes %d inputs, %d wired: %w",
			nodeID, operatorID, d.Inputs, inputs, ErrInvalidNode)
	}

	node := &Node{
		ID:          nodeID,
		Operator:    operatorID,
		Wiring:      append([]Wire(nil), wiring...),
		InputValues: make([]any, inputs),
	}
	for j, w := range wiring {
		if w.Ref == "" {
			node.InputValues[j] = w.Value
		}
	}
	if d.Validate != nil {
		if err := d.Validate(node); err != nil {
			return nil, fmt.Errorf("node %q: %v: %w", nodeID, err, ErrInvalidNode)
		}
	}

	return &Instance{
		Node:       node,
		Descriptor: d,
		op:         d.New(r.clock),
	}, nil
}
