package engine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Graph is the on-disk description of sources and operator nodes.
type Graph struct {
	Sources []SourceConfig `yaml:"sources"`
	Nodes   []NodeConfig   `yaml:"nodes"`
}

// SourceConfig declares an external input. A source with a GPIO line is read
// from hardware every tick; otherwise it is fed by multicast datagrams whose
// source identifier matches ID.
type SourceConfig struct {
	ID        string `yaml:"id"`
	GPIO      *int   `yaml:"gpio,omitempty"`
	ActiveLow bool   `yaml:"active_low,omitempty"`
	// Initial is the raw value held until the first sample arrives.
	Initial any `yaml:"initial,omitempty"`
}

// NodeConfig declares one operator node.
type NodeConfig struct {
	ID       string        `yaml:"id"`
	Operator string        `yaml:"operator"`
	Inputs   []InputConfig `yaml:"inputs"`
}

// InputConfig is either a reference to a source or node, or a constant value.
type InputConfig struct {
	Ref   string `yaml:"ref,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// LoadGraph reads a YAML graph file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return ParseGraph(data)
}

// ParseGraph parses a YAML graph description.
func ParseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse graph yaml: %w", err)
	}
	for i, n := range g.Nodes {
		for j, in := range n.Inputs {
			if in.Ref != "" && in.Value != nil {
				return nil, fmt.Errorf("node %q input %d: both ref and value set", n.ID, j)
			}
			if in.Ref == "" && in.Value == nil {
				return nil, fmt.Errorf("node %q input %d: neither ref nor value set", n.ID, j)
			}
		}
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: empty id", i)
		}
	}
	for i, s := range g.Sources {
		if s.ID == "" {
			return nil, fmt.Errorf("source %d: empty id", i)
		}
	}
	if len(g.Nodes) == 0 {
		return nil, errors.New("graph has no nodes")
	}
	return &g, nil
}

// GPIOSources returns the sources backed by GPIO lines, in declared order.
func (g *Graph) GPIOSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range g.Sources {
		if s.GPIO != nil {
			out = append(out, s)
		}
	}
	return out
}
