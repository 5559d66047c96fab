package state

import (
	"fmt"
	"net/netip"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

type NodeCfg struct {
	Id       NodeId
	Kind     NodeKind       `yaml:"kind,omitempty"`     // if empty, the naming convention decides
	Prefixes []netip.Prefix `yaml:",omitempty"`         // addresses that resolve to this node, used by probes
	Disabled bool           `yaml:"disabled,omitempty"` // the node is declared but never started
}

// LinkCfg represents a point to point link between two nodes
type LinkCfg struct {
	A       NodeId
	B       NodeId
	APort   Port          `yaml:"a_port"`
	BPort   Port          `yaml:"b_port"`
	CostAB  float64       `yaml:"cost_ab,omitempty"` // routing cost travelling a -> b
	CostBA  float64       `yaml:"cost_ba,omitempty"` // routing cost travelling b -> a, defaults to cost_ab
	Latency time.Duration `yaml:"latency,omitempty"` // simulated delivery delay
	Jitter  time.Duration `yaml:"jitter,omitempty"`
	Loss    float64       `yaml:"loss,omitempty"` // probability in [0, 1) that a packet is lost
	Down    bool          `yaml:"down,omitempty"` // the link starts down and waits for an up event
}

type EventCfg struct {
	At     time.Duration
	Action string // up or down
	A      NodeId
	B      NodeId
}

type ProbeCfg struct {
	From NodeId
	To   string // a node id, or an address contained in one of the node prefixes
	At   time.Duration
}

// NetworkCfg describes a whole simulated network: its nodes, the links between them and a
// schedule of link changes and probes.
type NetworkCfg struct {
	Heartbeat          time.Duration `yaml:"heartbeat,omitempty"`
	Tick               time.Duration `yaml:"tick,omitempty"`
	Codec              string        `yaml:"codec,omitempty"`                // json or proto
	ExcludeInboundPort bool          `yaml:"exclude_inbound_port,omitempty"` // do not reflect floods back where they came from
	LogPath            string        `yaml:"log_path,omitempty"`             // if not empty, logs are also written to this file
	Nodes              []NodeCfg
	Graph              []string `yaml:",omitempty"` // links in ParseGraph syntax, added to Links
	Links              []LinkCfg
	Events             []EventCfg `yaml:",omitempty"`
	Probes             []ProbeCfg `yaml:",omitempty"`
}

func ParseNetworkConfig(data []byte) (*NetworkCfg, error) {
	cfg := &NetworkCfg{}
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	err = ExpandNetworkConfig(cfg)
	if err != nil {
		return nil, err
	}
	err = NetworkConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func ReadNetworkConfig(path string) (*NetworkCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseNetworkConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ExpandNetworkConfig fills in defaults, resolves node kinds using the naming convention, and adds
// the links described by the graph
func ExpandNetworkConfig(cfg *NetworkCfg) error {
	if cfg.Heartbeat == 0 {
		cfg.Heartbeat = HeartbeatInterval
	}
	if cfg.Tick == 0 {
		cfg.Tick = TickInterval
	}
	if cfg.Codec == "" {
		cfg.Codec = DefaultCodec
	}
	for idx, node := range cfg.Nodes {
		if node.Kind == KindUnknown {
			node.Kind = ConventionClassifier(node.Id)
		}
		cfg.Nodes[idx] = node
	}
	if err := expandGraph(cfg); err != nil {
		return err
	}
	for idx, link := range cfg.Links {
		if link.CostAB == 0 {
			link.CostAB = DefaultLinkCost
		}
		if link.CostBA == 0 {
			link.CostBA = link.CostAB
		}
		cfg.Links[idx] = link
	}
	return nil
}

func (c *NetworkCfg) TryGetNode(id NodeId) *NodeCfg {
	idx := slices.IndexFunc(c.Nodes, func(cfg NodeCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		return nil
	}
	return &c.Nodes[idx]
}

func (c *NetworkCfg) GetNode(id NodeId) NodeCfg {
	val := c.TryGetNode(id)
	if val == nil {
		panic("node " + string(id) + " not found")
	}
	return *val
}

func (c *NetworkCfg) IsRouter(id NodeId) bool {
	n := c.TryGetNode(id)
	return n != nil && n.Kind == KindRouter
}

func (c *NetworkCfg) IsHost(id NodeId) bool {
	n := c.TryGetNode(id)
	return n != nil && n.Kind == KindHost
}

// Classifier returns the configured kinds, falling back to the naming convention for ids that
// are not part of this network
func (c *NetworkCfg) Classifier() Classifier {
	kinds := make(map[NodeId]NodeKind)
	for _, n := range c.Nodes {
		kinds[n.Id] = n.Kind
	}
	return StaticClassifier(kinds)
}

// FindLink returns the index of the link between a and b, in either direction
func (c *NetworkCfg) FindLink(a, b NodeId) int {
	return slices.IndexFunc(c.Links, func(cfg LinkCfg) bool {
		return cfg.A == a && cfg.B == b || cfg.A == b && cfg.B == a
	})
}

// Link returns the link as seen by the node on end a
func (l LinkCfg) Link(cfg *NetworkCfg) Link {
	return Link{
		Port:   l.APort,
		E1:     Node{Id: l.A, Kind: cfg.GetNode(l.A).Kind},
		E2:     Node{Id: l.B, Kind: cfg.GetNode(l.B).Kind},
		Cost12: l.CostAB,
		Cost21: l.CostBA,
	}
}

// Reversed returns the link as seen by the node on end b
func (l LinkCfg) Reversed() LinkCfg {
	return LinkCfg{
		A:       l.B,
		B:       l.A,
		APort:   l.BPort,
		BPort:   l.APort,
		CostAB:  l.CostBA,
		CostBA:  l.CostAB,
		Latency: l.Latency,
		Jitter:  l.Jitter,
		Loss:    l.Loss,
		Down:    l.Down,
	}
}

func (c *NetworkCfg) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
