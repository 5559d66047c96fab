package state

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

var codecNames = []string{"json", "proto"}

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func CodecValidator(s string) error {
	if !slices.Contains(codecNames, s) {
		return fmt.Errorf("%s is not a valid codec, expected one of %v", s, codecNames)
	}
	return nil
}

func LinkValidator(cfg *NetworkCfg, link LinkCfg) error {
	if link.A == link.B {
		return fmt.Errorf("link %s, %s must connect two different nodes", link.A, link.B)
	}
	for _, end := range []NodeId{link.A, link.B} {
		n := cfg.TryGetNode(end)
		if n == nil {
			return fmt.Errorf("node %s not defined", end)
		}
		if n.Disabled {
			return fmt.Errorf("node %s is disabled and cannot be linked", end)
		}
	}
	if link.CostAB < 0 || link.CostBA < 0 {
		return fmt.Errorf("link %s, %s has a negative cost", link.A, link.B)
	}
	if link.Loss < 0 || link.Loss >= 1 {
		return fmt.Errorf("link %s, %s loss must be in [0, 1), got %g", link.A, link.B, link.Loss)
	}
	if link.Latency < 0 || link.Jitter < 0 {
		return fmt.Errorf("link %s, %s has a negative latency", link.A, link.B)
	}
	return nil
}

func NetworkConfigValidator(cfg *NetworkCfg) error {
	if cfg.Heartbeat <= 0 {
		return fmt.Errorf("heartbeat must be positive")
	}
	if cfg.Tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}
	err := CodecValidator(cfg.Codec)
	if err != nil {
		return err
	}
	if cfg.LogPath != "" {
		err = PathValidator(cfg.LogPath)
		if err != nil {
			return err
		}
	}

	ids := make([]NodeId, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		err = NameValidator(string(node.Id))
		if err != nil {
			return err
		}
		if slices.Contains(ids, node.Id) {
			return fmt.Errorf("duplicate node id: %s", node.Id)
		}
		if node.Kind == KindUnknown {
			return fmt.Errorf("node %s has no kind", node.Id)
		}
		ids = append(ids, node.Id)
	}

	// each port can only be bound once per node, and each pair of nodes has at most one link
	ports := make([]Pair[NodeId, Port], 0)
	edges := make([]Pair[NodeId, NodeId], 0)
	for _, link := range cfg.Links {
		err = LinkValidator(cfg, link)
		if err != nil {
			return err
		}
		edge := MakeSortedPair(link.A, link.B)
		if slices.Contains(edges, edge) {
			return fmt.Errorf("duplicate link found: %s, %s", edge.V1, edge.V2)
		}
		edges = append(edges, edge)
		for _, p := range []Pair[NodeId, Port]{{link.A, link.APort}, {link.B, link.BPort}} {
			if slices.Contains(ports, p) {
				return fmt.Errorf("port %d is used more than once on node %s", p.V2, p.V1)
			}
			ports = append(ports, p)
		}
		if cfg.IsHost(link.A) && cfg.IsHost(link.B) {
			return fmt.Errorf("link %s, %s connects two hosts", link.A, link.B)
		}
	}

	for _, ev := range cfg.Events {
		if ev.Action != "up" && ev.Action != "down" {
			return fmt.Errorf("event at %s has invalid action %q, expected up or down", ev.At, ev.Action)
		}
		if cfg.FindLink(ev.A, ev.B) == -1 {
			return fmt.Errorf("event at %s references unknown link %s, %s", ev.At, ev.A, ev.B)
		}
		if ev.At < 0 {
			return fmt.Errorf("event at %s must not be negative", ev.At)
		}
	}

	for _, probe := range cfg.Probes {
		if !cfg.IsHost(probe.From) {
			return fmt.Errorf("probe source %s must be a host", probe.From)
		}
		if probe.To == "" {
			return fmt.Errorf("probe from %s has no destination", probe.From)
		}
	}
	return nil
}
