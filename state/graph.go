package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

/*
ParseGraph expands a compact description of the links of a network into the pairs of nodes it connects.

	core = A, B, C
	edge = h, g
	core, core   // every router is connected to every other router
	core, edge   // every router is connected to every host, hosts are not connected to each other
	A, x         // A and x are connected

A line with '=' defines a group, which may reference nodes and other groups. Every other line is a list
of nodes and groups that are all interconnected. Members of a group are only connected to each other
when the group appears twice on the same line.
*/
func ParseGraph(graph []string, nodes []NodeId) ([]Pair[NodeId, NodeId], error) {
	groups := make(map[string][]string)
	lines := make([][]string, 0)

	isNode := func(s string) bool {
		return slices.Contains(nodes, NodeId(s))
	}

	// group names are needed before any line can be resolved
	for _, line := range graph {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "=") {
			continue
		}
		spl := strings.Split(line, "=")
		if len(spl) != 2 {
			return nil, fmt.Errorf("invalid graph: %s. group definition must contain one '='", line)
		}
		name := strings.TrimSpace(spl[0])
		if isNode(name) {
			return nil, fmt.Errorf("group name must not be a node name: %s", name)
		}
		if _, ok := groups[name]; ok {
			return nil, fmt.Errorf("duplicate group name: %s", name)
		}
		groups[name] = nil
	}

	valid := func(s string) bool {
		_, ok := groups[s]
		return ok || isNode(s)
	}
	for _, line := range graph {
		line = strings.TrimSpace(line)
		if name, members, ok := strings.Cut(line, "="); ok {
			lst, err := parseSymbolList(members, valid)
			if err != nil {
				return nil, err
			}
			groups[strings.TrimSpace(name)] = lst
			continue
		}
		lst, err := parseSymbolList(line, valid)
		if err != nil {
			return nil, err
		}
		if len(lst) < 2 {
			return nil, fmt.Errorf("invalid pairing, %v", lst)
		}
		lines = append(lines, lst)
	}

	expanded := make(map[string][]NodeId)
	var expand func(sym string, path []string) ([]NodeId, error)
	expand = func(sym string, path []string) ([]NodeId, error) {
		if isNode(sym) {
			return []NodeId{NodeId(sym)}, nil
		}
		if res, ok := expanded[sym]; ok {
			return res, nil
		}
		if idx := slices.Index(path, sym); idx != -1 {
			cycle := slices.Clone(path[idx:])
			slices.Sort(cycle)
			return nil, fmt.Errorf("cycle detected in graph: %v", cycle)
		}
		path = append(path, sym)
		res := make([]NodeId, 0)
		for _, member := range groups[sym] {
			sub, err := expand(member, path)
			if err != nil {
				return nil, err
			}
			res = append(res, sub...)
		}
		slices.Sort(res)
		res = slices.Compact(res)
		expanded[sym] = res
		return res, nil
	}
	for _, name := range slices.Sorted(maps.Keys(groups)) {
		if _, err := expand(name, nil); err != nil {
			return nil, err
		}
	}

	pairs := make([]Pair[NodeId, NodeId], 0)
	for _, lst := range lines {
		for i := range lst {
			for j := i + 1; j < len(lst); j++ {
				xs, _ := expand(lst[i], nil)
				ys, _ := expand(lst[j], nil)
				for _, x := range xs {
					for _, y := range ys {
						if x != y {
							pairs = append(pairs, MakeSortedPair(x, y))
						}
					}
				}
			}
		}
	}
	SortPairs(pairs)
	return slices.Compact(pairs), nil
}

func parseSymbolList(s string, valid func(string) bool) ([]string, error) {
	res := make([]string, 0)
	for _, sym := range strings.Split(s, ",") {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if !valid(sym) {
			return nil, fmt.Errorf("%s is not a valid node/group", sym)
		}
		res = append(res, sym)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("node/group list must not be empty")
	}
	return res, nil
}

// expandGraph adds a link for every pair of nodes connected by the graph that is not already linked.
// Generated links use the lowest free port on each end and the default cost.
func expandGraph(cfg *NetworkCfg) error {
	if len(cfg.Graph) == 0 {
		return nil
	}
	nodes := make([]NodeId, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		if !n.Disabled {
			nodes = append(nodes, n.Id)
		}
	}
	pairs, err := ParseGraph(cfg.Graph, nodes)
	if err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	used := make(map[NodeId][]Port)
	for _, l := range cfg.Links {
		used[l.A] = append(used[l.A], l.APort)
		used[l.B] = append(used[l.B], l.BPort)
	}
	nextPort := func(id NodeId) Port {
		p := Port(1)
		for slices.Contains(used[id], p) {
			p++
		}
		used[id] = append(used[id], p)
		return p
	}
	for _, pair := range pairs {
		if cfg.FindLink(pair.V1, pair.V2) != -1 {
			continue
		}
		cfg.Links = append(cfg.Links, LinkCfg{
			A:     pair.V1,
			B:     pair.V2,
			APort: nextPort(pair.V1),
			BPort: nextPort(pair.V2),
		})
	}
	return nil
}
