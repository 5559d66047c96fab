package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/encodeous/lsr/state"
)

// ForwardTable maps host destinations to the local port packets for them leave through
type ForwardTable map[state.NodeId]state.Port

func (f ForwardTable) Lookup(dst state.NodeId) (state.Port, bool) {
	p, ok := f[dst]
	return p, ok
}

func (f ForwardTable) String() string {
	out := make([]string, 0, len(f))
	for _, d := range slices.Sorted(maps.Keys(f)) {
		out = append(out, fmt.Sprintf("%s:%d", d, f[d]))
	}
	return "{" + strings.Join(out, " ") + "}"
}

// BuildForwardTable computes a fresh table from topo. A host gets an entry only if it is
// reachable from self and the first hop is attached to one of our ports.
func BuildForwardTable(self state.NodeId, topo *Topology, portOf func(state.NodeId) (state.Port, bool)) ForwardTable {
	table := make(ForwardTable)
	tree := topo.ShortestPaths(self)
	for _, n := range topo.Nodes() {
		if n.Id == self || !n.IsHost() {
			continue
		}
		path, ok := tree.Path(n.Id)
		if !ok || len(path) < 2 {
			continue
		}
		if port, ok := portOf(path[1]); ok {
			table[n.Id] = port
		}
	}
	return table
}
