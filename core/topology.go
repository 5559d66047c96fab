package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/encodeous/lsr/state"
)

type Edge struct {
	From state.NodeId
	To   state.NodeId
	Cost float64
}

func (e Edge) String() string {
	return fmt.Sprintf("%s %s %g", e.From, e.To, e.Cost)
}

// Topology is a directed weighted graph of every node this router has heard of. The cost of
// u -> v is whatever the owner of that direction last reported.
type Topology struct {
	nodes map[state.NodeId]state.NodeKind
	edges map[state.NodeId]map[state.NodeId]float64
}

func NewTopology(self state.Node) *Topology {
	t := &Topology{
		nodes: make(map[state.NodeId]state.NodeKind),
		edges: make(map[state.NodeId]map[state.NodeId]float64),
	}
	t.AddNode(self)
	return t
}

// AddNode registers a node. A known kind replaces an unknown one, but never the other way around.
func (t *Topology) AddNode(n state.Node) {
	old, ok := t.nodes[n.Id]
	if !ok || old == state.KindUnknown {
		t.nodes[n.Id] = n.Kind
	}
}

func (t *Topology) HasNode(id state.NodeId) bool {
	_, ok := t.nodes[id]
	return ok
}

func (t *Topology) Kind(id state.NodeId) state.NodeKind {
	return t.nodes[id]
}

// Nodes returns every known node, sorted by id
func (t *Topology) Nodes() []state.Node {
	out := make([]state.Node, 0, len(t.nodes))
	for _, id := range slices.Sorted(maps.Keys(t.nodes)) {
		out = append(out, state.Node{Id: id, Kind: t.nodes[id]})
	}
	return out
}

// UpsertEdge sets the cost of u -> v, adding either end if it is not known yet
func (t *Topology) UpsertEdge(u, v state.NodeId, cost float64) {
	t.AddNode(state.Node{Id: u})
	t.AddNode(state.Node{Id: v})
	adj, ok := t.edges[u]
	if !ok {
		adj = make(map[state.NodeId]float64)
		t.edges[u] = adj
	}
	adj[v] = cost
}

// RemoveEdge deletes u -> v. The nodes themselves are kept. Returns false if there was no such edge.
func (t *Topology) RemoveEdge(u, v state.NodeId) bool {
	adj, ok := t.edges[u]
	if !ok {
		return false
	}
	if _, ok = adj[v]; !ok {
		return false
	}
	delete(adj, v)
	if len(adj) == 0 {
		delete(t.edges, u)
	}
	return true
}

func (t *Topology) Cost(u, v state.NodeId) (float64, bool) {
	c, ok := t.edges[u][v]
	return c, ok
}

// Neighbours returns the heads of all edges leaving u, sorted by id
func (t *Topology) Neighbours(u state.NodeId) []state.NodeId {
	return slices.Sorted(maps.Keys(t.edges[u]))
}

// Edges returns every edge, sorted by (from, to)
func (t *Topology) Edges() []Edge {
	out := make([]Edge, 0)
	for _, u := range slices.Sorted(maps.Keys(t.edges)) {
		for _, v := range t.Neighbours(u) {
			out = append(out, Edge{From: u, To: v, Cost: t.edges[u][v]})
		}
	}
	return out
}

func (t *Topology) HasPath(src, dst state.NodeId) bool {
	if !t.HasNode(src) || !t.HasNode(dst) {
		return false
	}
	seen := map[state.NodeId]struct{}{src: {}}
	queue := []state.NodeId{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dst {
			return true
		}
		for v := range t.edges[cur] {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				queue = append(queue, v)
			}
		}
	}
	return false
}

// ShortestPath returns the cheapest path from src to dst, both ends included
func (t *Topology) ShortestPath(src, dst state.NodeId) ([]state.NodeId, bool) {
	return t.ShortestPaths(src).Path(dst)
}
