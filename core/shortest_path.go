package core

import (
	"container/heap"
	"slices"

	"github.com/encodeous/lsr/state"
)

// PathTree is the result of a single source shortest path search
type PathTree struct {
	Source state.NodeId
	dist   map[state.NodeId]float64
	prev   map[state.NodeId]state.NodeId
}

type pathItem struct {
	id   state.NodeId
	dist float64
}

// pathQueue orders by distance, then by id, so that equal cost searches always finalise nodes in
// the same order
type pathQueue []pathItem

func (q pathQueue) Len() int {
	return len(q)
}

func (q pathQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].id < q[j].id
}

func (q pathQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *pathQueue) Push(x any) {
	*q = append(*q, x.(pathItem))
}

func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// ShortestPaths runs Dijkstra from src. Costs must be non-negative.
//
// Among equal cost paths, the predecessor of a node is only replaced by a strictly cheaper one, so
// the path through whichever predecessor was finalised first wins.
func (t *Topology) ShortestPaths(src state.NodeId) *PathTree {
	tree := &PathTree{
		Source: src,
		dist:   make(map[state.NodeId]float64),
		prev:   make(map[state.NodeId]state.NodeId),
	}
	if !t.HasNode(src) {
		return tree
	}
	done := make(map[state.NodeId]struct{})
	tree.dist[src] = 0
	q := &pathQueue{{id: src, dist: 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(pathItem)
		if _, ok := done[cur.id]; ok {
			continue
		}
		done[cur.id] = struct{}{}
		for _, v := range t.Neighbours(cur.id) {
			if _, ok := done[v]; ok {
				continue
			}
			nd := cur.dist + t.edges[cur.id][v]
			if old, ok := tree.dist[v]; !ok || nd < old {
				tree.dist[v] = nd
				tree.prev[v] = cur.id
				heap.Push(q, pathItem{id: v, dist: nd})
			}
		}
	}
	return tree
}

func (p *PathTree) Reachable(dst state.NodeId) bool {
	_, ok := p.dist[dst]
	return ok
}

func (p *PathTree) Distance(dst state.NodeId) (float64, bool) {
	d, ok := p.dist[dst]
	return d, ok
}

// Path returns the nodes from the source to dst, both included
func (p *PathTree) Path(dst state.NodeId) ([]state.NodeId, bool) {
	if !p.Reachable(dst) {
		return nil, false
	}
	path := []state.NodeId{dst}
	for cur := dst; cur != p.Source; {
		cur = p.prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path, true
}
