package core

import (
	"fmt"
	"maps"
	"slices"

	"github.com/encodeous/lsr/state"
)

type Result int

const (
	Accepted Result = iota
	Stale
)

func (r Result) String() string {
	if r == Accepted {
		return "accepted"
	}
	return "stale"
}

// Diff lists the endpoints an advertisement gained and lost compared to the previous one from the
// same origin, sorted by id
type Diff struct {
	Added   []state.NodeId
	Removed []state.NodeId
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

func (d Diff) String() string {
	return fmt.Sprintf("(added: %v, removed: %v)", d.Added, d.Removed)
}

type LinkState struct {
	Seqno     uint64
	Endpoints state.Endpoints
}

// LinkStateDB keeps the latest advertisement accepted from each origin
type LinkStateDB struct {
	states   map[state.NodeId]LinkState
	classify state.Classifier
}

func NewLinkStateDB(classify state.Classifier) *LinkStateDB {
	if classify == nil {
		classify = state.ConventionClassifier
	}
	return &LinkStateDB{
		states:   make(map[state.NodeId]LinkState),
		classify: classify,
	}
}

// Apply merges ad into topo. An advertisement whose seqno is not newer than the stored one is
// Stale and changes nothing.
//
// Each origin owns the edges leaving it. A new endpoint e inserts both origin -> e and
// e -> origin, a withdrawn endpoint only deletes origin -> e, and endpoints present in both
// snapshots keep the costs they were first learned with.
func (db *LinkStateDB) Apply(topo *Topology, ad state.Advertisement) (Result, Diff) {
	old, ok := db.states[ad.Origin]
	if ok && old.Seqno >= ad.Seqno {
		return Stale, Diff{}
	}

	diff := Diff{
		Added:   make([]state.NodeId, 0),
		Removed: make([]state.NodeId, 0),
	}
	topo.AddNode(state.Node{Id: ad.Origin, Kind: db.classify(ad.Origin)})
	for _, e := range ad.Endpoints.Ids() {
		if _, had := old.Endpoints[e]; had {
			continue
		}
		ep := ad.Endpoints[e]
		topo.AddNode(state.Node{Id: e, Kind: db.classify(e)})
		topo.UpsertEdge(ad.Origin, e, ep.CostTo)
		topo.UpsertEdge(e, ad.Origin, ep.CostFrom)
		diff.Added = append(diff.Added, e)
	}
	for _, e := range old.Endpoints.Ids() {
		if _, has := ad.Endpoints[e]; has {
			continue
		}
		topo.RemoveEdge(ad.Origin, e)
		diff.Removed = append(diff.Removed, e)
	}

	db.states[ad.Origin] = LinkState{
		Seqno:     ad.Seqno,
		Endpoints: ad.Endpoints.Clone(),
	}
	return Accepted, diff
}

// SetLocal stores the router's own advertisement without any sequence checks, so that copies of
// it flooded back to us are recognised as stale
func (db *LinkStateDB) SetLocal(ad state.Advertisement) {
	db.states[ad.Origin] = LinkState{
		Seqno:     ad.Seqno,
		Endpoints: ad.Endpoints.Clone(),
	}
}

func (db *LinkStateDB) Get(origin state.NodeId) (LinkState, bool) {
	ls, ok := db.states[origin]
	return ls, ok
}

func (db *LinkStateDB) Origins() []state.NodeId {
	return slices.Sorted(maps.Keys(db.states))
}
