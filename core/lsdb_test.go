package core

import (
	"testing"

	"github.com/encodeous/lsr/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestApplyNewOrigin(t *testing.T) {
	topo := NewTopology(Router("A"))
	db := NewLinkStateDB(state.ConventionClassifier)

	res, diff := db.Apply(topo, state.Advertisement{
		Origin: "B",
		Seqno:  0,
		Endpoints: state.Endpoints{
			"C": {CostTo: 1, CostFrom: 2},
			"g": {CostTo: 3, CostFrom: 4},
		},
	})
	assert.Equal(t, Accepted, res)
	assert.Equal(t, []state.NodeId{"C", "g"}, diff.Added)
	assert.Empty(t, diff.Removed)

	want := []Edge{
		{"B", "C", 1}, {"B", "g", 3},
		{"C", "B", 2},
		{"g", "B", 4},
	}
	if d := cmp.Diff(want, topo.Edges()); d != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", d)
	}
	assert.Equal(t, state.KindRouter, topo.Kind("B"))
	assert.Equal(t, state.KindHost, topo.Kind("g"))

	ls, ok := db.Get("B")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), ls.Seqno)
}

func TestApplyStale(t *testing.T) {
	topo := NewTopology(Router("A"))
	db := NewLinkStateDB(nil)

	db.Apply(topo, state.Advertisement{Origin: "B", Seqno: 5, Endpoints: state.Endpoints{"C": {CostTo: 1, CostFrom: 1}}})
	before := topo.Edges()

	for _, seq := range []uint64{5, 4, 0} {
		res, diff := db.Apply(topo, state.Advertisement{Origin: "B", Seqno: seq, Endpoints: state.Endpoints{}})
		assert.Equal(t, Stale, res)
		assert.True(t, diff.Empty())
	}
	assert.Equal(t, before, topo.Edges())
	ls, _ := db.Get("B")
	assert.Equal(t, uint64(5), ls.Seqno)
	assert.Equal(t, state.Endpoints{"C": {CostTo: 1, CostFrom: 1}}, ls.Endpoints)
}

func TestApplyAsymmetricRemoval(t *testing.T) {
	topo := NewTopology(Router("A"))
	db := NewLinkStateDB(nil)

	db.Apply(topo, state.Advertisement{Origin: "B", Seqno: 1, Endpoints: state.Endpoints{
		"C": {CostTo: 1, CostFrom: 1},
		"D": {CostTo: 2, CostFrom: 2},
	}})
	res, diff := db.Apply(topo, state.Advertisement{Origin: "B", Seqno: 2, Endpoints: state.Endpoints{
		"D": {CostTo: 9, CostFrom: 9},
		"E": {CostTo: 3, CostFrom: 4},
	}})
	assert.Equal(t, Accepted, res)
	assert.Equal(t, Diff{Added: []state.NodeId{"E"}, Removed: []state.NodeId{"C"}}, diff)

	// B -> C is withdrawn, C -> B belongs to C and stays
	_, ok := topo.Cost("B", "C")
	assert.False(t, ok)
	c, ok := topo.Cost("C", "B")
	assert.True(t, ok)
	assert.Equal(t, 1.0, c)

	// endpoints present in both snapshots keep their original cost
	c, _ = topo.Cost("B", "D")
	assert.Equal(t, 2.0, c)

	c, _ = topo.Cost("E", "B")
	assert.Equal(t, 4.0, c)
}

func TestSetLocal(t *testing.T) {
	topo := NewTopology(Router("A"))
	db := NewLinkStateDB(nil)
	db.SetLocal(state.Advertisement{Origin: "A", Seqno: 3, Endpoints: state.Endpoints{"B": {CostTo: 1, CostFrom: 1}}})
	// local snapshots do not touch the topology
	assert.Empty(t, topo.Edges())

	res, _ := db.Apply(topo, state.Advertisement{Origin: "A", Seqno: 3, Endpoints: state.Endpoints{}})
	assert.Equal(t, Stale, res)
	assert.Equal(t, []state.NodeId{"A"}, db.Origins())
}
