package core

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/encodeous/lsr/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomNetwork builds routers R0..Rn-1 joined by random links with asymmetric integer costs, and
// hosts that each hang off a single router.
func randomNetwork(rng *rand.Rand, routers, hosts int) *state.NetworkCfg {
	cfg := &state.NetworkCfg{Heartbeat: time.Second}
	ports := make(map[state.NodeId]state.Port)
	next := func(id state.NodeId) state.Port {
		ports[id]++
		return ports[id]
	}
	link := func(a, b state.NodeId) {
		cfg.Links = append(cfg.Links, state.LinkCfg{
			A: a, B: b,
			APort: next(a), BPort: next(b),
			CostAB: float64(1 + rng.IntN(9)),
			CostBA: float64(1 + rng.IntN(9)),
		})
	}
	for i := range routers {
		cfg.Nodes = append(cfg.Nodes, state.NodeCfg{Id: state.NodeId(fmt.Sprintf("R%d", i))})
	}
	for i := range routers {
		for j := i + 1; j < routers; j++ {
			if rng.Float64() < 0.45 {
				link(cfg.Nodes[i].Id, cfg.Nodes[j].Id)
			}
		}
	}
	for i := range hosts {
		id := state.NodeId(fmt.Sprintf("h%d", i))
		cfg.Nodes = append(cfg.Nodes, state.NodeCfg{Id: id})
		link(cfg.Nodes[rng.IntN(routers)].Id, id)
	}
	return cfg
}

// checkShortestRoutes follows every router's forwarding table towards every host and compares the
// cost of the walk with the cheapest path over the links that are currently up.
func checkShortestRoutes(t *testing.T, n *testNet, up []bool) {
	t.Helper()
	truth := NewTopology(state.Node{Id: n.cfg.Nodes[0].Id, Kind: n.cfg.Nodes[0].Kind})
	hops := make(map[wireEnd]wireEnd)
	for _, node := range n.cfg.Nodes {
		truth.AddNode(state.Node{Id: node.Id, Kind: node.Kind})
	}
	for i, lc := range n.cfg.Links {
		if !up[i] {
			continue
		}
		truth.UpsertEdge(lc.A, lc.B, lc.CostAB)
		truth.UpsertEdge(lc.B, lc.A, lc.CostBA)
		hops[wireEnd{lc.A, lc.APort}] = wireEnd{lc.B, lc.BPort}
		hops[wireEnd{lc.B, lc.BPort}] = wireEnd{lc.A, lc.APort}
	}

	for id, r := range n.routers {
		tree := truth.ShortestPaths(id)
		for _, host := range n.cfg.Nodes {
			if host.Kind != state.KindHost {
				continue
			}
			want, reachable := tree.Distance(host.Id)
			if !reachable {
				_, ok := r.Forward[host.Id]
				assert.False(t, ok, "%s has a route to unreachable %s", id, host.Id)
				continue
			}

			cur, cost := id, 0.0
			for steps := 0; cur != host.Id; steps++ {
				if !assert.Less(t, steps, len(n.cfg.Nodes), "%s -> %s loops", id, host.Id) {
					break
				}
				port, ok := n.routers[cur].Forward[host.Id]
				if !assert.True(t, ok, "%s -> %s: no route at %s", id, host.Id, cur) {
					break
				}
				peer, ok := hops[wireEnd{cur, port}]
				if !assert.True(t, ok, "%s -> %s: %s forwards on dead port %d", id, host.Id, cur, port) {
					break
				}
				c, _ := truth.Cost(cur, peer.node)
				cost += c
				cur = peer.node
			}
			if cur == host.Id {
				assert.Equal(t, want, cost, "%s -> %s", id, host.Id)
			}
		}
	}
}

func TestRandomisedConvergence(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed))
			n := newTestNet(t, randomNetwork(rng, 6, 4))
			up := make([]bool, len(n.cfg.Links))
			toggle := func(i int) {
				lc := n.cfg.Links[i]
				if up[i] {
					n.LinkDown(lc.A, lc.B)
				} else {
					n.LinkUp(lc.A, lc.B)
				}
				up[i] = !up[i]
			}

			// links flap while advertisements are still in flight, and arrive out of order
			now := time.Duration(0)
			for range 60 {
				toggle(rng.IntN(len(up)))
				n.Scramble(rng, rng.IntN(8))
				if rng.IntN(5) == 0 {
					now += time.Duration(rng.IntN(1500)) * time.Millisecond
					n.Tick(now)
				}
			}
			n.Scramble(rng, len(n.queue)/2)

			// everything comes back, then one heartbeat brings every view up to date
			for i := range up {
				if !up[i] {
					toggle(i)
				}
			}
			n.Run()
			now += n.cfg.Heartbeat
			n.Tick(now)
			n.Run()
			checkShortestRoutes(t, n, up)

			// tear links down one at a time, letting the network settle in between
			for _, i := range rng.Perm(len(up)) {
				toggle(i)
				n.Run()
				checkShortestRoutes(t, n, up)
			}
			for _, r := range n.routers {
				require.Empty(t, r.Forward)
			}
		})
	}
}
