package state

import (
	"net/netip"
	"time"
)

// SampleNetwork builds the following network, with host h attached to A:
//
//	      B
//	   1 / \ 1
//	    /   \
//	h -1- A --5-- C
//
// Once converged B reaches h via A (cost 2). If the A, B link goes down, B reaches h via C (cost 7).
func SampleNetwork() *NetworkCfg {
	cfg := &NetworkCfg{
		Heartbeat: time.Second,
		Tick:      TickInterval,
		Codec:     DefaultCodec,
		Nodes: []NodeCfg{
			{Id: "A", Kind: KindRouter},
			{Id: "B", Kind: KindRouter},
			{Id: "C", Kind: KindRouter},
			{Id: "h", Kind: KindHost, Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.0.1/32")}},
			{Id: "g", Kind: KindHost, Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.0.2/32")}},
		},
		Links: []LinkCfg{
			{A: "A", B: "B", APort: 1, BPort: 1, CostAB: 1, CostBA: 1, Latency: 10 * time.Millisecond},
			{A: "B", B: "C", APort: 2, BPort: 1, CostAB: 1, CostBA: 1, Latency: 10 * time.Millisecond},
			{A: "A", B: "C", APort: 2, BPort: 2, CostAB: 5, CostBA: 5, Latency: 50 * time.Millisecond},
			{A: "A", B: "h", APort: 3, BPort: 1, CostAB: 1, CostBA: 1},
			{A: "B", B: "g", APort: 3, BPort: 1, CostAB: 1, CostBA: 1},
		},
		Events: []EventCfg{
			{At: 4 * time.Second, Action: "down", A: "A", B: "B"},
		},
		Probes: []ProbeCfg{
			{From: "g", To: "h", At: 3 * time.Second},
			{From: "g", To: "10.0.0.1", At: 7 * time.Second},
		},
	}
	return cfg
}
