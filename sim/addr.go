package sim

import (
	"fmt"
	"net/netip"

	"github.com/encodeous/lsr/state"
	"github.com/gaissmai/bart"
)

// AddrTable resolves addresses to the node owning the longest matching prefix
type AddrTable struct {
	table bart.Table[state.NodeId]
}

func NewAddrTable(cfg *state.NetworkCfg) *AddrTable {
	t := &AddrTable{}
	for _, node := range cfg.Nodes {
		for _, pfx := range node.Prefixes {
			t.table.Insert(pfx, node.Id)
		}
	}
	return t
}

func (t *AddrTable) Lookup(addr netip.Addr) (state.NodeId, bool) {
	return t.table.Lookup(addr)
}

// Resolve turns a probe target into a node id. The target is either a node id, or an address
// inside one of the configured prefixes.
func Resolve(cfg *state.NetworkCfg, addrs *AddrTable, target string) (state.NodeId, error) {
	if cfg.TryGetNode(state.NodeId(target)) != nil {
		return state.NodeId(target), nil
	}
	addr, err := netip.ParseAddr(target)
	if err != nil {
		return "", fmt.Errorf("%q is neither a node nor an address", target)
	}
	id, ok := addrs.Lookup(addr)
	if !ok {
		return "", fmt.Errorf("no node owns %s", addr)
	}
	return id, nil
}
