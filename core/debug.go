package core

import (
	"fmt"
	"strings"
)

// DebugString dumps the router's view of the network: the edge list, the newest seqno seen from
// each origin, the local links and the forwarding table.
func DebugString(s *RouterState) string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "router %s, next seqno %d, last broadcast %s\n", s.Self, s.Seqno, s.LastBroadcast)
	sb.WriteString("edges:\n")
	for _, e := range s.Topology.Edges() {
		fmt.Fprintf(&sb, "  %s\n", e)
	}
	sb.WriteString("link states:\n")
	for _, origin := range s.LSDB.Origins() {
		ls, _ := s.LSDB.Get(origin)
		fmt.Fprintf(&sb, "  %s seqno %d %s\n", origin, ls.Seqno, ls.Endpoints)
	}
	sb.WriteString("links:\n")
	for _, port := range s.SortedPorts() {
		fmt.Fprintf(&sb, "  %s\n", s.Links[port])
	}
	fmt.Fprintf(&sb, "forward table: %s\n", s.Forward)
	return sb.String()
}
