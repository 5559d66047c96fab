package core

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
)

type RouterEvent int

// trace events

const (
	AdvertisementAccepted RouterEvent = iota
	AdvertisementStale
	AdvertisementOriginated
	RouteAdded
	RouteChanged
	RouteRemoved
	PacketForwarded
	PacketDropped
	LinkAdded
	LinkRemoved
	TopologyChanged
)

// warn events

const (
	MalformedAdvertisement RouterEvent = iota + 1000
	InconsistentState
)

func (e RouterEvent) String() string {
	switch e {
	case AdvertisementAccepted:
		return "AdvertisementAccepted"
	case AdvertisementStale:
		return "AdvertisementStale"
	case AdvertisementOriginated:
		return "AdvertisementOriginated"
	case RouteAdded:
		return "RouteAdded"
	case RouteChanged:
		return "RouteChanged"
	case RouteRemoved:
		return "RouteRemoved"
	case PacketForwarded:
		return "PacketForwarded"
	case PacketDropped:
		return "PacketDropped"
	case LinkAdded:
		return "LinkAdded"
	case LinkRemoved:
		return "LinkRemoved"
	case TopologyChanged:
		return "TopologyChanged"
	case MalformedAdvertisement:
		return "MalformedAdvertisement"
	case InconsistentState:
		return "InconsistentState"
	default:
		return fmt.Sprintf("RouterEvent(%d)", int(e))
	}
}

func (e RouterEvent) IsWarning() bool {
	return e >= MalformedAdvertisement
}

// Transport is what the router needs from whoever hosts it
type Transport interface {
	// Send hands pkt to the link attached to port. It must not block, and must not call back into
	// the router.
	Send(port state.Port, pkt *protocol.Packet)
	Log(event RouterEvent, desc string, args ...any)
}

// HandleDataPacket forwards pkt towards its destination, or drops it if there is no route
func HandleDataPacket(s *RouterState, t Transport, pkt *protocol.Packet) {
	port, ok := s.Forward.Lookup(pkt.Dst)
	if !ok {
		t.Log(PacketDropped, "no route to destination", "src", pkt.Src, "dst", pkt.Dst)
		return
	}
	t.Log(PacketForwarded, "forwarding packet", "src", pkt.Src, "dst", pkt.Dst, "port", port)
	t.Send(port, pkt)
}

// HandleControlPacket processes an advertisement that arrived on port. If it is newer than what
// we have for its origin, the topology and forwarding table are updated and the unmodified
// payload is flooded to every router neighbour.
func HandleControlPacket(s *RouterState, t Transport, port state.Port, pkt *protocol.Packet) error {
	ad, err := s.codec.Unmarshal(pkt.Src, pkt.Content)
	if err != nil {
		t.Log(MalformedAdvertisement, "dropping malformed advertisement", "src", pkt.Src, "port", port, "err", err)
		return fmt.Errorf("advertisement from %s on port %d: %w", pkt.Src, port, err)
	}

	if ad.Origin == s.Self.Id {
		if cur, ok := s.LSDB.Get(s.Self.Id); !ok || cur.Seqno < ad.Seqno {
			// a previous incarnation of us is still being flooded, supersede it
			t.Log(InconsistentState, "received own advertisement with a newer seqno", "seqno", ad.Seqno, "ours", s.Seqno)
			s.Seqno = ad.Seqno + 1
			originate(s, t)
			return nil
		}
		t.Log(AdvertisementStale, "ignoring own advertisement", "seqno", ad.Seqno)
		return nil
	}

	res, diff := s.LSDB.Apply(s.Topology, ad)
	if res == Stale {
		t.Log(AdvertisementStale, "ignoring stale advertisement", "origin", ad.Origin, "seqno", ad.Seqno)
		return nil
	}
	t.Log(AdvertisementAccepted, "accepted advertisement", "origin", ad.Origin, "seqno", ad.Seqno)
	if !diff.Empty() {
		t.Log(TopologyChanged, "neighbours changed", "origin", ad.Origin, "diff", diff)
	}
	syncLocalEdges(s)

	rebuild(s, t)
	flood(s, t, ad.Origin, pkt.Content, port, s.excludeInboundPort)
	return nil
}

// HandleLinkUp registers a newly established local link and advertises it. The link must be
// attached to us and its port must be free.
func HandleLinkUp(s *RouterState, t Transport, link state.Link) {
	if old, ok := s.Links[link.Port]; ok {
		panic(fmt.Sprintf("link up on port %d, which is already bound to %s", link.Port, old))
	}
	if link.E1.Id != s.Self.Id && link.E2.Id != s.Self.Id {
		panic(fmt.Sprintf("link %s is not attached to %s", link, s.Self.Id))
	}
	if link.E1.Kind == state.KindUnknown {
		link.E1.Kind = s.classify(link.E1.Id)
	}
	if link.E2.Kind == state.KindUnknown {
		link.E2.Kind = s.classify(link.E2.Id)
	}

	neigh, ep := link.Normalize(s.Self.Id)
	s.Links[link.Port] = link
	s.Topology.AddNode(neigh)
	best, _ := bindNeighbour(s, neigh.Id)
	s.Topology.UpsertEdge(s.Self.Id, neigh.Id, best.CostTo)
	s.Topology.UpsertEdge(neigh.Id, s.Self.Id, best.CostFrom)
	t.Log(LinkAdded, "link up", "port", link.Port, "neigh", neigh, "costTo", ep.CostTo, "costFrom", ep.CostFrom)

	rebuild(s, t)
	originate(s, t)
}

// HandleLinkDown removes the link on port. Only our own direction of the link is removed from the
// topology, the reverse edge belongs to the neighbour and is withdrawn by its next advertisement.
func HandleLinkDown(s *RouterState, t Transport, port state.Port) {
	link, ok := s.Links[port]
	if !ok {
		panic(fmt.Sprintf("link down on untracked port %d", port))
	}
	neigh, _ := link.Normalize(s.Self.Id)
	delete(s.Links, port)

	if best, parallel := bindNeighbour(s, neigh.Id); parallel {
		s.Topology.UpsertEdge(s.Self.Id, neigh.Id, best.CostTo)
	} else {
		s.Topology.RemoveEdge(s.Self.Id, neigh.Id)
	}
	t.Log(LinkRemoved, "link down", "port", port, "neigh", neigh)

	rebuild(s, t)
	originate(s, t)
}

// HandleTime advances the router's clock to now, the time elapsed since it started. Once a
// heartbeat interval has passed since the last advertisement, the current neighbour set is
// advertised again even if nothing changed.
func HandleTime(s *RouterState, t Transport, now time.Duration) {
	if now < s.Now {
		t.Log(InconsistentState, "time went backwards", "now", now, "last", s.Now)
		return
	}
	s.Now = now
	if now-s.LastBroadcast >= s.heartbeat {
		originate(s, t)
	}
}

// bindNeighbour points neigh at its cheapest remaining link, the lowest port winning a tie, and
// returns that link's costs. It reports false and unbinds neigh if no link to it is left.
func bindNeighbour(s *RouterState, neigh state.NodeId) (state.Endpoint, bool) {
	var best state.Endpoint
	found := false
	for _, p := range s.SortedPorts() {
		n, ep := s.Links[p].Normalize(s.Self.Id)
		if n.Id != neigh {
			continue
		}
		if !found || ep.CostTo < best.CostTo {
			best = ep
			s.Ports[neigh] = p
			found = true
		}
	}
	if !found {
		delete(s.Ports, neigh)
	}
	return best, found
}

// syncLocalEdges rewrites the edges leaving us from the local links. Advertisements only carry
// the neighbour's view of its links to us, which can be older than our own.
func syncLocalEdges(s *RouterState) {
	for _, v := range s.Topology.Neighbours(s.Self.Id) {
		if _, ok := s.Ports[v]; !ok {
			s.Topology.RemoveEdge(s.Self.Id, v)
		}
	}
	for v, port := range s.Ports {
		_, ep := s.Links[port].Normalize(s.Self.Id)
		s.Topology.UpsertEdge(s.Self.Id, v, ep.CostTo)
	}
}

func originate(s *RouterState, t Transport) {
	ad := state.Advertisement{
		Origin:    s.Self.Id,
		Seqno:     s.Seqno,
		Endpoints: s.LocalEndpoints(),
	}
	content, err := s.codec.Marshal(ad)
	if err != nil {
		t.Log(InconsistentState, "failed to encode own advertisement", "ad", ad, "err", err)
		return
	}
	s.Seqno++
	s.LastBroadcast = s.Now
	s.LSDB.SetLocal(ad)
	t.Log(AdvertisementOriginated, "advertising links", "ad", ad)
	flood(s, t, s.Self.Id, content, 0, false)
}

// flood sends content to every router on the other end of a local link, in port order
func flood(s *RouterState, t Transport, origin state.NodeId, content []byte, inbound state.Port, exclude bool) {
	for _, port := range s.SortedPorts() {
		if exclude && port == inbound {
			continue
		}
		neigh, _ := s.Neighbour(port)
		if !neigh.IsRouter() {
			continue
		}
		t.Send(port, protocol.NewRoutingPacket(origin, neigh.Id, content))
	}
}

// rebuild replaces the forwarding table with a freshly computed one
func rebuild(s *RouterState, t Transport) {
	next := BuildForwardTable(s.Self.Id, s.Topology, s.PortOf)
	dsts := slices.Sorted(maps.Keys(next))
	for _, d := range dsts {
		old, had := s.Forward[d]
		if !had {
			t.Log(RouteAdded, "route added", "dst", d, "port", next[d])
		} else if old != next[d] {
			t.Log(RouteChanged, "route changed", "dst", d, "old", old, "port", next[d])
		}
	}
	for _, d := range slices.Sorted(maps.Keys(s.Forward)) {
		if _, ok := next[d]; !ok {
			t.Log(RouteRemoved, "route removed", "dst", d, "port", s.Forward[d])
		}
	}
	s.Forward = next
}
