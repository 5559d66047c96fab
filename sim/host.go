package sim

import (
	"fmt"
	"sync/atomic"

	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
)

// Host is a terminal node. It does not route, it only sends and receives data packets through
// whichever of its links is up.
type Host struct {
	Id       state.NodeId
	net      *Network
	Received atomic.Uint64
}

// Send hands pkt to the lowest numbered link of the host that is up
func (h *Host) Send(pkt *protocol.Packet) error {
	port, ok := h.net.firstUpPort(h.Id)
	if !ok {
		h.net.trace(packetTrace(TraceDropped, h.net.Elapsed(), h.Id, pkt, "host has no link"))
		return fmt.Errorf("host %s has no link", h.Id)
	}
	pkt.Route = append(pkt.Route, h.Id)
	h.net.transmit(h.Id, port, pkt)
	return nil
}

func (h *Host) receive(pkt *protocol.Packet) {
	if !pkt.IsData() {
		return
	}
	if pkt.Dst != h.Id {
		h.net.trace(packetTrace(TraceDropped, h.net.Elapsed(), h.Id, pkt, "hosts do not forward"))
		return
	}
	h.Received.Add(1)
	h.net.Log.Debug("packet delivered", "src", pkt.Src, "dst", pkt.Dst, "route", pkt.Route)
	h.net.trace(packetTrace(TraceDelivered, h.net.Elapsed(), h.Id, pkt, ""))
}
