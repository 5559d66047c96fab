package protocol

import (
	"fmt"
	"slices"

	"github.com/encodeous/lsr/state"
	"github.com/google/uuid"
)

type PacketKind int

const (
	KindData PacketKind = iota
	KindRouting
)

func (k PacketKind) String() string {
	switch k {
	case KindData:
		return "DATA"
	case KindRouting:
		return "ROUTING"
	default:
		return fmt.Sprintf("PacketKind(%d)", int(k))
	}
}

// Packet is the unit exchanged between directly connected nodes. Data packets are forwarded
// verbatim, routing packets carry a serialized Advertisement whose origin is Src.
type Packet struct {
	Id      uuid.UUID
	Kind    PacketKind
	Src     state.NodeId
	Dst     state.NodeId
	Content []byte
	Route   []state.NodeId // nodes traversed so far, maintained by the transport
}

func NewDataPacket(src, dst state.NodeId, content []byte) *Packet {
	return &Packet{
		Id:      uuid.New(),
		Kind:    KindData,
		Src:     src,
		Dst:     dst,
		Content: content,
	}
}

func NewRoutingPacket(origin, dst state.NodeId, content []byte) *Packet {
	return &Packet{
		Id:      uuid.New(),
		Kind:    KindRouting,
		Src:     origin,
		Dst:     dst,
		Content: content,
	}
}

func (p *Packet) IsData() bool {
	return p.Kind == KindData
}

func (p *Packet) IsRouting() bool {
	return p.Kind == KindRouting
}

// Clone copies the packet so that the route can be extended independently. Content is shared
// and must be treated as read-only.
func (p *Packet) Clone() *Packet {
	c := *p
	c.Route = slices.Clone(p.Route)
	return &c
}

func (p *Packet) String() string {
	return fmt.Sprintf("(%s %s -> %s, %d bytes, route: %v)", p.Kind, p.Src, p.Dst, len(p.Content), p.Route)
}
