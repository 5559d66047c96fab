package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-broadcast"
	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
	"github.com/google/uuid"
)

type TraceKind int

const (
	TraceDelivered TraceKind = iota
	TraceDropped
	TraceRouteChange
	TraceLinkChange
)

func (k TraceKind) String() string {
	switch k {
	case TraceDelivered:
		return "delivered"
	case TraceDropped:
		return "dropped"
	case TraceRouteChange:
		return "route"
	case TraceLinkChange:
		return "link"
	default:
		return fmt.Sprintf("TraceKind(%d)", int(k))
	}
}

// Trace is something observable that happened in the network
type Trace struct {
	Kind TraceKind
	At   time.Duration // since the network started
	Node state.NodeId  // where it happened
	// PacketId is set for packet traces
	PacketId uuid.UUID
	Src      state.NodeId
	Dst      state.NodeId
	Route    []state.NodeId
	Reason   string
}

func (t Trace) String() string {
	switch t.Kind {
	case TraceDelivered:
		return fmt.Sprintf("[%s] %s -> %s delivered, route: %v", t.At.Round(time.Millisecond), t.Src, t.Dst, t.Route)
	case TraceDropped:
		return fmt.Sprintf("[%s] %s -> %s dropped at %s (%s), route: %v", t.At.Round(time.Millisecond), t.Src, t.Dst, t.Node, t.Reason, t.Route)
	default:
		return fmt.Sprintf("[%s] %s %s: %s", t.At.Round(time.Millisecond), t.Kind, t.Node, t.Reason)
	}
}

func packetTrace(kind TraceKind, at time.Duration, node state.NodeId, pkt *protocol.Packet, reason string) Trace {
	return Trace{
		Kind:     kind,
		At:       at,
		Node:     node,
		PacketId: pkt.Id,
		Src:      pkt.Src,
		Dst:      pkt.Dst,
		Route:    pkt.Route,
		Reason:   reason,
	}
}

// Tracer fans traces out to every subscriber
type Tracer struct {
	broadcast.Broadcaster
}

func NewTracer() *Tracer {
	return &Tracer{
		Broadcaster: broadcast.NewBroadcaster(state.TraceBuffer),
	}
}

// Subscribe calls fun for every trace until ctx is done. The returned channel is closed once fun
// will not be called anymore.
func (t *Tracer) Subscribe(ctx context.Context, fun func(Trace)) <-chan struct{} {
	ch := make(chan any, state.TraceBuffer)
	done := make(chan struct{})
	t.Register(ch)
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				// keep draining, so that the broadcaster is never blocked on us while unregistering
				go func() {
					for range ch {
					}
				}()
				t.Unregister(ch)
				close(ch)
				return
			case x := <-ch:
				if tr, ok := x.(Trace); ok {
					fun(tr)
				}
			}
		}
	}()
	return done
}
