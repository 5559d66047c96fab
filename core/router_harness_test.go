package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
	"github.com/google/go-cmp/cmp"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

type SentPacket struct {
	Port   state.Port
	Packet *protocol.Packet
}

// RouterHarness records everything a router asks of its transport
type RouterHarness struct {
	actions []HarnessEvent
	sent    []SentPacket
}

func (h *RouterHarness) Send(port state.Port, pkt *protocol.Packet) {
	h.sent = append(h.sent, SentPacket{port, pkt})
	h.actions = append(h.actions, MakeEvent("SEND", port, pkt.Kind, pkt.Src, pkt.Dst))
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetActions returns and clears the recorded sends
func (h *RouterHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}
	h.actions = make([]HarnessEvent, 0)
	h.sent = nil
	return x
}

// GetLogs returns and clears the recorded log events
func (h *RouterHarness) GetLogs() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message == "LOG" {
			x = append(x, action)
		}
	}
	h.actions = make([]HarnessEvent, 0)
	h.sent = nil
	return x
}

// Sent returns the packets sent since the last reset, in order
func (h *RouterHarness) Sent() []SentPacket {
	return h.sent
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func Router(id state.NodeId) state.Node {
	return state.Node{Id: id, Kind: state.KindRouter}
}

func Host(id state.NodeId) state.Node {
	return state.Node{Id: id, Kind: state.KindHost}
}

func MakeLink(port state.Port, a, b state.Node, costAB, costBA float64) state.Link {
	return state.Link{
		Port:   port,
		E1:     a,
		E2:     b,
		Cost12: costAB,
		Cost21: costBA,
	}
}

func MakeAdvertisement(origin state.NodeId, seqno uint64, eps state.Endpoints) *protocol.Packet {
	content, err := protocol.JSONCodec{}.Marshal(state.Advertisement{
		Origin:    origin,
		Seqno:     seqno,
		Endpoints: eps,
	})
	if err != nil {
		panic(err)
	}
	return protocol.NewRoutingPacket(origin, "", content)
}
