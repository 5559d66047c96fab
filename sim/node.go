package sim

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/encodeous/lsr/core"
	"github.com/encodeous/lsr/perf"
	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
	"github.com/jellydator/ttlcache/v3"
)

type traceKey struct {
	event core.RouterEvent
	key   string
}

// Router hosts a link state router on its own goroutine, and connects it to the simulated links
type Router struct {
	*core.RouterState
	Env   *state.Env[*Router]
	net   *Network
	dedup *ttlcache.Cache[traceKey, struct{}]

	// Malformed counts advertisements that could not be decoded
	Malformed atomic.Uint64
}

func newRouter(n *Network, node state.NodeCfg, opts ...core.Option) *Router {
	return &Router{
		RouterState: core.NewRouterState(state.Node{Id: node.Id, Kind: node.Kind}, opts...),
		net:         n,
		dedup: ttlcache.New[traceKey, struct{}](
			ttlcache.WithTTL[traceKey, struct{}](state.TraceDedupTTL),
			ttlcache.WithDisableTouchOnHit[traceKey, struct{}](),
		),
	}
}

func (r *Router) Send(port state.Port, pkt *protocol.Packet) {
	r.net.transmit(r.Self.Id, port, pkt)
}

func (r *Router) Log(event core.RouterEvent, desc string, args ...any) {
	switch event {
	case core.AdvertisementAccepted:
		perf.AdvertisementsAccepted.Add(1)
	case core.AdvertisementStale:
		perf.AdvertisementsStale.Add(1)
	case core.AdvertisementOriginated:
		perf.AdvertisementsSent.Add(1)
	case core.PacketForwarded:
		perf.PacketsForwarded.Add(1)
	case core.PacketDropped:
		perf.PacketsDropped.Add(1)
	case core.TopologyChanged, core.LinkAdded, core.LinkRemoved:
		r.net.touch()
	case core.RouteAdded, core.RouteChanged, core.RouteRemoved:
		perf.RouteChanges.Add(1)
		r.net.touch()
		r.net.trace(Trace{
			Kind:   TraceRouteChange,
			At:     r.net.Elapsed(),
			Node:   r.Self.Id,
			Reason: fmt.Sprint(append([]any{desc}, args...)...),
		})
	}

	if event.IsWarning() {
		r.Env.Log.Warn(fmt.Sprintf("%s %s", event, desc), args...)
		return
	}
	if event == core.AdvertisementStale || event == core.PacketDropped {
		// these repeat for every copy of a flood, or every packet of a flow
		key := traceKey{event, fmt.Sprint(args...)}
		if r.dedup.Get(key) != nil {
			return
		}
		r.dedup.Set(key, struct{}{}, ttlcache.DefaultTTL)
	}
	r.Env.Log.Debug(fmt.Sprintf("%s %s", event, desc), args...)
}

func (r *Router) receive(port state.Port, pkt *protocol.Packet) error {
	if pkt.IsRouting() {
		// malformed advertisements are counted and otherwise ignored
		if err := core.HandleControlPacket(r.RouterState, r, port, pkt); err != nil {
			perf.MalformedAdvertisements.Add(1)
			r.Malformed.Add(1)
		}
		return nil
	}
	if len(pkt.Route) > state.MaxHops {
		perf.PacketsDropped.Add(1)
		r.net.trace(packetTrace(TraceDropped, r.net.Elapsed(), r.Self.Id, pkt, "hop limit exceeded"))
		return nil
	}
	if _, ok := r.Forward.Lookup(pkt.Dst); !ok {
		r.net.trace(packetTrace(TraceDropped, r.net.Elapsed(), r.Self.Id, pkt, "no route"))
	}
	core.HandleDataPacket(r.RouterState, r, pkt)
	return nil
}

func (r *Router) tick() error {
	core.HandleTime(r.RouterState, r, r.net.Elapsed())
	r.dedup.DeleteExpired()
	return nil
}

// MainLoop runs dispatched functions until the router is stopped. A panic stops only this router.
func (r *Router) MainLoop(dispatch <-chan func(*Router) error) {
	defer r.net.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			r.Env.Log.Error("router crashed", "panic", rec)
			r.Env.Cancel(fmt.Errorf("panic: %v", rec))
		}
	}()
	r.Env.Log.Debug("started main loop")
	for {
		select {
		case fun := <-dispatch:
			start := time.Now()
			err := fun(r)
			if err != nil {
				r.Env.Log.Error("error occurred during dispatch: ", "error", err)
				r.Env.Cancel(err)
			}
			elapsed := time.Since(start)
			perf.DispatchLatency.Add(float64(elapsed.Microseconds()))
			if elapsed > state.SlowDispatchWarning {
				r.Env.Log.Warn("dispatch took a long time!", "fun", runtime.FuncForPC(reflect.ValueOf(fun).Pointer()).Name(), "elapsed", elapsed, "len", len(dispatch))
			}
		case <-r.Env.Context.Done():
			r.Env.Log.Debug("stopped main loop", "reason", context.Cause(r.Env.Context).Error())
			return
		}
	}
}

// Running reports whether the router has not been stopped or crashed
func (r *Router) Running() bool {
	return r.Env.Context.Err() == nil
}
