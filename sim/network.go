package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/encodeous/lsr/core"
	"github.com/encodeous/lsr/perf"
	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
)

type options struct {
	level   slog.Level
	logFile io.Writer
}

type Option func(*options)

func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithLogFile additionally writes the logs of every node to w
func WithLogFile(w io.Writer) Option {
	return func(o *options) {
		o.logFile = w
	}
}

// Network runs every node of a NetworkCfg in-process. Each router gets its own goroutine, and
// links deliver packets asynchronously with the configured latency, jitter and loss.
type Network struct {
	Cfg     *state.NetworkCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger
	Routers map[state.NodeId]*Router
	Hosts   map[state.NodeId]*Host
	Tracer  *Tracer
	Addrs   *AddrTable

	opts       options
	links      []*VirtualLink
	ends       map[wireEnd]linkEnd
	start      time.Time
	lastChange atomic.Int64
	wg         sync.WaitGroup
	mu         sync.Mutex
	timers     []*time.Timer
	stopped    bool
}

func NewNetwork(cfg *state.NetworkCfg, opts ...Option) (*Network, error) {
	if err := state.ExpandNetworkConfig(cfg); err != nil {
		return nil, err
	}
	if err := state.NetworkConfigValidator(cfg); err != nil {
		return nil, err
	}
	codec, err := protocol.CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	n := &Network{
		Cfg:     cfg,
		Routers: make(map[state.NodeId]*Router),
		Hosts:   make(map[state.NodeId]*Host),
		Tracer:  NewTracer(),
		Addrs:   NewAddrTable(cfg),
		ends:    make(map[wireEnd]linkEnd),
		opts:    options{level: slog.LevelInfo},
	}
	for _, opt := range opts {
		opt(&n.opts)
	}
	n.Log = NewLogger("net", n.opts.level, n.opts.logFile)

	for _, node := range cfg.Nodes {
		if node.Disabled {
			continue
		}
		switch node.Kind {
		case state.KindRouter:
			n.Routers[node.Id] = newRouter(n, node,
				core.WithHeartbeat(cfg.Heartbeat),
				core.WithClassifier(cfg.Classifier()),
				core.WithCodec(codec),
				core.WithInboundExclusion(cfg.ExcludeInboundPort),
			)
		case state.KindHost:
			n.Hosts[node.Id] = &Host{Id: node.Id, net: n}
		}
	}
	for _, lc := range cfg.Links {
		link := &VirtualLink{LinkCfg: lc}
		n.links = append(n.links, link)
		n.ends[wireEnd{lc.A, lc.APort}] = linkEnd{link, wireEnd{lc.B, lc.BPort}}
		n.ends[wireEnd{lc.B, lc.BPort}] = linkEnd{link, wireEnd{lc.A, lc.APort}}
	}
	return n, nil
}

// Start launches every router, brings up the links that do not start down, and schedules the
// configured events and probes
func (n *Network) Start(ctx context.Context) {
	n.Context, n.Cancel = context.WithCancelCause(ctx)
	n.start = time.Now()
	n.touch()

	for _, id := range slices.Sorted(maps.Keys(n.Routers)) {
		r := n.Routers[id]
		rctx, rcancel := context.WithCancelCause(n.Context)
		dispatch := make(chan func(*Router) error, state.DispatchBuffer)
		r.Env = &state.Env[*Router]{
			DispatchChannel: dispatch,
			Context:         rctx,
			Cancel:          rcancel,
			Log:             NewLogger(string(id), n.opts.level, n.opts.logFile),
		}
		n.wg.Add(1)
		go r.MainLoop(dispatch)
		r.Env.RepeatTask((*Router).tick, n.Cfg.Tick)
	}

	for _, link := range n.links {
		if !link.Down {
			n.setLink(link, true)
		}
	}
	for _, ev := range n.Cfg.Events {
		n.schedule(ev.At, func() {
			if err := n.SetLink(ev.A, ev.B, ev.Action == "up"); err != nil {
				n.Log.Error("failed to apply event", "event", ev, "error", err)
			}
		})
	}
	for _, probe := range n.Cfg.Probes {
		n.schedule(probe.At, func() {
			if _, err := n.Probe(probe.From, probe.To); err != nil {
				n.Log.Error("failed to send probe", "probe", probe, "error", err)
			}
		})
	}
	n.Log.Info("network started", "routers", len(n.Routers), "hosts", len(n.Hosts), "links", len(n.links))
}

// Stop cancels every router and waits for them to exit
func (n *Network) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	n.stopped = true
	for _, t := range n.timers {
		t.Stop()
	}
	n.mu.Unlock()

	if n.Cancel != nil {
		n.Cancel(errors.New("network stopped"))
	}
	n.wg.Wait()

	n.mu.Lock()
	_ = n.Tracer.Close()
	n.mu.Unlock()
	n.Log.Info("network stopped")
}

func (n *Network) schedule(at time.Duration, fun func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}
	n.timers = append(n.timers, time.AfterFunc(at-n.Elapsed(), func() {
		if n.Context.Err() == nil {
			fun()
		}
	}))
}

// Elapsed is the time since the network started
func (n *Network) Elapsed() time.Duration {
	return time.Since(n.start)
}

func (n *Network) touch() {
	n.lastChange.Store(int64(n.Elapsed()))
}

// WaitQuiet blocks until neither the topology nor any route has changed for quiet
func (n *Network) WaitQuiet(ctx context.Context, quiet time.Duration) error {
	ticker := time.NewTicker(quiet / 10)
	defer ticker.Stop()
	for {
		if n.Elapsed()-time.Duration(n.lastChange.Load()) >= quiet {
			return nil
		}
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-n.Context.Done():
			return context.Cause(n.Context)
		case <-ticker.C:
		}
	}
}

func (n *Network) trace(t Trace) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}
	n.Tracer.Submit(t)
}

// SetLink brings the link between a and b up or down, and notifies the routers on both ends
func (n *Network) SetLink(a, b state.NodeId, up bool) error {
	idx := n.Cfg.FindLink(a, b)
	if idx == -1 {
		return fmt.Errorf("there is no link between %s and %s", a, b)
	}
	n.setLink(n.links[idx], up)
	return nil
}

func (n *Network) setLink(link *VirtualLink, up bool) {
	if link.up.Swap(up) == up {
		return
	}
	n.touch()
	action := "down"
	if up {
		action = "up"
	}
	n.Log.Info("link "+action, "a", link.A, "b", link.B)
	n.trace(Trace{
		Kind:   TraceLinkChange,
		At:     n.Elapsed(),
		Node:   link.A,
		Reason: fmt.Sprintf("%s - %s %s", link.A, link.B, action),
	})
	for _, side := range []state.LinkCfg{link.LinkCfg, link.Reversed()} {
		r, ok := n.Routers[side.A]
		if !ok {
			continue
		}
		if up {
			l := side.Link(n.Cfg)
			r.Env.Dispatch(func(r *Router) error {
				core.HandleLinkUp(r.RouterState, r, l)
				return nil
			})
		} else {
			port := side.APort
			r.Env.Dispatch(func(r *Router) error {
				core.HandleLinkDown(r.RouterState, r, port)
				return nil
			})
		}
	}
}

func (n *Network) firstUpPort(id state.NodeId) (state.Port, bool) {
	ports := make([]state.Port, 0)
	for end, le := range n.ends {
		if end.node == id && le.link.Up() {
			ports = append(ports, end.port)
		}
	}
	if len(ports) == 0 {
		return 0, false
	}
	return slices.Min(ports), true
}

// transmit puts pkt on the link attached to port of from. Delivery happens on another goroutine.
func (n *Network) transmit(from state.NodeId, port state.Port, pkt *protocol.Packet) {
	end, ok := n.ends[wireEnd{from, port}]
	if !ok || !end.link.Up() {
		if pkt.IsData() {
			n.trace(packetTrace(TraceDropped, n.Elapsed(), from, pkt, "link down"))
		}
		return
	}
	if end.link.lost() {
		perf.PacketsLost.Add(1)
		if pkt.IsData() {
			n.trace(packetTrace(TraceDropped, n.Elapsed(), from, pkt, "lost"))
		}
		return
	}
	delay := end.link.delay()
	go func() {
		if delay > 0 {
			select {
			case <-n.Context.Done():
				return
			case <-time.After(delay):
			}
		}
		n.deliver(end, pkt)
	}()
}

func (n *Network) deliver(end linkEnd, pkt *protocol.Packet) {
	if n.Context.Err() != nil {
		return
	}
	if !end.link.Up() {
		if pkt.IsData() {
			n.trace(packetTrace(TraceDropped, n.Elapsed(), end.peer.node, pkt, "link went down"))
		}
		return
	}
	if pkt.IsData() {
		pkt = pkt.Clone()
		pkt.Route = append(pkt.Route, end.peer.node)
	}
	if r, ok := n.Routers[end.peer.node]; ok {
		port := end.peer.port
		r.Env.Dispatch(func(r *Router) error {
			return r.receive(port, pkt)
		})
		return
	}
	if h, ok := n.Hosts[end.peer.node]; ok {
		h.receive(pkt)
		return
	}
	if pkt.IsData() {
		n.trace(packetTrace(TraceDropped, n.Elapsed(), end.peer.node, pkt, "node disabled"))
	}
}

// Probe sends a data packet from a host to target, which is a node id or an address
func (n *Network) Probe(from state.NodeId, target string) (*protocol.Packet, error) {
	h, ok := n.Hosts[from]
	if !ok {
		return nil, fmt.Errorf("%s is not a running host", from)
	}
	dst, err := Resolve(n.Cfg, n.Addrs, target)
	if err != nil {
		return nil, err
	}
	pkt := protocol.NewDataPacket(from, dst, []byte(target))
	return pkt, h.Send(pkt)
}

// ProbeWait sends a probe and waits until it is delivered or dropped
func (n *Network) ProbeWait(ctx context.Context, from state.NodeId, target string) (Trace, error) {
	h, ok := n.Hosts[from]
	if !ok {
		return Trace{}, fmt.Errorf("%s is not a running host", from)
	}
	dst, err := Resolve(n.Cfg, n.Addrs, target)
	if err != nil {
		return Trace{}, err
	}
	pkt := protocol.NewDataPacket(from, dst, []byte(target))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	result := make(chan Trace, 1)
	done := n.Tracer.Subscribe(ctx, func(t Trace) {
		if t.PacketId == pkt.Id && (t.Kind == TraceDelivered || t.Kind == TraceDropped) {
			select {
			case result <- t:
			default:
			}
		}
	})
	defer func() {
		cancel()
		<-done
	}()

	// a host without links drops the probe and reports it through the tracer
	_ = h.Send(pkt)
	select {
	case t := <-result:
		return t, nil
	case <-ctx.Done():
		return Trace{}, context.Cause(ctx)
	}
}

// Dump returns the debug dump of a running router
func (n *Network) Dump(id state.NodeId) (string, error) {
	r, ok := n.Routers[id]
	if !ok {
		return "", fmt.Errorf("%s is not a running router", id)
	}
	res, err := r.Env.DispatchWait(func(r *Router) (any, error) {
		return core.DebugString(r.RouterState), nil
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}

// Forward returns a copy of the forwarding table of a running router
func (n *Network) Forward(id state.NodeId) (core.ForwardTable, error) {
	r, ok := n.Routers[id]
	if !ok {
		return nil, fmt.Errorf("%s is not a running router", id)
	}
	res, err := r.Env.DispatchWait(func(r *Router) (any, error) {
		return maps.Clone(r.Forward), nil
	})
	if err != nil {
		return nil, err
	}
	return res.(core.ForwardTable), nil
}
