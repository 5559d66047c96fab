package core

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/encodeous/lsr/protocol"
	"github.com/encodeous/lsr/state"
)

type config struct {
	heartbeat          time.Duration
	classify           state.Classifier
	codec              protocol.Codec
	excludeInboundPort bool
}

type Option func(*config)

func configDefaults() Option {
	return func(c *config) {
		c.heartbeat = state.HeartbeatInterval
		c.classify = state.ConventionClassifier
		c.codec = protocol.JSONCodec{}
		c.excludeInboundPort = false
	}
}

func WithHeartbeat(d time.Duration) Option {
	return func(c *config) {
		c.heartbeat = d
	}
}

// WithClassifier sets how nodes only known by id are classified
func WithClassifier(classify state.Classifier) Option {
	return func(c *config) {
		c.classify = classify
	}
}

func WithCodec(codec protocol.Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// WithInboundExclusion stops accepted advertisements from being flooded back out of the port they
// arrived on
func WithInboundExclusion(exclude bool) Option {
	return func(c *config) {
		c.excludeInboundPort = exclude
	}
}

// RouterState is everything a single link state router knows. It must only be accessed from one
// goroutine at a time.
type RouterState struct {
	Self state.Node
	// Seqno is the sequence number our next advertisement will carry
	Seqno    uint64
	Topology *Topology
	LSDB     *LinkStateDB
	Forward  ForwardTable
	// Links are the local attachments, by port
	Links map[state.Port]state.Link
	// Ports maps directly attached neighbours to the port they are reached through
	Ports map[state.NodeId]state.Port
	// LastBroadcast is the time of our last advertisement, as delivered to HandleTime
	LastBroadcast time.Duration
	// Now is the latest time delivered to HandleTime
	Now time.Duration
	config
}

func NewRouterState(self state.Node, opts ...Option) *RouterState {
	s := &RouterState{
		Self:     self,
		Topology: NewTopology(self),
		Forward:  make(ForwardTable),
		Links:    make(map[state.Port]state.Link),
		Ports:    make(map[state.NodeId]state.Port),
	}
	configDefaults()(&s.config)
	for _, opt := range opts {
		opt(&s.config)
	}
	s.LSDB = NewLinkStateDB(s.classify)
	return s
}

// LocalEndpoints is our own neighbour set, as it would be advertised
func (s *RouterState) LocalEndpoints() state.Endpoints {
	eps := make(state.Endpoints, len(s.Ports))
	for id, port := range s.Ports {
		_, ep := s.Links[port].Normalize(s.Self.Id)
		eps[id] = ep
	}
	return eps
}

func (s *RouterState) PortOf(neigh state.NodeId) (state.Port, bool) {
	p, ok := s.Ports[neigh]
	return p, ok
}

// SortedPorts returns the local ports in ascending order
func (s *RouterState) SortedPorts() []state.Port {
	return slices.Sorted(maps.Keys(s.Links))
}

// Neighbour returns the node on the other end of port
func (s *RouterState) Neighbour(port state.Port) (state.Node, bool) {
	link, ok := s.Links[port]
	if !ok {
		return state.Node{}, false
	}
	n, _ := link.Normalize(s.Self.Id)
	return n, true
}

func (s *RouterState) String() string {
	return fmt.Sprintf("(self: %s, seqno: %d, links: %d, routes: %d)", s.Self, s.Seqno, len(s.Links), len(s.Forward))
}
