package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
)

type NodeId string

// NodeKind separates routing participants from terminal destinations. Only routers receive
// floods, and only hosts are installed in the forwarding table.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindRouter
	KindHost
)

func (k NodeKind) String() string {
	switch k {
	case KindRouter:
		return "router"
	case KindHost:
		return "host"
	default:
		return "unknown"
	}
}

func ParseNodeKind(s string) (NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "router":
		return KindRouter, nil
	case "host":
		return KindHost, nil
	case "":
		return KindUnknown, nil
	}
	return KindUnknown, fmt.Errorf("%q is not a valid node kind, expected router or host", s)
}

func (k NodeKind) MarshalText() ([]byte, error) {
	if k == KindUnknown {
		return []byte{}, nil
	}
	return []byte(k.String()), nil
}

func (k *NodeKind) UnmarshalText(text []byte) error {
	kind, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Classifier decides the kind of a node that was only learned by id, e.g. a neighbour listed in
// a remote advertisement.
type Classifier func(id NodeId) NodeKind

// ConventionClassifier treats ids whose cased letters are all uppercase as routers. An id
// without any cased letter is a host.
func ConventionClassifier(id NodeId) NodeKind {
	cased := false
	for _, r := range string(id) {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return KindHost
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	if cased {
		return KindRouter
	}
	return KindHost
}

// StaticClassifier prefers explicitly configured kinds and falls back to the naming convention
func StaticClassifier(kinds map[NodeId]NodeKind) Classifier {
	return func(id NodeId) NodeKind {
		if k, ok := kinds[id]; ok && k != KindUnknown {
			return k
		}
		return ConventionClassifier(id)
	}
}

type Node struct {
	Id   NodeId
	Kind NodeKind
}

func (n Node) IsRouter() bool {
	return n.Kind == KindRouter
}

func (n Node) IsHost() bool {
	return n.Kind == KindHost
}

func (n Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Id, n.Kind)
}

// Port is a local attachment point number
type Port int

// Link is a local attachment between E1 and E2. Costs are directional.
type Link struct {
	Port   Port
	E1     Node
	E2     Node
	Cost12 float64 // cost travelling E1 -> E2
	Cost21 float64 // cost travelling E2 -> E1
}

// Normalize returns the node on the other end of the link, and the costs as seen from self
func (l Link) Normalize(self NodeId) (Node, Endpoint) {
	if l.E1.Id == self {
		return l.E2, Endpoint{CostTo: l.Cost12, CostFrom: l.Cost21}
	}
	return l.E1, Endpoint{CostTo: l.Cost21, CostFrom: l.Cost12}
}

func (l Link) String() string {
	return fmt.Sprintf("(port: %d, %s -%g-> %s, %s -%g-> %s)", l.Port, l.E1.Id, l.Cost12, l.E2.Id, l.E2.Id, l.Cost21, l.E1.Id)
}

type Endpoint struct {
	CostTo   float64 // cost from the origin to the neighbour
	CostFrom float64 // cost from the neighbour back to the origin
}

type Endpoints map[NodeId]Endpoint

func (e Endpoints) Clone() Endpoints {
	if e == nil {
		return Endpoints{}
	}
	return maps.Clone(e)
}

func (e Endpoints) Ids() []NodeId {
	return slices.Sorted(maps.Keys(e))
}

func (e Endpoints) String() string {
	out := make([]string, 0, len(e))
	for _, id := range e.Ids() {
		ep := e[id]
		out = append(out, fmt.Sprintf("%s(%g/%g)", id, ep.CostTo, ep.CostFrom))
	}
	return "[" + strings.Join(out, " ") + "]"
}

// Advertisement is an origin's complete, current set of direct neighbours. Seqno strictly
// increases per origin and is only generated by the origin.
type Advertisement struct {
	Origin    NodeId
	Seqno     uint64
	Endpoints Endpoints
}

func (a Advertisement) String() string {
	return fmt.Sprintf("(origin: %s, seqno: %d, endpoints: %s)", a.Origin, a.Seqno, a.Endpoints)
}
