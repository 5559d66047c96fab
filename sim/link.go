package sim

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/encodeous/lsr/state"
)

// VirtualLink is a point to point link between two simulated nodes
type VirtualLink struct {
	state.LinkCfg
	up atomic.Bool
}

func (v *VirtualLink) Up() bool {
	return v.up.Load()
}

// lost decides whether a single packet is lost in transit
func (v *VirtualLink) lost() bool {
	return v.Loss > 0 && rand.Float64() < v.Loss
}

// delay is the time a single packet spends in transit
func (v *VirtualLink) delay() time.Duration {
	simJitter := rand.Float64() * float64(v.Jitter.Nanoseconds())
	return v.Latency + time.Duration(simJitter)
}

type wireEnd struct {
	node state.NodeId
	port state.Port
}

type linkEnd struct {
	link *VirtualLink
	peer wireEnd
}
