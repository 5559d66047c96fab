package state

import "time"

var (
	HeartbeatInterval = time.Second * 5        // unconditional re-origination of the local advertisement
	TickInterval      = time.Millisecond * 100 // how often the host delivers the elapsed time to a node
	DefaultLinkCost   = 1.0
	DefaultCodec      = "json"

	// MaxHops drops data packets that have been forwarded too many times, transient loops can
	// appear while floods are in flight.
	MaxHops = 64

	// TraceDedupTTL rate limits repeated trace events (drops, stale advertisements) per key
	TraceDedupTTL = time.Second * 2
	TraceBuffer   = 1024

	DispatchBuffer       = 128
	SlowDispatchWarning  = time.Millisecond * 4
	DefaultRunDuration   = time.Second * 30
	QuiescenceCheckDelay = time.Millisecond * 200
)
